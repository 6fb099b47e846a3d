// Package plan defines the flat solver input and output types. Snapshots
// are value copies taken from the store; the solver never reaches back
// into CRM rows, so there are no object graphs here, only IDs and values.
package plan

import (
	"time"

	"github.com/google/uuid"

	"fieldops/internal/core/availability"
	"fieldops/internal/core/clock"
	"fieldops/internal/core/geo"
	"fieldops/internal/core/travel"
)

// Job priorities. Urgent jobs are what emergency insertion exists for.
const (
	PriorityNormal = 0
	PriorityHigh   = 1
	PriorityUrgent = 2
)

// Job statuses as stored. Only approved jobs enter a fresh solve;
// re-optimization additionally carries scheduled ones.
const (
	StatusApproved   = "approved"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusClosed     = "closed"
)

// Unassigned reasons reported back to dispatchers.
const (
	ReasonEquipment     = "equipment"
	ReasonNoFit         = "no_fit"
	ReasonNoFitTravel   = "no_fit_with_travel"
	ReasonUnlocatable   = "unlocatable"
	ReasonStaffShortage = "staff_shortage"
)

// JobSnapshot is one job as the solver sees it.
type JobSnapshot struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	CustomerName string
	Address      string
	Location     geo.Location

	JobType         string
	DurationMinutes int
	BufferMinutes   int
	Priority        int
	Equipment       []string
	StaffingNeeded  int

	EarliestStart  clock.Minute
	LatestFinish   clock.Minute
	PreferredStart clock.Minute
	PreferredEnd   clock.Minute

	Status    string
	CreatedAt time.Time
}

// Eligible reports whether the job may be (re)scheduled at all.
func (j JobSnapshot) Eligible(reopt bool) bool {
	if j.Status == StatusApproved {
		return true
	}
	return reopt && j.Status == StatusScheduled
}

// Pinned jobs hold their persisted slot during re-optimization.
func (j JobSnapshot) Pinned() bool {
	return j.Status == StatusInProgress || j.Status == StatusCompleted
}

// StaffSnapshot is one dispatchable technician for the day.
type StaffSnapshot struct {
	ID        uuid.UUID
	Name      string
	Home      geo.Location
	Equipment []string
	Day       availability.Entry
}

// HasEquipment reports whether the staff owns every required tag.
func (s StaffSnapshot) HasEquipment(required []string) bool {
	for _, tag := range required {
		found := false
		for _, owned := range s.Equipment {
			if owned == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Stop is one scheduled visit. End includes the job's trailing buffer.
type Stop struct {
	JobID          uuid.UUID
	Arrive         clock.Minute
	Start          clock.Minute
	End            clock.Minute
	TravelFromPrev int
}

// Tour is one staff's ordered day, home to home.
type Tour struct {
	StaffID uuid.UUID
	Stops   []Stop
}

// Clone deep-copies the tour so search moves can mutate freely.
func (t Tour) Clone() Tour {
	out := Tour{StaffID: t.StaffID}
	if len(t.Stops) > 0 {
		out.Stops = make([]Stop, len(t.Stops))
		copy(out.Stops, t.Stops)
	}
	return out
}

// TravelMinutes sums the inter-stop legs, excluding the trip home.
func (t Tour) TravelMinutes() int {
	total := 0
	for _, s := range t.Stops {
		total += s.TravelFromPrev
	}
	return total
}

// Unassigned pairs a job the solver could not seat with the reason.
type Unassigned struct {
	JobID  uuid.UUID
	Reason string
}

// SolverInput is the immutable snapshot a single solve works on.
type SolverInput struct {
	Date   string // YYYY-MM-DD
	Staff  []StaffSnapshot
	Jobs   []JobSnapshot
	Matrix *travel.Matrix
	Seed   int64

	// Unlocatable jobs never enter the search; they pass straight
	// through to the result's unassigned list.
	Unlocatable []Unassigned
}

// Job looks a job up by ID. The job count per day is small enough that
// callers needing speed build their own index.
func (in *SolverInput) Job(id uuid.UUID) (JobSnapshot, bool) {
	for _, j := range in.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return JobSnapshot{}, false
}

// StaffByID looks a staff member up by ID.
func (in *SolverInput) StaffByID(id uuid.UUID) (StaffSnapshot, bool) {
	for _, s := range in.Staff {
		if s.ID == id {
			return s, true
		}
	}
	return StaffSnapshot{}, false
}

// Schedule is the solver's result for one date.
type Schedule struct {
	Date       string
	Tours      []Tour
	Unassigned []Unassigned

	Hard     int64
	Soft     int64
	Feasible bool

	ElapsedMS      int64
	MovesEvaluated int64
}

// Clone deep-copies the schedule; scores and counters carry over.
func (s Schedule) Clone() Schedule {
	out := s
	out.Tours = make([]Tour, len(s.Tours))
	for i := range s.Tours {
		out.Tours[i] = s.Tours[i].Clone()
	}
	if len(s.Unassigned) > 0 {
		out.Unassigned = make([]Unassigned, len(s.Unassigned))
		copy(out.Unassigned, s.Unassigned)
	}
	return out
}

// AssignedCount is the number of stops across all tours.
func (s Schedule) AssignedCount() int {
	n := 0
	for _, t := range s.Tours {
		n += len(t.Stops)
	}
	return n
}

// Tour returns the tour for a staff ID, nil if absent.
func (s *Schedule) Tour(staffID uuid.UUID) *Tour {
	for i := range s.Tours {
		if s.Tours[i].StaffID == staffID {
			return &s.Tours[i]
		}
	}
	return nil
}
