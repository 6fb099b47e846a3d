package plan

import (
	"testing"

	"github.com/google/uuid"

	"fieldops/internal/core/clock"
)

func TestHasEquipment(t *testing.T) {
	s := StaffSnapshot{Equipment: []string{"mower", "trailer"}}
	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"none required", nil, true},
		{"subset", []string{"mower"}, true},
		{"all", []string{"mower", "trailer"}, true},
		{"missing", []string{"aerator"}, false},
		{"partial", []string{"mower", "aerator"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.HasEquipment(tc.required); got != tc.want {
				t.Fatalf("HasEquipment(%v) = %v, want %v", tc.required, got, tc.want)
			}
		})
	}
}

func TestJobSnapshot_Eligible(t *testing.T) {
	tests := []struct {
		status     string
		reopt      bool
		want       bool
		wantPinned bool
	}{
		{StatusApproved, false, true, false},
		{StatusApproved, true, true, false},
		{StatusScheduled, false, false, false},
		{StatusScheduled, true, true, false},
		{StatusInProgress, true, false, true},
		{StatusCompleted, true, false, true},
		{StatusCancelled, true, false, false},
	}
	for _, tc := range tests {
		j := JobSnapshot{Status: tc.status}
		if got := j.Eligible(tc.reopt); got != tc.want {
			t.Errorf("Eligible(%s, reopt=%v) = %v, want %v", tc.status, tc.reopt, got, tc.want)
		}
		if got := j.Pinned(); got != tc.wantPinned {
			t.Errorf("Pinned(%s) = %v, want %v", tc.status, got, tc.wantPinned)
		}
	}
}

func TestScheduleClone_Independent(t *testing.T) {
	staff := uuid.New()
	job := uuid.New()
	s := Schedule{
		Date: "2026-03-14",
		Tours: []Tour{{
			StaffID: staff,
			Stops: []Stop{{
				JobID:  job,
				Arrive: clock.MustParse("08:10"),
				Start:  clock.MustParse("08:10"),
				End:    clock.MustParse("09:10"),
			}},
		}},
		Unassigned: []Unassigned{{JobID: uuid.New(), Reason: ReasonNoFit}},
		Hard:       0,
		Soft:       90,
		Feasible:   true,
	}

	c := s.Clone()
	c.Tours[0].Stops[0].Start = clock.MustParse("10:00")
	c.Unassigned[0].Reason = ReasonEquipment

	if s.Tours[0].Stops[0].Start != clock.MustParse("08:10") {
		t.Fatalf("clone mutation leaked into original tour")
	}
	if s.Unassigned[0].Reason != ReasonNoFit {
		t.Fatalf("clone mutation leaked into original unassigned list")
	}
	if c.Soft != s.Soft || c.Date != s.Date {
		t.Fatalf("clone should carry scalar fields")
	}
}

func TestTourTravelMinutes(t *testing.T) {
	tour := Tour{Stops: []Stop{
		{TravelFromPrev: 12},
		{TravelFromPrev: 7},
		{TravelFromPrev: 3},
	}}
	if got := tour.TravelMinutes(); got != 22 {
		t.Fatalf("TravelMinutes = %d, want 22", got)
	}
	if got := (Tour{}).TravelMinutes(); got != 0 {
		t.Fatalf("empty tour TravelMinutes = %d", got)
	}
}

func TestScheduleLookups(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	s := Schedule{Tours: []Tour{{StaffID: a}, {StaffID: b}}}
	if got := s.Tour(b); got == nil || got.StaffID != b {
		t.Fatalf("Tour(b) = %v", got)
	}
	if s.Tour(uuid.New()) != nil {
		t.Fatalf("unknown staff should return nil")
	}

	in := SolverInput{
		Staff: []StaffSnapshot{{ID: a, Name: "Ana"}},
		Jobs:  []JobSnapshot{{ID: b, JobType: "mowing"}},
	}
	if _, ok := in.StaffByID(a); !ok {
		t.Fatalf("StaffByID miss")
	}
	if _, ok := in.Job(uuid.New()); ok {
		t.Fatalf("Job should miss for unknown ID")
	}
}
