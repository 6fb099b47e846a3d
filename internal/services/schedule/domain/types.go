// Package domain holds schedule core types independent of transport or
// storage. Row types mirror the store schema one to one; the service
// layer projects them into solver snapshots.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// StaffRow is one dispatchable technician as stored.
type StaffRow struct {
	ID        uuid.UUID
	Name      string
	HomeLat   float64
	HomeLon   float64
	HomeCity  string
	Equipment []string
}

// AvailabilityRow is one staff-day window as stored. Times come back as
// HH:MM:SS text.
type AvailabilityRow struct {
	StaffID      uuid.UUID
	Available    bool
	WindowStart  string
	WindowEnd    string
	LunchStart   string
	LunchMinutes int
}

// JobRow is one schedulable job as stored, property coordinates joined
// in. Lat and Lon are pointers because a property may be ungeocoded.
type JobRow struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	CustomerName string
	Address      string
	City         string
	Lat          *float64
	Lon          *float64

	JobType         string
	DurationMinutes int
	BufferMinutes   int
	Priority        int
	Equipment       []string
	StaffingNeeded  int

	EarliestStart  string
	LatestFinish   string
	PreferredStart string
	PreferredEnd   string

	Status    string
	CreatedAt time.Time
}

// AppointmentRow is one persisted stop.
type AppointmentRow struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	StaffID          uuid.UUID
	ScheduleDate     string
	TimeWindowStart  string
	TimeWindowEnd    string
	EstimatedArrival string
	RouteOrder       int
	Status           string
	JobStatus        string
}

// SerializedAppointment is the audit payload form of one appointment,
// complete enough to recreate the row.
type SerializedAppointment struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	JobID            uuid.UUID `json:"job_id"`
	StaffID          uuid.UUID `json:"staff_id"`
	ScheduleDate     string    `json:"schedule_date"`
	TimeWindowStart  string    `json:"time_window_start"`
	TimeWindowEnd    string    `json:"time_window_end"`
	EstimatedArrival string    `json:"estimated_arrival"`
	RouteOrder       int       `json:"route_order"`
	Status           string    `json:"status"`
}

// AuditRow is one schedule_clear_audit record.
type AuditRow struct {
	ID               uuid.UUID
	ScheduleDate     string
	ClearedAt        time.Time
	ClearedBy        string
	Notes            string
	Appointments     []SerializedAppointment
	JobsReset        []uuid.UUID
	AppointmentCount int
}
