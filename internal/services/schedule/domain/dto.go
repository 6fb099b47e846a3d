// Package domain holds DTOs for schedule http and service contracts
package domain

// GenerateRequest asks for a fresh optimized schedule for one date.
type GenerateRequest struct {
	ScheduleDate   string `json:"schedule_date" validate:"required,datetime=2006-01-02" example:"2026-03-14"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=1,max=120" example:"30"`
	Seed           int64  `json:"seed" validate:"omitempty" example:"42"`
}

// ReoptimizeRequest tunes an already persisted day in place.
type ReoptimizeRequest struct {
	TimeoutSeconds int   `json:"timeout_seconds" validate:"omitempty,min=1,max=120" example:"30"`
	Seed           int64 `json:"seed" validate:"omitempty" example:"42"`
}

// EmergencyInsertRequest squeezes one approved job into a persisted day.
type EmergencyInsertRequest struct {
	JobID         string `json:"job_id" validate:"required,uuid4" example:"7b0b0e6e-8a54-4c4e-9a53-0d5b9f9d3f4a"`
	TargetDate    string `json:"target_date" validate:"required,datetime=2006-01-02" example:"2026-03-14"`
	PriorityLevel int    `json:"priority_level" validate:"omitempty,min=0,max=2" example:"2"`
}

// ClearRequest wipes a day's appointments behind an audit row.
type ClearRequest struct {
	ScheduleDate string `json:"schedule_date" validate:"required,datetime=2006-01-02" example:"2026-03-14"`
	ClearedBy    string `json:"cleared_by" validate:"omitempty,max=120" example:"dispatch@fieldops"`
	Notes        string `json:"notes" validate:"omitempty,max=500" example:"storm day, all routes cancelled"`
}

// AssignedJob is one stop in the response, times as HH:MM:SS.
type AssignedJob struct {
	JobID             string `json:"job_id"`
	CustomerName      string `json:"customer_name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	StartTime         string `json:"start_time" example:"08:01:00"`
	EndTime           string `json:"end_time" example:"09:01:00"`
	ArriveTime        string `json:"arrive_time" example:"08:01:00"`
	DurationMinutes   int    `json:"duration_minutes" example:"60"`
	BufferMinutes     int    `json:"buffer_minutes" example:"0"`
	TravelTimeMinutes int    `json:"travel_time_minutes" example:"7"`
}

// StaffAssignment is one technician's ordered day.
type StaffAssignment struct {
	StaffID   string        `json:"staff_id"`
	StaffName string        `json:"staff_name"`
	Jobs      []AssignedJob `json:"jobs"`
}

// UnassignedJob pairs a job the solver could not seat with the reason.
type UnassignedJob struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason" example:"no_fit_with_travel"`
}

// ScheduleResponse is the solve result for one date.
type ScheduleResponse struct {
	ScheduleDate   string            `json:"schedule_date" example:"2026-03-14"`
	IsFeasible     bool              `json:"is_feasible"`
	HardScore      int64             `json:"hard_score"`
	SoftScore      int64             `json:"soft_score"`
	ElapsedMS      int64             `json:"elapsed_ms"`
	Assignments    []StaffAssignment `json:"assignments"`
	UnassignedJobs []UnassignedJob   `json:"unassigned_jobs"`
}

// CapacityResponse reports how much slack a date still has.
type CapacityResponse struct {
	ScheduleDate             string `json:"schedule_date" example:"2026-03-14"`
	TotalStaff               int    `json:"total_staff"`
	AvailableStaff           int    `json:"available_staff"`
	TotalCapacityMinutes     int    `json:"total_capacity_minutes"`
	ScheduledMinutes         int    `json:"scheduled_minutes"`
	RemainingCapacityMinutes int    `json:"remaining_capacity_minutes"`
	CanAcceptMore            bool   `json:"can_accept_more"`
}

// EmergencyInsertResponse reports the outcome of a squeeze-in attempt.
type EmergencyInsertResponse struct {
	Success    bool         `json:"success"`
	Assignment *AssignedJob `json:"assignment,omitempty"`
	StaffID    string       `json:"staff_id,omitempty"`
	StaffName  string       `json:"staff_name,omitempty"`
	Reason     string       `json:"reason,omitempty" example:"equipment"`
}

// ClearResponse confirms a wipe and names the audit row for undo.
type ClearResponse struct {
	AuditID             string `json:"audit_id"`
	AppointmentsDeleted int    `json:"appointments_deleted"`
	JobsReset           int    `json:"jobs_reset"`
	ClearedAt           string `json:"cleared_at" example:"2026-03-14T07:45:12Z"`
}

// RestoreResponse reports how much of an audit could be replayed.
type RestoreResponse struct {
	AuditID              string `json:"audit_id"`
	AppointmentsRestored int    `json:"appointments_restored"`
	JobsUpdated          int    `json:"jobs_updated"`
}

// AuditSummary is one clear event in a listing.
type AuditSummary struct {
	AuditID          string `json:"audit_id"`
	ScheduleDate     string `json:"schedule_date"`
	ClearedAt        string `json:"cleared_at"`
	ClearedBy        string `json:"cleared_by,omitempty"`
	Notes            string `json:"notes,omitempty"`
	AppointmentCount int    `json:"appointment_count"`
}

// AuditDetail is a summary plus the full serialized payload.
type AuditDetail struct {
	AuditSummary
	Appointments []SerializedAppointment `json:"appointments"`
	JobsReset    []string                `json:"jobs_reset"`
}
