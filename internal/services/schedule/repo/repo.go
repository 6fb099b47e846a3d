// Package repo provides the schedule repository implementation
package repo

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"

	"fieldops/internal/modkit/repokit"
	"fieldops/internal/platform/store"
	"fieldops/internal/services/schedule/domain"
)

// Repo is the schedule persistence surface used by the service layer
type Repo interface {
	// snapshot reads
	ActiveTechs(ctx context.Context) ([]domain.StaffRow, error)
	AvailabilityFor(ctx context.Context, date string) ([]domain.AvailabilityRow, error)
	ApprovedJobs(ctx context.Context) ([]domain.JobRow, error)
	ScheduledJobsFor(ctx context.Context, date string) ([]domain.JobRow, error)
	JobByID(ctx context.Context, id uuid.UUID) (domain.JobRow, error)

	// appointments
	AppointmentsFor(ctx context.Context, date string) ([]domain.AppointmentRow, error)
	InsertAppointment(ctx context.Context, row domain.AppointmentRow) error
	DeleteScheduledFor(ctx context.Context, date string) (int64, error)
	DeleteScheduledForStaff(ctx context.Context, date string, staffID uuid.UUID) (int64, error)
	DeleteAllFor(ctx context.Context, date string) (int64, error)
	ScheduledMinutes(ctx context.Context, date string) (int, error)
	SetJobsStatus(ctx context.Context, ids []uuid.UUID, status string) (int64, error)

	// clear audit
	InsertAudit(ctx context.Context, row domain.AuditRow) error
	AuditByID(ctx context.Context, id uuid.UUID) (domain.AuditRow, error)
	DeleteAudit(ctx context.Context, id uuid.UUID) (int64, error)
	RecentAudits(ctx context.Context, hours int) ([]domain.AuditRow, error)

	// concurrency
	TryDateLock(ctx context.Context, date string) (bool, error)
}

type (
	// PG is a Postgres implementation of the schedule repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// DateLockKey folds a schedule date into the advisory lock keyspace.
func DateLockKey(date string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("schedule:"))
	_, _ = h.Write([]byte(date))
	return int64(h.Sum64())
}

// TryDateLock takes the per-date advisory lock for the life of the
// current transaction. Callers must already be inside one.
func (r *queries) TryDateLock(ctx context.Context, date string) (bool, error) {
	return store.Scalar[bool](ctx, r.q, `SELECT pg_try_advisory_xact_lock($1)`, DateLockKey(date))
}
