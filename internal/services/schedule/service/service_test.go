package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"fieldops/internal/core/clock"
	"fieldops/internal/core/travel"
	"fieldops/internal/modkit/repokit"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/logger"
	"fieldops/internal/platform/store"
	"fieldops/internal/services/schedule/domain"
	srepo "fieldops/internal/services/schedule/repo"
)

// fakeRepo is an in-memory srepo.Repo with just enough SQL semantics
// for the orchestration paths.
type fakeRepo struct {
	staff        []domain.StaffRow
	availability map[string][]domain.AvailabilityRow
	jobs         map[uuid.UUID]*domain.JobRow
	appointments []domain.AppointmentRow
	audits       map[uuid.UUID]domain.AuditRow

	lockGranted bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		availability: map[string][]domain.AvailabilityRow{},
		jobs:         map[uuid.UUID]*domain.JobRow{},
		audits:       map[uuid.UUID]domain.AuditRow{},
		lockGranted:  true,
	}
}

func (f *fakeRepo) ActiveTechs(context.Context) ([]domain.StaffRow, error) { return f.staff, nil }

func (f *fakeRepo) AvailabilityFor(_ context.Context, date string) ([]domain.AvailabilityRow, error) {
	return f.availability[date], nil
}

func (f *fakeRepo) ApprovedJobs(context.Context) ([]domain.JobRow, error) {
	var out []domain.JobRow
	for _, j := range f.jobs {
		if j.Status == "approved" {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID.String() < out[k].ID.String() })
	return out, nil
}

func (f *fakeRepo) ScheduledJobsFor(_ context.Context, date string) ([]domain.JobRow, error) {
	seen := map[uuid.UUID]bool{}
	var out []domain.JobRow
	for _, a := range f.appointments {
		if a.ScheduleDate != date || seen[a.JobID] {
			continue
		}
		j, ok := f.jobs[a.JobID]
		if !ok {
			continue
		}
		switch j.Status {
		case "scheduled", "in_progress", "completed":
			out = append(out, *j)
			seen[a.JobID] = true
		}
	}
	return out, nil
}

func (f *fakeRepo) JobByID(_ context.Context, id uuid.UUID) (domain.JobRow, error) {
	j, ok := f.jobs[id]
	if !ok {
		return domain.JobRow{}, perr.NotFoundf("job %s not found", id)
	}
	return *j, nil
}

func (f *fakeRepo) AppointmentsFor(_ context.Context, date string) ([]domain.AppointmentRow, error) {
	var out []domain.AppointmentRow
	for _, a := range f.appointments {
		if a.ScheduleDate != date {
			continue
		}
		if j, ok := f.jobs[a.JobID]; ok {
			a.JobStatus = j.Status
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].StaffID != out[k].StaffID {
			return out[i].StaffID.String() < out[k].StaffID.String()
		}
		return out[i].RouteOrder < out[k].RouteOrder
	})
	return out, nil
}

func (f *fakeRepo) InsertAppointment(_ context.Context, row domain.AppointmentRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.appointments = append(f.appointments, row)
	return nil
}

func (f *fakeRepo) DeleteScheduledFor(_ context.Context, date string) (int64, error) {
	return f.deleteWhere(func(a domain.AppointmentRow) bool {
		j, ok := f.jobs[a.JobID]
		return a.ScheduleDate == date && ok && j.Status == "scheduled"
	}), nil
}

func (f *fakeRepo) DeleteScheduledForStaff(_ context.Context, date string, staffID uuid.UUID) (int64, error) {
	return f.deleteWhere(func(a domain.AppointmentRow) bool {
		j, ok := f.jobs[a.JobID]
		return a.ScheduleDate == date && a.StaffID == staffID && ok && j.Status == "scheduled"
	}), nil
}

func (f *fakeRepo) DeleteAllFor(_ context.Context, date string) (int64, error) {
	return f.deleteWhere(func(a domain.AppointmentRow) bool {
		return a.ScheduleDate == date
	}), nil
}

func (f *fakeRepo) deleteWhere(match func(domain.AppointmentRow) bool) int64 {
	var kept []domain.AppointmentRow
	var n int64
	for _, a := range f.appointments {
		if match(a) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	f.appointments = kept
	return n
}

func (f *fakeRepo) ScheduledMinutes(_ context.Context, date string) (int, error) {
	total := 0
	for _, a := range f.appointments {
		if a.ScheduleDate != date {
			continue
		}
		start, err := clock.Parse(a.TimeWindowStart)
		if err != nil {
			continue
		}
		end, err := clock.Parse(a.TimeWindowEnd)
		if err != nil {
			continue
		}
		total += int(end) - int(start)
	}
	return total, nil
}

func (f *fakeRepo) SetJobsStatus(_ context.Context, ids []uuid.UUID, status string) (int64, error) {
	var n int64
	for _, id := range ids {
		if j, ok := f.jobs[id]; ok && j.Status != status {
			j.Status = status
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) InsertAudit(_ context.Context, row domain.AuditRow) error {
	f.audits[row.ID] = row
	return nil
}

func (f *fakeRepo) AuditByID(_ context.Context, id uuid.UUID) (domain.AuditRow, error) {
	a, ok := f.audits[id]
	if !ok {
		return domain.AuditRow{}, perr.NotFoundf("audit %s not found", id)
	}
	return a, nil
}

func (f *fakeRepo) DeleteAudit(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := f.audits[id]; !ok {
		return 0, nil
	}
	delete(f.audits, id)
	return 1, nil
}

func (f *fakeRepo) RecentAudits(_ context.Context, hours int) ([]domain.AuditRow, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	var out []domain.AuditRow
	for _, a := range f.audits {
		if a.ClearedAt.After(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ClearedAt.After(out[k].ClearedAt) })
	return out, nil
}

func (f *fakeRepo) TryDateLock(context.Context, string) (bool, error) { return f.lockGranted, nil }

var _ srepo.Repo = (*fakeRepo)(nil)

// fakeTx satisfies the TxRunner seam; there is no real transaction, fn
// just runs against the same fake state.
type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(fakeTx{})
}

func newTestSvc(fr *fakeRepo) *Svc {
	return &Svc{
		db:     fakeTx{},
		binder: repokit.BindFunc[srepo.Repo](func(repokit.Queryer) srepo.Repo { return fr }),
		repo:   fr,
		oracle: travel.NewOracle(),
		sem:    semaphore.NewWeighted(2),
		cfg:    Config{MaxConcurrentSolves: 2, RetryAfterSeconds: 5},
		log:    *logger.Named("schedule-test"),
	}
}

const testDate = "2026-03-14"

func addTech(f *fakeRepo, name string, equipment ...string) uuid.UUID {
	id := uuid.New()
	f.staff = append(f.staff, domain.StaffRow{
		ID: id, Name: name,
		HomeLat: 47.6062, HomeLon: -122.3321, HomeCity: "Seattle",
		Equipment: equipment,
	})
	f.availability[testDate] = append(f.availability[testDate], domain.AvailabilityRow{
		StaffID: id, Available: true,
		WindowStart: "08:00:00", WindowEnd: "17:00:00",
		LunchStart: "12:00:00", LunchMinutes: 30,
	})
	return id
}

func addJob(f *fakeRepo, name string, minutes, priority int, equipment ...string) uuid.UUID {
	id := uuid.New()
	lat, lon := 47.61, -122.33
	f.jobs[id] = &domain.JobRow{
		ID: id, CustomerID: uuid.New(), CustomerName: name,
		Address: "123 Main St", City: "Seattle", Lat: &lat, Lon: &lon,
		JobType: "mowing", DurationMinutes: minutes, Priority: priority,
		Equipment: equipment, StaffingNeeded: 1,
		Status: "approved", CreatedAt: time.Now(),
	}
	return id
}

func TestGeneratePersistsSchedule(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	j1 := addJob(fr, "Acme", 60, 0)
	j2 := addJob(fr, "Birch", 45, 0)
	svc := newTestSvc(fr)

	out, err := svc.Generate(context.Background(), domain.GenerateRequest{
		ScheduleDate: testDate, TimeoutSeconds: 1, Seed: 42,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !out.IsFeasible {
		t.Fatalf("expected feasible, hard=%d", out.HardScore)
	}
	if len(fr.appointments) != 2 {
		t.Fatalf("appointments persisted = %d, want 2", len(fr.appointments))
	}
	for _, id := range []uuid.UUID{j1, j2} {
		if got := fr.jobs[id].Status; got != "scheduled" {
			t.Errorf("job %s status = %q, want scheduled", id, got)
		}
	}
}

func TestPreviewPersistsNothing(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	id := addJob(fr, "Acme", 60, 0)
	svc := newTestSvc(fr)

	out, err := svc.Preview(context.Background(), domain.GenerateRequest{
		ScheduleDate: testDate, TimeoutSeconds: 1,
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(out.Assignments) == 0 {
		t.Fatal("expected assignments in preview response")
	}
	if len(fr.appointments) != 0 {
		t.Fatalf("preview wrote %d appointments", len(fr.appointments))
	}
	if got := fr.jobs[id].Status; got != "approved" {
		t.Fatalf("preview changed job status to %q", got)
	}
}

func TestGenerateBusyWhenSlotsExhausted(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	svc := newTestSvc(fr)
	svc.sem = semaphore.NewWeighted(1)
	if !svc.sem.TryAcquire(1) {
		t.Fatal("setup: could not take the only slot")
	}
	defer svc.sem.Release(1)

	_, err := svc.Generate(context.Background(), domain.GenerateRequest{ScheduleDate: testDate})
	if perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestGenerateConflictWhenDateLocked(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	addJob(fr, "Acme", 60, 0)
	fr.lockGranted = false
	svc := newTestSvc(fr)

	_, err := svc.Generate(context.Background(), domain.GenerateRequest{
		ScheduleDate: testDate, TimeoutSeconds: 1,
	})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestClearRestoreRoundTrip(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	jobID := addJob(fr, "Acme", 60, 0)
	svc := newTestSvc(fr)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, domain.GenerateRequest{ScheduleDate: testDate, TimeoutSeconds: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	persisted := len(fr.appointments)
	if persisted == 0 {
		t.Fatal("setup: nothing persisted")
	}

	cleared, err := svc.Clear(ctx, domain.ClearRequest{
		ScheduleDate: testDate, ClearedBy: "dispatch", Notes: "storm day",
	})
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared.AppointmentsDeleted != persisted {
		t.Errorf("deleted = %d, want %d", cleared.AppointmentsDeleted, persisted)
	}
	if len(fr.appointments) != 0 {
		t.Fatalf("appointments remain after clear: %d", len(fr.appointments))
	}
	if got := fr.jobs[jobID].Status; got != "approved" {
		t.Fatalf("job status after clear = %q, want approved", got)
	}

	restored, err := svc.Restore(ctx, cleared.AuditID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.AppointmentsRestored != persisted {
		t.Errorf("restored = %d, want %d", restored.AppointmentsRestored, persisted)
	}
	if got := fr.jobs[jobID].Status; got != "scheduled" {
		t.Fatalf("job status after restore = %q, want scheduled", got)
	}

	// the audit row is consumed, a second restore finds nothing
	if _, err := svc.Restore(ctx, cleared.AuditID); perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("second restore err = %v, want not found", err)
	}
}

func TestClearEmptyDayStillAudited(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestSvc(fr)

	out, err := svc.Clear(context.Background(), domain.ClearRequest{ScheduleDate: testDate})
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if out.AppointmentsDeleted != 0 || out.JobsReset != 0 {
		t.Errorf("counts = %d/%d, want 0/0", out.AppointmentsDeleted, out.JobsReset)
	}
	if len(fr.audits) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(fr.audits))
	}
}

func TestRestoreSkipsCancelledJobs(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	keep := addJob(fr, "Acme", 60, 0)
	drop := addJob(fr, "Birch", 45, 0)
	svc := newTestSvc(fr)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, domain.GenerateRequest{ScheduleDate: testDate, TimeoutSeconds: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cleared, err := svc.Clear(ctx, domain.ClearRequest{ScheduleDate: testDate})
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	fr.jobs[drop].Status = "cancelled"

	restored, err := svc.Restore(ctx, cleared.AuditID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.AppointmentsRestored != 1 {
		t.Errorf("restored = %d, want 1", restored.AppointmentsRestored)
	}
	if got := fr.jobs[keep].Status; got != "scheduled" {
		t.Errorf("kept job status = %q, want scheduled", got)
	}
	if got := fr.jobs[drop].Status; got != "cancelled" {
		t.Errorf("cancelled job status = %q, want cancelled", got)
	}
}

func TestEmergencyInsertPreservesOtherTours(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	addTech(fr, "Lin")
	addJob(fr, "Acme", 60, 0)
	addJob(fr, "Birch", 60, 0)
	addJob(fr, "Cedar", 60, 0)
	svc := newTestSvc(fr)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, domain.GenerateRequest{ScheduleDate: testDate, TimeoutSeconds: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	before := map[uuid.UUID]domain.AppointmentRow{}
	for _, a := range fr.appointments {
		before[a.JobID] = a
	}

	urgent := addJob(fr, "Dialed-In", 30, 2)
	out, err := svc.InsertEmergency(ctx, domain.EmergencyInsertRequest{
		JobID: urgent.String(), TargetDate: testDate, PriorityLevel: 2,
	})
	if err != nil {
		t.Fatalf("InsertEmergency: %v", err)
	}
	if !out.Success {
		t.Fatalf("insert failed: %s", out.Reason)
	}
	if got := fr.jobs[urgent].Status; got != "scheduled" {
		t.Errorf("urgent job status = %q, want scheduled", got)
	}

	hostID, err := uuid.Parse(out.StaffID)
	if err != nil {
		t.Fatalf("staff_id %q: %v", out.StaffID, err)
	}
	for _, a := range fr.appointments {
		if a.StaffID == hostID || a.JobID == urgent {
			continue
		}
		prev, ok := before[a.JobID]
		if !ok {
			t.Errorf("job %s appeared on a non-host tour", a.JobID)
			continue
		}
		if prev.StaffID != a.StaffID || prev.TimeWindowStart != a.TimeWindowStart || prev.RouteOrder != a.RouteOrder {
			t.Errorf("non-host stop %s moved: %+v -> %+v", a.JobID, prev, a)
		}
	}
}

func TestEmergencyInsertRejectsNonApproved(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	id := addJob(fr, "Acme", 60, 0)
	fr.jobs[id].Status = "completed"
	svc := newTestSvc(fr)

	_, err := svc.InsertEmergency(context.Background(), domain.EmergencyInsertRequest{
		JobID: id.String(), TargetDate: testDate,
	})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestEmergencyInsertNoEquippedStaff(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada", "mower")
	id := addJob(fr, "Acme", 30, 2, "crane")
	svc := newTestSvc(fr)

	out, err := svc.InsertEmergency(context.Background(), domain.EmergencyInsertRequest{
		JobID: id.String(), TargetDate: testDate,
	})
	if err != nil {
		t.Fatalf("InsertEmergency: %v", err)
	}
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Reason != "equipment" {
		t.Fatalf("reason = %q, want equipment", out.Reason)
	}
}

func TestCapacityMath(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada") // 08:00-17:00 minus 30 lunch = 510
	off := uuid.New()
	fr.staff = append(fr.staff, domain.StaffRow{ID: off, Name: "Lin", HomeLat: 47.6, HomeLon: -122.3})
	fr.availability[testDate] = append(fr.availability[testDate], domain.AvailabilityRow{
		StaffID: off, Available: false,
	})
	fr.appointments = append(fr.appointments, domain.AppointmentRow{
		ID: uuid.New(), JobID: uuid.New(), StaffID: off,
		ScheduleDate:    testDate,
		TimeWindowStart: "09:00:00", TimeWindowEnd: "10:30:00",
	})
	svc := newTestSvc(fr)

	out, err := svc.Capacity(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Capacity: %v", err)
	}
	if out.TotalStaff != 2 || out.AvailableStaff != 1 {
		t.Errorf("staff = %d/%d, want 2/1", out.TotalStaff, out.AvailableStaff)
	}
	if out.TotalCapacityMinutes != 510 {
		t.Errorf("capacity = %d, want 510", out.TotalCapacityMinutes)
	}
	if out.ScheduledMinutes != 90 {
		t.Errorf("scheduled = %d, want 90", out.ScheduledMinutes)
	}
	if out.RemainingCapacityMinutes != 420 || !out.CanAcceptMore {
		t.Errorf("remaining = %d can_accept=%v, want 420 true", out.RemainingCapacityMinutes, out.CanAcceptMore)
	}
}

func TestReoptimizeKeepsJobsScheduled(t *testing.T) {
	fr := newFakeRepo()
	addTech(fr, "Ada")
	id := addJob(fr, "Acme", 60, 0)
	svc := newTestSvc(fr)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, domain.GenerateRequest{ScheduleDate: testDate, TimeoutSeconds: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	late := addJob(fr, "Birch", 45, 1)

	out, err := svc.Reoptimize(ctx, testDate, domain.ReoptimizeRequest{TimeoutSeconds: 1})
	if err != nil {
		t.Fatalf("Reoptimize: %v", err)
	}
	if !out.IsFeasible {
		t.Fatalf("expected feasible, hard=%d", out.HardScore)
	}
	for _, id := range []uuid.UUID{id, late} {
		if got := fr.jobs[id].Status; got != "scheduled" {
			t.Errorf("job %s status = %q, want scheduled", id, got)
		}
	}
	if len(fr.appointments) != 2 {
		t.Errorf("appointments = %d, want 2", len(fr.appointments))
	}
}
