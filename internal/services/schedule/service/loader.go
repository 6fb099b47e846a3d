package service

import (
	"context"

	"github.com/google/uuid"

	"fieldops/internal/core/availability"
	"fieldops/internal/core/clock"
	"fieldops/internal/core/geo"
	"fieldops/internal/core/plan"
	"fieldops/internal/services/schedule/domain"
)

// loadSnapshot projects the store into an immutable solver input: the
// day's roster, the eligible jobs, and a precomputed travel matrix.
// Nothing here writes; the same loader feeds generate, preview,
// re-optimization, and emergency insertion (the latter two with
// withScheduled so persisted stops resolve).
func (s *Svc) loadSnapshot(ctx context.Context, date string, withScheduled bool) (*plan.SolverInput, error) {
	techs, err := s.repo.ActiveTechs(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.AvailabilityFor(ctx, date)
	if err != nil {
		return nil, err
	}
	byStaff := make(map[string]domain.AvailabilityRow, len(entries))
	for _, e := range entries {
		byStaff[e.StaffID.String()] = e
	}

	in := &plan.SolverInput{Date: date}
	for _, t := range techs {
		row, ok := byStaff[t.ID.String()]
		if !ok || !row.Available {
			continue
		}
		day, err := buildDay(row)
		if err != nil {
			s.log.Warn().Err(err).Str("staff_id", t.ID.String()).
				Msg("availability row invalid, treating staff as off")
			continue
		}
		home, err := geo.New(t.HomeLat, t.HomeLon, t.HomeCity)
		if err != nil {
			s.log.Warn().Err(err).Str("staff_id", t.ID.String()).
				Msg("staff home not geocoded, skipping")
			continue
		}
		in.Staff = append(in.Staff, plan.StaffSnapshot{
			ID:        t.ID,
			Name:      t.Name,
			Home:      home,
			Equipment: t.Equipment,
			Day:       day,
		})
	}

	jobRows, err := s.repo.ApprovedJobs(ctx)
	if err != nil {
		return nil, err
	}
	if withScheduled {
		scheduled, err := s.repo.ScheduledJobsFor(ctx, date)
		if err != nil {
			return nil, err
		}
		jobRows = append(jobRows, scheduled...)
	}

	for _, row := range jobRows {
		snap, ok := buildJob(row)
		if !ok {
			in.Unlocatable = append(in.Unlocatable, plan.Unassigned{
				JobID: row.ID, Reason: plan.ReasonUnlocatable,
			})
			continue
		}
		in.Jobs = append(in.Jobs, snap)
	}

	locs := make([]geo.Location, 0, len(in.Staff)+len(in.Jobs))
	for _, st := range in.Staff {
		locs = append(locs, st.Home)
	}
	for _, j := range in.Jobs {
		locs = append(locs, j.Location)
	}
	in.Matrix = s.oracle.BuildMatrix(ctx, locs)
	return in, nil
}

// buildDay converts one availability row, validating the window.
func buildDay(row domain.AvailabilityRow) (availability.Entry, error) {
	ws, err := clock.Parse(row.WindowStart)
	if err != nil {
		return availability.Entry{}, err
	}
	we, err := clock.Parse(row.WindowEnd)
	if err != nil {
		return availability.Entry{}, err
	}
	ls := clock.None
	if row.LunchMinutes > 0 && row.LunchStart != "" {
		if ls, err = clock.Parse(row.LunchStart); err != nil {
			return availability.Entry{}, err
		}
	}
	return availability.New(ws, we, ls, row.LunchMinutes)
}

// buildJob converts one job row; ok=false marks it unlocatable.
func buildJob(row domain.JobRow) (plan.JobSnapshot, bool) {
	if row.Lat == nil || row.Lon == nil {
		return plan.JobSnapshot{}, false
	}
	loc, err := geo.New(*row.Lat, *row.Lon, row.City)
	if err != nil {
		return plan.JobSnapshot{}, false
	}
	staffing := row.StaffingNeeded
	if staffing < 1 {
		staffing = 1
	}
	return plan.JobSnapshot{
		ID:              row.ID,
		CustomerID:      row.CustomerID,
		CustomerName:    row.CustomerName,
		Address:         row.Address,
		Location:        loc,
		JobType:         row.JobType,
		DurationMinutes: row.DurationMinutes,
		BufferMinutes:   row.BufferMinutes,
		Priority:        row.Priority,
		Equipment:       row.Equipment,
		StaffingNeeded:  staffing,
		EarliestStart:   optMinute(row.EarliestStart),
		LatestFinish:    optMinute(row.LatestFinish),
		PreferredStart:  optMinute(row.PreferredStart),
		PreferredEnd:    optMinute(row.PreferredEnd),
		Status:          row.Status,
		CreatedAt:       row.CreatedAt,
	}, true
}

func optMinute(s string) clock.Minute {
	if s == "" {
		return clock.None
	}
	m, err := clock.Parse(s)
	if err != nil {
		return clock.None
	}
	return m
}

// persistedSchedule rebuilds the in-memory schedule from appointment
// rows, one tour per snapshot staff member, preserving route order.
func persistedSchedule(in *plan.SolverInput, rows []domain.AppointmentRow) plan.Schedule {
	sched := plan.Schedule{Date: in.Date}
	sched.Tours = make([]plan.Tour, len(in.Staff))
	for i, st := range in.Staff {
		sched.Tours[i] = plan.Tour{StaffID: st.ID}
	}

	for _, row := range rows {
		tour := sched.Tour(row.StaffID)
		if tour == nil {
			continue // staff no longer on the day's roster
		}
		job, ok := in.Job(row.JobID)
		if !ok {
			continue
		}
		start := optMinute(row.TimeWindowStart)
		end := optMinute(row.TimeWindowEnd)
		arrive := optMinute(row.EstimatedArrival)
		if !arrive.Set() {
			arrive = start
		}

		prevLoc := mustStaffHome(in, row.StaffID)
		if n := len(tour.Stops); n > 0 {
			if prev, ok := in.Job(tour.Stops[n-1].JobID); ok {
				prevLoc = prev.Location
			}
		}
		tour.Stops = append(tour.Stops, plan.Stop{
			JobID:          row.JobID,
			Arrive:         arrive,
			Start:          start,
			End:            end,
			TravelFromPrev: in.Matrix.Minutes(prevLoc, job.Location),
		})
	}
	return sched
}

func mustStaffHome(in *plan.SolverInput, staffID uuid.UUID) geo.Location {
	if st, ok := in.StaffByID(staffID); ok {
		return st.Home
	}
	return geo.Location{}
}
