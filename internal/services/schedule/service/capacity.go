package service

import (
	"context"

	"fieldops/internal/services/schedule/domain"
)

// Capacity reports how much technician time a date has left. Total
// capacity is the sum of availability windows minus lunches; booked
// minutes come from the persisted appointments.
func (s *Svc) Capacity(ctx context.Context, date string) (domain.CapacityResponse, error) {
	techs, err := s.repo.ActiveTechs(ctx)
	if err != nil {
		return domain.CapacityResponse{}, err
	}
	entries, err := s.repo.AvailabilityFor(ctx, date)
	if err != nil {
		return domain.CapacityResponse{}, err
	}
	scheduled, err := s.repo.ScheduledMinutes(ctx, date)
	if err != nil {
		return domain.CapacityResponse{}, err
	}

	isTech := make(map[string]bool, len(techs))
	for _, t := range techs {
		isTech[t.ID.String()] = true
	}

	available, totalCap := 0, 0
	for _, e := range entries {
		if !isTech[e.StaffID.String()] || !e.Available {
			continue
		}
		day, err := buildDay(e)
		if err != nil {
			s.log.Warn().Err(err).Str("staff_id", e.StaffID.String()).
				Msg("availability row invalid, excluded from capacity")
			continue
		}
		available++
		totalCap += day.AvailableMinutes()
	}

	remaining := totalCap - scheduled
	return domain.CapacityResponse{
		ScheduleDate:             date,
		TotalStaff:               len(techs),
		AvailableStaff:           available,
		TotalCapacityMinutes:     totalCap,
		ScheduledMinutes:         scheduled,
		RemainingCapacityMinutes: remaining,
		CanAcceptMore:            remaining > 0,
	}, nil
}
