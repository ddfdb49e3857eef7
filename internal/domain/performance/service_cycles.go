package performance

import (
	"context"
	"errors"
	"strings"

	"evalportal/internal/domain/audit"
	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/events"
	"evalportal/internal/platform/metrics"
)

const entityCycle = "evaluation_cycle"

// ExpireCycles closes every active cycle whose end date has passed and
// returns the ids it closed. Calling it again closes nothing. Callers run it
// before any query that depends on the active cycle; CurrentCycle does so.
func (s *Service) ExpireCycles(ctx context.Context) ([]string, error) {
	ids, err := s.store.ExpireCycles(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		metrics.CyclesExpired.Inc()
		s.publisher.Publish(ctx, events.TypeCycleExpired, id, nil)
		s.record(ctx, audit.ActionExpire, entityCycle, id, nil, map[string]string{"status": CycleStatusClosed})
	}
	return ids, nil
}

// CurrentCycle expires overdue cycles and returns the active one, or
// ErrNoActiveCycle.
func (s *Service) CurrentCycle(ctx context.Context) (Cycle, error) {
	if _, err := s.ExpireCycles(ctx); err != nil {
		return Cycle{}, err
	}
	return s.store.ActiveCycle(ctx)
}

func (s *Service) ListCycles(ctx context.Context) ([]Cycle, error) {
	if _, err := s.ExpireCycles(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCycles(ctx)
}

func (s *Service) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	return s.store.GetCycle(ctx, cycleID)
}

func validateCycle(cycle *Cycle) error {
	cycle.Name = strings.TrimSpace(cycle.Name)
	if cycle.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if cycle.StartDate.IsZero() {
		return apperr.Validation("startDate", "is required")
	}
	if cycle.EndDate.IsZero() {
		return apperr.Validation("endDate", "is required")
	}
	if !cycle.StartDate.Before(cycle.EndDate) {
		return ErrInvalidDates
	}
	return nil
}

// CreateCycle stores a draft cycle, or an active one when no other cycle is
// active and the end date is still ahead.
func (s *Service) CreateCycle(ctx context.Context, cycle Cycle) (Cycle, error) {
	if err := validateCycle(&cycle); err != nil {
		return Cycle{}, err
	}
	switch cycle.Status {
	case "":
		cycle.Status = CycleStatusDraft
	case CycleStatusDraft:
	case CycleStatusActive:
		if err := s.checkActivatable(ctx, cycle); err != nil {
			return Cycle{}, err
		}
	default:
		return Cycle{}, apperr.Validation("status", "must be draft or active")
	}

	id, err := s.store.CreateCycle(ctx, cycle)
	if err != nil {
		return Cycle{}, err
	}
	created, err := s.store.GetCycle(ctx, id)
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, audit.ActionCreate, entityCycle, id, nil, created)
	if created.IsActive() {
		s.publisher.Publish(ctx, events.TypeCycleActivated, id, created)
	}
	return created, nil
}

// UpdateCycle edits name, description and dates. Active cycles reject every
// field edit; status changes go through ActivateCycle and DeactivateCycle.
func (s *Service) UpdateCycle(ctx context.Context, cycleID string, cycle Cycle) (Cycle, error) {
	existing, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if existing.IsActive() {
		return Cycle{}, ErrCycleLocked
	}
	if err := validateCycle(&cycle); err != nil {
		return Cycle{}, err
	}
	if err := s.store.UpdateCycle(ctx, cycleID, cycle); err != nil {
		return Cycle{}, err
	}
	updated, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, audit.ActionUpdate, entityCycle, cycleID, existing, updated)
	return updated, nil
}

func (s *Service) checkActivatable(ctx context.Context, cycle Cycle) error {
	if cycle.Ended(s.now()) {
		return ErrCycleEnded
	}
	active, err := s.CurrentCycle(ctx)
	if err == nil && active.ID != cycle.ID {
		return ErrAnotherCycleActive
	}
	if err != nil && !errors.Is(err, ErrNoActiveCycle) {
		return err
	}
	return nil
}

// ActivateCycle moves a draft cycle to active. Activating the active cycle is
// a no-op; closed cycles stay closed.
func (s *Service) ActivateCycle(ctx context.Context, cycleID string) (Cycle, error) {
	if _, err := s.ExpireCycles(ctx); err != nil {
		return Cycle{}, err
	}
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	switch cycle.Status {
	case CycleStatusActive:
		return cycle, nil
	case CycleStatusClosed:
		return Cycle{}, ErrCycleClosed
	}
	if err := s.checkActivatable(ctx, cycle); err != nil {
		return Cycle{}, err
	}
	if err := s.store.SetCycleStatus(ctx, cycleID, CycleStatusActive); err != nil {
		return Cycle{}, err
	}
	before := cycle
	cycle.Status = CycleStatusActive
	s.record(ctx, audit.ActionActivate, entityCycle, cycleID, before, cycle)
	s.publisher.Publish(ctx, events.TypeCycleActivated, cycleID, cycle)
	return cycle, nil
}

// DeactivateCycle closes the active cycle. It is the only change an active
// cycle accepts.
func (s *Service) DeactivateCycle(ctx context.Context, cycleID string) (Cycle, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if !cycle.IsActive() {
		return Cycle{}, ErrCycleNotRunning
	}
	if err := s.store.SetCycleStatus(ctx, cycleID, CycleStatusClosed); err != nil {
		return Cycle{}, err
	}
	before := cycle
	cycle.Status = CycleStatusClosed
	s.record(ctx, audit.ActionDeactivate, entityCycle, cycleID, before, cycle)
	s.publisher.Publish(ctx, events.TypeCycleClosed, cycleID, cycle)
	return cycle, nil
}

// DeleteCycle removes a draft or closed cycle together with its scores.
func (s *Service) DeleteCycle(ctx context.Context, cycleID string) error {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if cycle.IsActive() {
		return ErrCycleDeleteActive
	}
	if err := s.store.DeleteCycle(ctx, cycleID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, entityCycle, cycleID, cycle, nil)
	return nil
}
