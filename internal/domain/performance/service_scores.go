package performance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"evalportal/internal/domain/audit"
	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/events"
	"evalportal/internal/platform/metrics"
)

const entityScore = "employee_metric"

type entryFailure struct {
	index    int
	metricID string
	err      error
}

// SubmitScores records one evaluator's scores for one employee in the active
// cycle. Entries are checked and upserted one by one: a bad entry is reported
// in Errors and the rest are still saved. Permission checks belong to the
// caller.
func (s *Service) SubmitScores(ctx context.Context, sub Submission) (SubmissionResult, error) {
	saved, failures, err := s.submit(ctx, sub)
	result := SubmissionResult{Saved: saved, Errors: []apperr.ItemError{}}
	for _, failure := range failures {
		result.Errors = append(result.Errors, apperr.NewItemError(failure.index, failure.metricID, failure.err))
	}
	return result, err
}

// SubmitScore records a single score and returns its rejection, if any, as
// the error. An empty cycleID means the active cycle.
func (s *Service) SubmitScore(ctx context.Context, employeeID, cycleID, evaluatorID string, entry ScoreEntry) error {
	_, failures, err := s.submit(ctx, Submission{
		EmployeeID:  employeeID,
		CycleID:     cycleID,
		EvaluatorID: evaluatorID,
		Entries:     []ScoreEntry{entry},
	})
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return failures[0].err
	}
	return nil
}

func (s *Service) submit(ctx context.Context, sub Submission) (int, []entryFailure, error) {
	if strings.TrimSpace(sub.EmployeeID) == "" {
		return 0, nil, apperr.Validation("employeeId", "is required")
	}
	if strings.TrimSpace(sub.EvaluatorID) == "" {
		return 0, nil, apperr.Validation("evaluatorId", "is required")
	}
	cycle, err := s.CurrentCycle(ctx)
	if errors.Is(err, ErrNoActiveCycle) {
		return 0, nil, ErrCycleNotActive
	}
	if err != nil {
		return 0, nil, err
	}
	if sub.CycleID == "" {
		sub.CycleID = cycle.ID
	}
	if sub.CycleID != cycle.ID {
		return 0, nil, ErrCycleNotActive
	}

	emp, err := s.store.EmployeeRef(ctx, sub.EmployeeID)
	if err != nil {
		return 0, nil, err
	}
	applicable, err := s.applicableFor(ctx, emp)
	if err != nil {
		return 0, nil, err
	}
	byID := make(map[string]Metric, len(applicable))
	for _, metric := range applicable {
		byID[metric.ID] = metric
	}

	saved := 0
	var failures []entryFailure
	for i, entry := range sub.Entries {
		metric, ok := byID[entry.MetricID]
		if !ok {
			metrics.ScoresRejected.WithLabelValues("not_applicable").Inc()
			failures = append(failures, entryFailure{index: i, metricID: entry.MetricID, err: ErrMetricNotApplicable})
			continue
		}
		if !metric.InRange(entry.Score) {
			metrics.ScoresRejected.WithLabelValues("out_of_range").Inc()
			failures = append(failures, entryFailure{index: i, metricID: entry.MetricID, err: outOfRange(metric)})
			continue
		}
		in := ScoreUpsert{
			ScoreKey: ScoreKey{EmployeeID: emp.ID, MetricID: metric.ID, CycleID: cycle.ID, EvaluatorID: sub.EvaluatorID},
			Score:    entry.Score,
			Comment:  strings.TrimSpace(entry.Comment),
		}
		if err := s.saveScore(ctx, in, metrics.SourceForm); err != nil {
			if !isDomainError(err) {
				return saved, failures, err
			}
			metrics.ScoresRejected.WithLabelValues("storage").Inc()
			failures = append(failures, entryFailure{index: i, metricID: entry.MetricID, err: err})
			continue
		}
		saved++
	}

	if saved > 0 {
		s.record(ctx, audit.ActionSubmit, entityScore, emp.ID, nil, map[string]any{
			"cycleId":     cycle.ID,
			"evaluatorId": sub.EvaluatorID,
			"saved":       saved,
			"rejected":    len(failures),
		})
	}
	return saved, failures, nil
}

func (s *Service) saveScore(ctx context.Context, in ScoreUpsert, source string) error {
	id, err := s.store.UpsertScore(ctx, in)
	if err != nil {
		return err
	}
	metrics.ScoresSaved.WithLabelValues(source).Inc()
	s.publisher.Publish(ctx, events.TypeScoreRecorded, id, map[string]any{
		"employeeId":  in.EmployeeID,
		"metricId":    in.MetricID,
		"cycleId":     in.CycleID,
		"evaluatorId": in.EvaluatorID,
		"score":       in.Score,
		"source":      source,
	})
	return nil
}

func outOfRange(metric Metric) error {
	return fmt.Errorf("%w: must be between 0 and %g for %s", ErrScoreOutOfRange, metric.MaxScore, metric.Name)
}

func isDomainError(err error) bool {
	return errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrLookup) ||
		errors.Is(err, apperr.ErrState) || errors.Is(err, apperr.ErrConstraint)
}

func (s *Service) ListScores(ctx context.Context, filter ScoreFilter) ([]Score, error) {
	return s.store.ListScores(ctx, filter)
}
