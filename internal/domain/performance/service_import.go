package performance

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"evalportal/internal/domain/audit"
	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/events"
	"evalportal/internal/platform/metrics"
)

type rowOutcome struct {
	warning error
	failure error
}

type importLookups struct {
	employees map[string]string
	metrics   map[string]*Metric
}

// ImportScores upserts parsed file rows into the active cycle with the
// importer as evaluator. Unknown emails and metric names become warnings;
// unreadable or out-of-range scores become errors. Neither stops the batch
// and saved rows stay saved. With no active cycle nothing is processed.
func (s *Service) ImportScores(ctx context.Context, importerID string, rows []ImportRow) (ImportReport, error) {
	if strings.TrimSpace(importerID) == "" {
		return ImportReport{}, apperr.Validation("importerId", "is required")
	}
	cycle, err := s.CurrentCycle(ctx)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		CycleID:  cycle.ID,
		Total:    len(rows),
		Warnings: []apperr.ItemError{},
		Errors:   []apperr.ItemError{},
	}
	lookups := importLookups{employees: map[string]string{}, metrics: map[string]*Metric{}}
	for _, row := range rows {
		outcome, err := s.importRow(ctx, cycle, importerID, row, lookups)
		if err != nil {
			return report, err
		}
		switch {
		case outcome.warning != nil:
			metrics.ImportRows.WithLabelValues(metrics.OutcomeWarning).Inc()
			report.Warnings = append(report.Warnings, apperr.NewItemError(row.Line, row.Email, outcome.warning))
		case outcome.failure != nil:
			metrics.ImportRows.WithLabelValues(metrics.OutcomeError).Inc()
			report.Errors = append(report.Errors, apperr.NewItemError(row.Line, row.Email, outcome.failure))
		default:
			metrics.ImportRows.WithLabelValues(metrics.OutcomeImported).Inc()
			report.Imported++
		}
	}

	s.record(ctx, audit.ActionImport, entityScore, cycle.ID, nil, map[string]int{
		"total":    report.Total,
		"imported": report.Imported,
		"warnings": len(report.Warnings),
		"errors":   len(report.Errors),
	})
	s.publisher.Publish(ctx, events.TypeImportFinished, cycle.ID, report)
	return report, nil
}

// importRow reports row-level problems in the outcome; only storage failures
// come back as the error.
func (s *Service) importRow(ctx context.Context, cycle Cycle, importerID string, row ImportRow, lookups importLookups) (rowOutcome, error) {
	employeeID, err := lookups.employee(ctx, s.store, row.Email)
	if errors.Is(err, ErrEmployeeNotFound) {
		return rowOutcome{warning: apperr.Lookup("unknown employee email " + row.Email)}, nil
	}
	if err != nil {
		return rowOutcome{}, err
	}
	metric, err := lookups.metric(ctx, s.store, row.MetricName)
	if errors.Is(err, ErrMetricNotFound) {
		return rowOutcome{warning: apperr.Lookup("unknown metric " + row.MetricName)}, nil
	}
	if err != nil {
		return rowOutcome{}, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(row.Score), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return rowOutcome{failure: ErrScoreNotNumeric}, nil
	}
	if !metric.InRange(score) {
		return rowOutcome{failure: outOfRange(*metric)}, nil
	}

	in := ScoreUpsert{
		ScoreKey: ScoreKey{EmployeeID: employeeID, MetricID: metric.ID, CycleID: cycle.ID, EvaluatorID: importerID},
		Score:    score,
		Comment:  strings.TrimSpace(row.Comment),
	}
	if err := s.saveScore(ctx, in, metrics.SourceImport); err != nil {
		if isDomainError(err) {
			return rowOutcome{failure: err}, nil
		}
		return rowOutcome{}, err
	}
	return rowOutcome{}, nil
}

func (l importLookups) employee(ctx context.Context, store StoreAPI, email string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if id, ok := l.employees[key]; ok {
		if id == "" {
			return "", ErrEmployeeNotFound
		}
		return id, nil
	}
	id, err := store.EmployeeIDByEmail(ctx, key)
	if errors.Is(err, ErrEmployeeNotFound) {
		l.employees[key] = ""
	} else if err == nil {
		l.employees[key] = id
	}
	return id, err
}

func (l importLookups) metric(ctx context.Context, store StoreAPI, name string) (*Metric, error) {
	key := strings.TrimSpace(name)
	if metric, ok := l.metrics[key]; ok {
		if metric == nil {
			return nil, ErrMetricNotFound
		}
		return metric, nil
	}
	metric, err := store.GetMetricByName(ctx, key)
	if errors.Is(err, ErrMetricNotFound) {
		l.metrics[key] = nil
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	l.metrics[key] = &metric
	return &metric, nil
}
