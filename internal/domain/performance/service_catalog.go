package performance

import (
	"context"
	"strings"

	"evalportal/internal/domain/audit"
	"evalportal/internal/platform/apperr"
)

const (
	entityCategory = "metric_category"
	entityMetric   = "metric"
)

func (s *Service) ListCategories(ctx context.Context) ([]MetricCategory, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, categoryID string) (MetricCategory, error) {
	return s.store.GetCategory(ctx, categoryID)
}

func normalizeCategory(category *MetricCategory) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if category.Weight < 0 {
		return apperr.Validation("weight", "must not be negative")
	}
	if category.Weight == 0 {
		category.Weight = DefaultCategoryWeight
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, category MetricCategory) (MetricCategory, error) {
	if err := normalizeCategory(&category); err != nil {
		return MetricCategory{}, err
	}
	id, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		return MetricCategory{}, err
	}
	category.ID = id
	s.record(ctx, audit.ActionCreate, entityCategory, id, nil, category)
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, categoryID string, category MetricCategory) (MetricCategory, error) {
	if err := normalizeCategory(&category); err != nil {
		return MetricCategory{}, err
	}
	if err := s.store.UpdateCategory(ctx, categoryID, category); err != nil {
		return MetricCategory{}, err
	}
	category.ID = categoryID
	s.record(ctx, audit.ActionUpdate, entityCategory, categoryID, nil, category)
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	count, err := s.store.CategoryMetricCount(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, entityCategory, categoryID, nil, nil)
	return nil
}

func (s *Service) ListMetrics(ctx context.Context, filter MetricFilter) ([]Metric, error) {
	return s.store.ListMetrics(ctx, filter)
}

func (s *Service) GetMetric(ctx context.Context, metricID string) (Metric, error) {
	return s.store.GetMetric(ctx, metricID)
}

func (s *Service) normalizeMetric(ctx context.Context, metric *Metric) error {
	metric.Name = strings.TrimSpace(metric.Name)
	metric.ScaleType = strings.TrimSpace(metric.ScaleType)
	metric.DepartmentID = strings.TrimSpace(metric.DepartmentID)
	switch {
	case metric.Name == "":
		return apperr.Validation("name", "is required")
	case metric.CategoryID == "":
		return apperr.Validation("categoryId", "is required")
	case metric.MaxScore < 0:
		return apperr.Validation("maxScore", "must be positive")
	case metric.Weight < 0:
		return apperr.Validation("weight", "must not be negative")
	}
	if metric.MaxScore == 0 {
		metric.MaxScore = DefaultMaxScore
	}
	if metric.Weight == 0 {
		metric.Weight = DefaultMetricWeight
	}
	if metric.ScaleType == "" {
		metric.ScaleType = DefaultScaleType
	}
	category, err := s.store.GetCategory(ctx, metric.CategoryID)
	if err != nil {
		return err
	}
	metric.CategoryName = category.Name
	return nil
}

// CreateMetric stores the metric with its exclusion set. Every target is
// checked before storage is touched.
func (s *Service) CreateMetric(ctx context.Context, metric Metric, targets []ExclusionTarget) (Metric, error) {
	targets, err := validateTargets(targets)
	if err != nil {
		return Metric{}, err
	}
	if err := s.normalizeMetric(ctx, &metric); err != nil {
		return Metric{}, err
	}
	id, err := s.store.CreateMetric(ctx, metric, targets)
	if err != nil {
		return Metric{}, err
	}
	created, err := s.store.GetMetric(ctx, id)
	if err != nil {
		return Metric{}, err
	}
	s.record(ctx, audit.ActionCreate, entityMetric, id, nil, map[string]any{"metric": created, "exclusions": targets})
	return created, nil
}

// UpdateMetric rewrites the metric and replaces its exclusion set with
// targets. A nil targets slice clears every exclusion.
func (s *Service) UpdateMetric(ctx context.Context, metricID string, metric Metric, targets []ExclusionTarget) (Metric, error) {
	targets, err := validateTargets(targets)
	if err != nil {
		return Metric{}, err
	}
	existing, err := s.store.GetMetric(ctx, metricID)
	if err != nil {
		return Metric{}, err
	}
	if err := s.normalizeMetric(ctx, &metric); err != nil {
		return Metric{}, err
	}
	if err := s.store.UpdateMetric(ctx, metricID, metric, targets); err != nil {
		return Metric{}, err
	}
	updated, err := s.store.GetMetric(ctx, metricID)
	if err != nil {
		return Metric{}, err
	}
	s.record(ctx, audit.ActionUpdate, entityMetric, metricID, existing, map[string]any{"metric": updated, "exclusions": targets})
	return updated, nil
}

// ReplaceExclusions swaps the metric's whole exclusion set for targets.
func (s *Service) ReplaceExclusions(ctx context.Context, metricID string, targets []ExclusionTarget) ([]Exclusion, error) {
	targets, err := validateTargets(targets)
	if err != nil {
		return nil, err
	}
	before, err := s.ListExclusions(ctx, metricID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceExclusions(ctx, metricID, targets); err != nil {
		return nil, err
	}
	after, err := s.store.ListExclusions(ctx, metricID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, "metric_exclusions", metricID, before, after)
	return after, nil
}

func (s *Service) ListExclusions(ctx context.Context, metricID string) ([]Exclusion, error) {
	if _, err := s.store.GetMetric(ctx, metricID); err != nil {
		return nil, err
	}
	return s.store.ListExclusions(ctx, metricID)
}

// DeleteMetric removes the metric and its exclusions. Metrics that already
// carry scores are kept; deactivate them instead.
func (s *Service) DeleteMetric(ctx context.Context, metricID string) error {
	metric, err := s.store.GetMetric(ctx, metricID)
	if err != nil {
		return err
	}
	count, err := s.store.MetricScoreCount(ctx, metricID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrMetricHasScores
	}
	if err := s.store.DeleteMetric(ctx, metricID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, entityMetric, metricID, metric, nil)
	return nil
}

// ApplicableMetrics returns the active metrics that apply to the employee:
// global or same-department metrics minus those excluded for the employee or
// the employee's position.
func (s *Service) ApplicableMetrics(ctx context.Context, employeeID string) ([]Metric, error) {
	emp, err := s.store.EmployeeRef(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.applicableFor(ctx, emp)
}

func (s *Service) applicableFor(ctx context.Context, emp EmployeeRef) ([]Metric, error) {
	candidates, err := s.store.ListMetrics(ctx, MetricFilter{DepartmentID: emp.DepartmentID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	exclusions, err := s.store.ExclusionsFor(ctx, emp.ID, emp.PositionID)
	if err != nil {
		return nil, err
	}
	return filterApplicable(emp, candidates, exclusions), nil
}
