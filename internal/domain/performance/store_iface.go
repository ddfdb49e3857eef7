package performance

import (
	"context"
	"time"
)

type StoreAPI interface {
	ExpireCycles(ctx context.Context, now time.Time) ([]string, error)
	ActiveCycle(ctx context.Context) (Cycle, error)
	ListCycles(ctx context.Context) ([]Cycle, error)
	GetCycle(ctx context.Context, cycleID string) (Cycle, error)
	CreateCycle(ctx context.Context, cycle Cycle) (string, error)
	UpdateCycle(ctx context.Context, cycleID string, cycle Cycle) error
	SetCycleStatus(ctx context.Context, cycleID, status string) error
	DeleteCycle(ctx context.Context, cycleID string) error

	ListCategories(ctx context.Context) ([]MetricCategory, error)
	GetCategory(ctx context.Context, categoryID string) (MetricCategory, error)
	CreateCategory(ctx context.Context, category MetricCategory) (string, error)
	UpdateCategory(ctx context.Context, categoryID string, category MetricCategory) error
	DeleteCategory(ctx context.Context, categoryID string) error
	CategoryMetricCount(ctx context.Context, categoryID string) (int, error)

	ListMetrics(ctx context.Context, filter MetricFilter) ([]Metric, error)
	GetMetric(ctx context.Context, metricID string) (Metric, error)
	GetMetricByName(ctx context.Context, name string) (Metric, error)
	CreateMetric(ctx context.Context, metric Metric, targets []ExclusionTarget) (string, error)
	UpdateMetric(ctx context.Context, metricID string, metric Metric, targets []ExclusionTarget) error
	DeleteMetric(ctx context.Context, metricID string) error
	MetricScoreCount(ctx context.Context, metricID string) (int, error)
	ReplaceExclusions(ctx context.Context, metricID string, targets []ExclusionTarget) error
	ListExclusions(ctx context.Context, metricID string) ([]Exclusion, error)
	ExclusionsFor(ctx context.Context, employeeID, positionID string) ([]Exclusion, error)

	EmployeeRef(ctx context.Context, employeeID string) (EmployeeRef, error)
	EmployeeIDByEmail(ctx context.Context, email string) (string, error)
	UpsertScore(ctx context.Context, in ScoreUpsert) (string, error)
	ListScores(ctx context.Context, filter ScoreFilter) ([]Score, error)
}
