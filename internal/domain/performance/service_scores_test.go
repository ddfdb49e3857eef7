package performance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/events"
)

func TestSubmitScoreUpsertsByKey(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	metric := f.addMetric("Perf", "", 10)
	ctx := context.Background()

	require.NoError(t, f.svc.SubmitScore(ctx, emp.ID, cycle.ID, "mgr-1", ScoreEntry{MetricID: metric.ID, Score: 6, Comment: "first"}))
	first := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: metric.ID, CycleID: cycle.ID, EvaluatorID: "mgr-1"}]
	require.NoError(t, f.svc.SubmitScore(ctx, emp.ID, cycle.ID, "mgr-1", ScoreEntry{MetricID: metric.ID, Score: 9, Comment: "revised"}))

	require.Len(t, f.store.scores, 1)
	stored := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: metric.ID, CycleID: cycle.ID, EvaluatorID: "mgr-1"}]
	assert.Equal(t, 9.0, stored.Score)
	assert.Equal(t, "revised", stored.Comment)
	assert.Equal(t, first.ID, stored.ID, "identity is preserved on overwrite")

	require.NoError(t, f.svc.SubmitScore(ctx, emp.ID, cycle.ID, emp.ID, ScoreEntry{MetricID: metric.ID, Score: 7}))
	assert.Len(t, f.store.scores, 2, "self and manager evaluations coexist")
	assert.Equal(t, 3, f.publisher.count(events.TypeScoreRecorded))
}

func TestSubmitScoreRangeEnforcement(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	metric := f.addMetric("Perf", "", 10)

	for _, score := range []float64{-0.5, 10.01} {
		err := f.svc.SubmitScore(context.Background(), emp.ID, cycle.ID, "mgr-1", ScoreEntry{MetricID: metric.ID, Score: score})
		assert.True(t, errors.Is(err, ErrScoreOutOfRange), "score %v", score)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}
	assert.Empty(t, f.store.scores)

	require.NoError(t, f.svc.SubmitScore(context.Background(), emp.ID, cycle.ID, "mgr-1", ScoreEntry{MetricID: metric.ID, Score: 10}))
	require.NoError(t, f.svc.SubmitScore(context.Background(), emp.ID, cycle.ID, "mgr-1", ScoreEntry{MetricID: metric.ID, Score: 0}))
}

func TestSubmitScoreDefaultsToActiveCycle(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	metric := f.addMetric("Perf", "", 10)

	require.NoError(t, f.svc.SubmitScore(context.Background(), emp.ID, "", "mgr-1", ScoreEntry{MetricID: metric.ID, Score: 4.5}))
	stored, ok := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: metric.ID, CycleID: cycle.ID, EvaluatorID: "mgr-1"}]
	require.True(t, ok)
	assert.Equal(t, 4.5, stored.Score)
}

func TestSubmitScoresCycleGating(t *testing.T) {
	f := newFixture()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	metric := f.addMetric("Perf", "", 10)
	closed := f.addCycle("Q0", CycleStatusClosed, testNow.AddDate(0, -6, 0), testNow.AddDate(0, -3, 0))
	sub := Submission{EmployeeID: emp.ID, CycleID: closed.ID, EvaluatorID: "mgr-1", Entries: []ScoreEntry{{MetricID: metric.ID, Score: 5}}}

	_, err := f.svc.SubmitScores(context.Background(), sub)
	assert.True(t, errors.Is(err, ErrCycleNotActive))

	f.activeCycle()
	_, err = f.svc.SubmitScores(context.Background(), sub)
	assert.True(t, errors.Is(err, ErrCycleNotActive), "scores go to the active cycle only")
	assert.Empty(t, f.store.scores)
}

func TestSubmitScoresPartialSuccess(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	perf := f.addMetric("Perf", "", 10)
	quality := f.addMetric("Quality", "", 5)
	excluded := f.addMetric("On-call", "", 5)
	f.store.exclusions[excluded.ID] = []ExclusionTarget{PositionTarget("pos-1")}

	result, err := f.svc.SubmitScores(context.Background(), Submission{
		EmployeeID:  emp.ID,
		EvaluatorID: "mgr-1",
		Entries: []ScoreEntry{
			{MetricID: perf.ID, Score: 8},
			{MetricID: quality.ID, Score: 7},
			{MetricID: excluded.ID, Score: 3},
			{MetricID: quality.ID, Score: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "validation_error", result.Errors[0].Kind)
	assert.Equal(t, 2, result.Errors[1].Index)
	assert.Equal(t, excluded.ID, result.Errors[1].Key)

	stored := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: quality.ID, CycleID: cycle.ID, EvaluatorID: "mgr-1"}]
	assert.Equal(t, 4.0, stored.Score)
	assert.Contains(t, f.auditor.actions, "submit:employee_metric")
}

func TestImportScoresScenario(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	perf := f.addMetric("Perf", "", 10)

	report, err := f.svc.ImportScores(context.Background(), "admin-1", []ImportRow{
		{Line: 2, Email: "a@x.com", MetricName: "Perf", Score: "8.5"},
		{Line: 3, Email: "missing@x.com", MetricName: "Perf", Score: "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, cycle.ID, report.CycleID)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 3, report.Warnings[0].Index)
	assert.Equal(t, "missing@x.com", report.Warnings[0].Key)
	assert.Empty(t, report.Errors)

	stored := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: perf.ID, CycleID: cycle.ID, EvaluatorID: "admin-1"}]
	assert.Equal(t, 8.5, stored.Score)
	assert.Equal(t, 1, f.publisher.count(events.TypeImportFinished))
}

func TestImportScoresRowErrors(t *testing.T) {
	f := newFixture()
	cycle := f.activeCycle()
	emp := f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	perf := f.addMetric("Perf", "", 10)

	report, err := f.svc.ImportScores(context.Background(), "admin-1", []ImportRow{
		{Line: 2, Email: "a@x.com", MetricName: "Unknown", Score: "4"},
		{Line: 3, Email: "a@x.com", MetricName: "Perf", Score: "abc"},
		{Line: 4, Email: "a@x.com", MetricName: "Perf", Score: "11"},
		{Line: 5, Email: "A@X.com", MetricName: "Perf", Score: "3", Comment: "late"},
		{Line: 6, Email: "a@x.com", MetricName: "Perf", Score: "NaN"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 1, report.Imported)
	assert.Len(t, report.Warnings, 1)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, 3, report.Errors[0].Index)
	assert.Equal(t, 4, report.Errors[1].Index)
	assert.Equal(t, 6, report.Errors[2].Index)

	stored := f.store.scores[ScoreKey{EmployeeID: emp.ID, MetricID: perf.ID, CycleID: cycle.ID, EvaluatorID: "admin-1"}]
	assert.Equal(t, 3.0, stored.Score)
	assert.Equal(t, "late", stored.Comment)
}

func TestImportScoresWithoutActiveCycle(t *testing.T) {
	f := newFixture()
	f.store.addEmployee("emp-a", "a@x.com", "dep-1", "pos-1")
	f.addMetric("Perf", "", 10)

	report, err := f.svc.ImportScores(context.Background(), "admin-1", []ImportRow{
		{Line: 2, Email: "a@x.com", MetricName: "Perf", Score: "8"},
	})
	assert.True(t, errors.Is(err, ErrNoActiveCycle))
	assert.Zero(t, report.Imported)
	assert.Empty(t, f.store.scores)
}
