package performance

import "evalportal/internal/platform/apperr"

var (
	ErrCycleNotFound    = apperr.Lookup("evaluation cycle not found")
	ErrCategoryNotFound = apperr.Lookup("metric category not found")
	ErrMetricNotFound   = apperr.Lookup("metric not found")
	ErrEmployeeNotFound = apperr.Lookup("employee not found")

	ErrNoActiveCycle      = apperr.State("no active evaluation cycle")
	ErrCycleNotActive     = apperr.State("cycle is not the active cycle")
	ErrCycleLocked        = apperr.State("an active cycle can only be deactivated")
	ErrCycleDeleteActive  = apperr.State("an active cycle cannot be deleted")
	ErrAnotherCycleActive = apperr.State("another cycle is already active")
	ErrCycleEnded         = apperr.State("cycle end date has already passed")
	ErrCycleClosed        = apperr.State("a closed cycle cannot be reactivated")
	ErrCycleNotRunning    = apperr.State("only an active cycle can be deactivated")
	ErrMetricHasScores    = apperr.State("metric is referenced by score records")
	ErrCategoryInUse      = apperr.State("category still has metrics")

	ErrMetricNotApplicable = apperr.Validation("metricId", "metric does not apply to this employee")
	ErrScoreOutOfRange     = apperr.Validation("score", "out of range")
	ErrScoreNotNumeric     = apperr.Validation("score", "must be a number")
	ErrInvalidDates        = apperr.Validation("endDate", "must be after startDate")

	ErrInvalidExclusion = apperr.Constraint("exclusion must target exactly one employee or position")
)
