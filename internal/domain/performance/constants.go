package performance

const (
	CycleStatusDraft  = "draft"
	CycleStatusActive = "active"
	CycleStatusClosed = "closed"

	DefaultMaxScore       = 10.0
	DefaultScaleType      = "10-point"
	DefaultMetricWeight   = 1.0
	DefaultCategoryWeight = 0.25
)
