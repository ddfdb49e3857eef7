package performance

import (
	"time"

	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/sheets"
)

type Cycle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Cycle) IsActive() bool {
	return c.Status == CycleStatusActive
}

// Ended reports whether the cycle's end date is strictly before now.
func (c Cycle) Ended(now time.Time) bool {
	return c.EndDate.Before(now)
}

type MetricCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Metric is a scored dimension. An empty DepartmentID makes it global.
type Metric struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	MaxScore     float64   `json:"maxScore"`
	ScaleType    string    `json:"scaleType"`
	Weight       float64   `json:"weight"`
	DepartmentID string    `json:"departmentId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (m Metric) InRange(score float64) bool {
	return score >= 0 && score <= m.MaxScore
}

func (m Metric) CoversDepartment(departmentID string) bool {
	return m.DepartmentID == "" || m.DepartmentID == departmentID
}

type MetricFilter struct {
	DepartmentID string
	CategoryID   string
	ActiveOnly   bool
}

type Exclusion struct {
	ID        string          `json:"id"`
	MetricID  string          `json:"metricId"`
	Target    ExclusionTarget `json:"target"`
	CreatedAt time.Time       `json:"createdAt"`
}

// EmployeeRef is the slice of an employee record eligibility depends on.
type EmployeeRef struct {
	ID           string
	DepartmentID string
	PositionID   string
	IsActive     bool
}

type Score struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	EmployeeName  string    `json:"employeeName"`
	MetricID      string    `json:"metricId"`
	MetricName    string    `json:"metricName"`
	MaxScore      float64   `json:"maxScore"`
	CycleID       string    `json:"cycleId"`
	EvaluatorID   string    `json:"evaluatorId"`
	EvaluatorName string    `json:"evaluatorName"`
	Score         float64   `json:"score"`
	Comment       string    `json:"comment"`
	EvaluatedAt   time.Time `json:"evaluatedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ScoreFilter struct {
	CycleID     string
	EmployeeID  string
	EvaluatorID string
	Limit       int
	Offset      int
}

// ScoreKey identifies a score record.
type ScoreKey struct {
	EmployeeID  string
	MetricID    string
	CycleID     string
	EvaluatorID string
}

type ScoreUpsert struct {
	ScoreKey
	Score   float64
	Comment string
}

type ScoreEntry struct {
	MetricID string  `json:"metricId"`
	Score    float64 `json:"score"`
	Comment  string  `json:"comment"`
}

type Submission struct {
	EmployeeID  string
	CycleID     string
	EvaluatorID string
	Entries     []ScoreEntry
}

type SubmissionResult struct {
	Saved  int                `json:"saved"`
	Errors []apperr.ItemError `json:"errors"`
}

// ImportRow is one parsed line of a bulk score file. Score stays raw text so
// non-numeric values can be reported per row.
type ImportRow struct {
	Line       int
	Email      string
	MetricName string
	Score      string
	Comment    string
}

func ImportRowsFromSheet(rows []sheets.Row) []ImportRow {
	out := make([]ImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImportRow{
			Line:       row.Line,
			Email:      row.Email,
			MetricName: row.MetricName,
			Score:      row.Score,
			Comment:    row.Comment,
		})
	}
	return out
}

type ImportReport struct {
	CycleID  string             `json:"cycleId"`
	Total    int                `json:"total"`
	Imported int                `json:"imported"`
	Warnings []apperr.ItemError `json:"warnings"`
	Errors   []apperr.ItemError `json:"errors"`
}
