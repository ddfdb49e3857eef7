package reports

import "time"

// ScoreRow is one score record of a cycle joined to its employee, department
// and metric category.
type ScoreRow struct {
	EmployeeID     string
	EmployeeName   string
	DepartmentID   string
	DepartmentName string
	MetricID       string
	CategoryID     string
	Score          float64
}

type ActiveEmployee struct {
	ID           string
	DepartmentID string
}

type NamedRef struct {
	ID   string
	Name string
}

type CycleInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// Dataset holds everything the aggregates for one cycle are computed from.
type Dataset struct {
	Cycle           CycleInfo
	Scores          []ScoreRow
	ActiveEmployees []ActiveEmployee
	Departments     []NamedRef
	Categories      []NamedRef
}

type EmployeeAverage struct {
	EmployeeID     string  `json:"employeeId"`
	FullName       string  `json:"fullName"`
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	Average        float64 `json:"average"`
	ScoreCount     int     `json:"scoreCount"`
}

type Completion struct {
	Evaluated    int     `json:"evaluated"`
	NotEvaluated int     `json:"notEvaluated"`
	Total        int     `json:"total"`
	Rate         float64 `json:"rate"`
	Percent      float64 `json:"percent"`
}

type DepartmentActivity struct {
	DepartmentID string  `json:"departmentId"`
	Name         string  `json:"name"`
	Total        int     `json:"total"`
	Evaluated    int     `json:"evaluated"`
	Percent      float64 `json:"percent"`
}

type GroupAverage struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

type Headline struct {
	ActiveEmployees int `json:"activeEmployees"`
	Cycles          int `json:"cycles"`
	ActiveMetrics   int `json:"activeMetrics"`
	Feedback        int `json:"feedback"`
}

// Dashboard bundles the statistics page. Cycle is nil when no cycle is active;
// only Headline is filled then.
type Dashboard struct {
	Headline           Headline             `json:"headline"`
	Cycle              *CycleInfo           `json:"cycle"`
	Leaderboard        []EmployeeAverage    `json:"leaderboard"`
	Completion         Completion           `json:"completion"`
	DepartmentActivity []DepartmentActivity `json:"departmentActivity"`
	DepartmentAverages []GroupAverage       `json:"departmentAverages"`
	CategoryAverages   []GroupAverage       `json:"categoryAverages"`
	ScoreDistribution  []float64            `json:"scoreDistribution"`
	OverallMean        float64              `json:"overallMean"`
}

type ExportKind string

const (
	ExportAll          ExportKind = "all"
	ExportAboveAverage ExportKind = "above_avg"
	ExportBelowAverage ExportKind = "below_avg"
	ExportByDepartment ExportKind = "by_department"
)

type ExportRequest struct {
	Kind         ExportKind
	DepartmentID string
	CycleID      string
}

// Report is the renderer-neutral result of an export.
type Report struct {
	Kind        ExportKind        `json:"kind"`
	Title       string            `json:"title"`
	CycleName   string            `json:"cycleName"`
	GeneratedAt time.Time         `json:"generatedAt"`
	OverallMean float64           `json:"overallMean"`
	Rows        []EmployeeAverage `json:"rows"`
}
