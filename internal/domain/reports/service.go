package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalportal/internal/domain/performance"
	"evalportal/internal/platform/apperr"
)

// CycleSource resolves cycles; *performance.Service satisfies it.
type CycleSource interface {
	CurrentCycle(ctx context.Context) (performance.Cycle, error)
	GetCycle(ctx context.Context, cycleID string) (performance.Cycle, error)
}

type Service struct {
	store            StoreAPI
	cycles           CycleSource
	leaderboardLimit int
	now              func() time.Time
}

func NewService(store StoreAPI, cycles CycleSource, leaderboardLimit int) *Service {
	return &Service{store: store, cycles: cycles, leaderboardLimit: leaderboardLimit, now: time.Now}
}

// resolveCycle returns the named cycle, or the current active one when
// cycleID is empty.
func (s *Service) resolveCycle(ctx context.Context, cycleID string) (CycleInfo, error) {
	var cycle performance.Cycle
	var err error
	if cycleID == "" {
		cycle, err = s.cycles.CurrentCycle(ctx)
	} else {
		cycle, err = s.cycles.GetCycle(ctx, cycleID)
	}
	if err != nil {
		return CycleInfo{}, err
	}
	return CycleInfo{ID: cycle.ID, Name: cycle.Name, StartDate: cycle.StartDate, EndDate: cycle.EndDate, Status: cycle.Status}, nil
}

// Dataset loads the raw inputs of every aggregate for one cycle.
func (s *Service) Dataset(ctx context.Context, cycleID string) (Dataset, error) {
	cycle, err := s.resolveCycle(ctx, cycleID)
	if err != nil {
		return Dataset{}, err
	}
	ds := Dataset{Cycle: cycle}
	if ds.Scores, err = s.store.ScoreRows(ctx, cycle.ID); err != nil {
		return Dataset{}, err
	}
	if ds.ActiveEmployees, err = s.store.ActiveEmployees(ctx); err != nil {
		return Dataset{}, err
	}
	if ds.Departments, err = s.store.Departments(ctx); err != nil {
		return Dataset{}, err
	}
	if ds.Categories, err = s.store.Categories(ctx); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Dashboard returns the headline counts and, when a cycle resolves, all of
// its statistics.
func (s *Service) Dashboard(ctx context.Context, cycleID string) (Dashboard, error) {
	headline, err := s.store.Headline(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	ds, err := s.Dataset(ctx, cycleID)
	if cycleID == "" && errors.Is(err, performance.ErrNoActiveCycle) {
		return Dashboard{
			Headline:           headline,
			Leaderboard:        []EmployeeAverage{},
			DepartmentActivity: []DepartmentActivity{},
			DepartmentAverages: []GroupAverage{},
			CategoryAverages:   []GroupAverage{},
			ScoreDistribution:  []float64{},
		}, nil
	}
	if err != nil {
		return Dashboard{}, err
	}
	dashboard := BuildDashboard(ds, s.leaderboardLimit)
	dashboard.Headline = headline
	return dashboard, nil
}

// AllEmployees ranks every evaluated employee of the cycle.
func (s *Service) AllEmployees(ctx context.Context, cycleID string) (CycleInfo, []EmployeeAverage, error) {
	ds, err := s.Dataset(ctx, cycleID)
	if err != nil {
		return CycleInfo{}, nil, err
	}
	return ds.Cycle, EmployeeAverages(ds.Scores), nil
}

// Export builds the rows of one report kind, ordered by average descending.
func (s *Service) Export(ctx context.Context, req ExportRequest) (Report, error) {
	if req.Kind == "" {
		req.Kind = ExportAll
	}
	switch req.Kind {
	case ExportAll, ExportAboveAverage, ExportBelowAverage:
	case ExportByDepartment:
		if req.DepartmentID == "" {
			return Report{}, apperr.Validation("departmentId", "is required for a department report")
		}
	default:
		return Report{}, apperr.Validation("kind", fmt.Sprintf("unknown report kind %q", req.Kind))
	}

	ds, err := s.Dataset(ctx, req.CycleID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(ds, req, s.now())
}

// BuildReport selects and titles the export rows for req from ds.
func BuildReport(ds Dataset, req ExportRequest, now time.Time) (Report, error) {
	report := Report{
		Kind:        req.Kind,
		CycleName:   ds.Cycle.Name,
		GeneratedAt: now,
		OverallMean: OverallMean(ds.Scores),
	}
	switch req.Kind {
	case ExportAboveAverage:
		report.Title = "Employees scoring above average"
		report.Rows = AboveAverage(ds.Scores)
	case ExportBelowAverage:
		report.Title = "Employees scoring below average"
		report.Rows = BelowAverage(ds.Scores)
	case ExportByDepartment:
		name := ""
		for _, dep := range ds.Departments {
			if dep.ID == req.DepartmentID {
				name = dep.Name
			}
		}
		if name == "" {
			return Report{}, apperr.Lookup("department not found")
		}
		report.Title = "Employees of department: " + name
		report.Rows = filterDepartment(EmployeeAverages(ds.Scores), req.DepartmentID)
	default:
		report.Title = "All employees"
		report.Rows = EmployeeAverages(ds.Scores)
	}
	return report, nil
}

func filterDepartment(averages []EmployeeAverage, departmentID string) []EmployeeAverage {
	out := make([]EmployeeAverage, 0, len(averages))
	for _, avg := range averages {
		if avg.DepartmentID == departmentID {
			out = append(out, avg)
		}
	}
	return out
}
