package reports

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalportal/internal/domain/performance"
	"evalportal/internal/platform/apperr"
)

type fakeStore struct {
	scores      map[string][]ScoreRow
	active      []ActiveEmployee
	departments []NamedRef
	categories  []NamedRef
	headline    Headline
}

func (f *fakeStore) ScoreRows(_ context.Context, cycleID string) ([]ScoreRow, error) {
	return f.scores[cycleID], nil
}

func (f *fakeStore) ActiveEmployees(context.Context) ([]ActiveEmployee, error) { return f.active, nil }

func (f *fakeStore) Departments(context.Context) ([]NamedRef, error) { return f.departments, nil }

func (f *fakeStore) Categories(context.Context) ([]NamedRef, error) { return f.categories, nil }

func (f *fakeStore) Headline(context.Context) (Headline, error) { return f.headline, nil }

type fakeCycles struct {
	current *performance.Cycle
	all     map[string]performance.Cycle
}

func (f *fakeCycles) CurrentCycle(context.Context) (performance.Cycle, error) {
	if f.current == nil {
		return performance.Cycle{}, performance.ErrNoActiveCycle
	}
	return *f.current, nil
}

func (f *fakeCycles) GetCycle(_ context.Context, cycleID string) (performance.Cycle, error) {
	cycle, ok := f.all[cycleID]
	if !ok {
		return performance.Cycle{}, performance.ErrCycleNotFound
	}
	return cycle, nil
}

func newTestService() (*Service, *fakeCycles) {
	q1 := performance.Cycle{ID: "q1", Name: "Q1 2026", Status: performance.CycleStatusActive}
	q0 := performance.Cycle{ID: "q0", Name: "Q4 2025", Status: performance.CycleStatusClosed}
	store := &fakeStore{
		scores: map[string][]ScoreRow{
			"q1": {
				{EmployeeID: "a", EmployeeName: "Ann", DepartmentID: "d1", DepartmentName: "Engineering", CategoryID: "c1", Score: 9},
				{EmployeeID: "b", EmployeeName: "Bob", DepartmentID: "d1", DepartmentName: "Engineering", CategoryID: "c1", Score: 5},
				{EmployeeID: "c", EmployeeName: "Cid", DepartmentID: "d2", DepartmentName: "Sales", CategoryID: "c1", Score: 5},
			},
			"q0": {
				{EmployeeID: "a", EmployeeName: "Ann", DepartmentID: "d1", DepartmentName: "Engineering", CategoryID: "c1", Score: 2},
			},
		},
		active:      []ActiveEmployee{{ID: "a", DepartmentID: "d1"}, {ID: "b", DepartmentID: "d1"}, {ID: "c", DepartmentID: "d2"}},
		departments: []NamedRef{{ID: "d1", Name: "Engineering"}, {ID: "d2", Name: "Sales"}},
		categories:  []NamedRef{{ID: "c1", Name: "Quality"}, {ID: "c2", Name: "Teamwork"}},
		headline:    Headline{ActiveEmployees: 3, Cycles: 2, ActiveMetrics: 4, Feedback: 1},
	}
	cycles := &fakeCycles{current: &q1, all: map[string]performance.Cycle{"q1": q1, "q0": q0}}
	svc := NewService(store, cycles, 5)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC) }
	return svc, cycles
}

func TestDashboardUsesCurrentCycle(t *testing.T) {
	svc, _ := newTestService()

	dashboard, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, dashboard.Cycle)
	assert.Equal(t, "q1", dashboard.Cycle.ID)
	assert.Equal(t, 3, dashboard.Headline.ActiveEmployees)
	assert.Len(t, dashboard.Leaderboard, 3)
	assert.Equal(t, 3, dashboard.Completion.Evaluated)
	assert.Len(t, dashboard.CategoryAverages, 2)
	assert.Equal(t, 0.0, dashboard.CategoryAverages[1].Average)

	closed, err := svc.Dashboard(context.Background(), "q0")
	require.NoError(t, err)
	assert.Equal(t, 1, closed.Completion.Evaluated, "statistics stay within the requested cycle")
}

func TestDashboardWithoutActiveCycle(t *testing.T) {
	svc, cycles := newTestService()
	cycles.current = nil

	dashboard, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, dashboard.Cycle)
	assert.Equal(t, 2, dashboard.Headline.Cycles)
	assert.Empty(t, dashboard.Leaderboard)

	_, err = svc.Dashboard(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrLookup))
}

func TestExportKinds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	above, err := svc.Export(ctx, ExportRequest{Kind: ExportAboveAverage})
	require.NoError(t, err)
	require.Len(t, above.Rows, 1)
	assert.Equal(t, "Ann", above.Rows[0].FullName)

	below, err := svc.Export(ctx, ExportRequest{Kind: ExportBelowAverage})
	require.NoError(t, err)
	assert.Len(t, below.Rows, 2)

	dept, err := svc.Export(ctx, ExportRequest{Kind: ExportByDepartment, DepartmentID: "d2"})
	require.NoError(t, err)
	assert.Equal(t, "Employees of department: Sales", dept.Title)
	require.Len(t, dept.Rows, 1)
	assert.Equal(t, "Cid", dept.Rows[0].FullName)

	_, err = svc.Export(ctx, ExportRequest{Kind: ExportByDepartment})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = svc.Export(ctx, ExportRequest{Kind: ExportByDepartment, DepartmentID: "d9"})
	assert.True(t, errors.Is(err, apperr.ErrLookup))
	_, err = svc.Export(ctx, ExportRequest{Kind: "top"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	all, err := svc.Export(ctx, ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, ExportAll, all.Kind)
	assert.Equal(t, "report_all_15032026.pdf", all.Filename(FormatPDF))
}

func TestRenderers(t *testing.T) {
	svc, _ := newTestService()
	report, err := svc.Export(context.Background(), ExportRequest{Kind: ExportAll})
	require.NoError(t, err)

	var csvOut bytes.Buffer
	require.NoError(t, Render(&csvOut, FormatCSV, report))
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Employee,Department,Average score", lines[0])
	assert.Equal(t, "Ann,Engineering,9.00", lines[1])

	var pdfOut bytes.Buffer
	require.NoError(t, Render(&pdfOut, FormatPDF, report))
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF")))

	var xlsxOut bytes.Buffer
	require.NoError(t, Render(&xlsxOut, FormatXLSX, report))
	assert.True(t, bytes.HasPrefix(xlsxOut.Bytes(), []byte("PK")))

	format, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestRenderPDFEmbedsUnicodeFont(t *testing.T) {
	report := Report{
		Kind:        ExportAll,
		Title:       "Все сотрудники",
		CycleName:   "Первый квартал",
		GeneratedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		OverallMean: 7.5,
		Rows: []EmployeeAverage{
			{FullName: "Иван Петров", DepartmentName: "Разработка", Average: 8.25},
		},
	}

	var out bytes.Buffer
	require.NoError(t, RenderPDF(&out, report))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF")))
	assert.True(t, bytes.Contains(out.Bytes(), []byte("/Subtype /CIDFontType2")), "expected an embedded UTF-8 font")
	assert.False(t, bytes.Contains(out.Bytes(), []byte("/BaseFont /Helvetica")), "expected no core latin-1 font")
}
