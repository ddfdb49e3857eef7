package reports

import (
	"math"
	"testing"
)

func row(employeeID, name, departmentID, categoryID string, score float64) ScoreRow {
	return ScoreRow{
		EmployeeID:     employeeID,
		EmployeeName:   name,
		DepartmentID:   departmentID,
		DepartmentName: "Dept " + departmentID,
		MetricID:       "m-" + categoryID,
		CategoryID:     categoryID,
		Score:          score,
	}
}

func TestAboveAndBelowAverageUseRowMean(t *testing.T) {
	scores := []ScoreRow{
		row("a", "A", "d1", "c1", 9),
		row("b", "B", "d1", "c1", 5),
		row("c", "C", "d2", "c1", 5),
	}
	if mean := OverallMean(scores); math.Abs(mean-6.333) > 0.001 {
		t.Fatalf("expected mean 6.33, got %v", mean)
	}

	above := AboveAverage(scores)
	if len(above) != 1 || above[0].EmployeeID != "a" {
		t.Fatalf("expected only A above average, got %+v", above)
	}
	below := BelowAverage(scores)
	if len(below) != 2 || below[0].EmployeeID != "b" || below[1].EmployeeID != "c" {
		t.Fatalf("expected B and C below average, got %+v", below)
	}
}

func TestRowMeanDiffersFromMeanOfAverages(t *testing.T) {
	// A has three rows averaging 8, B one row of 5: row mean 7.25, mean of averages 6.5.
	scores := []ScoreRow{
		row("a", "A", "d1", "c1", 8),
		row("a", "A", "d1", "c1", 8),
		row("a", "A", "d1", "c1", 8),
		row("b", "B", "d1", "c1", 5),
	}
	if mean := OverallMean(scores); mean != 7.25 {
		t.Fatalf("expected row mean 7.25, got %v", mean)
	}
	if above := AboveAverage(scores); len(above) != 1 || above[0].EmployeeID != "a" {
		t.Fatalf("unexpected above set %+v", above)
	}
}

func TestLeaderboard(t *testing.T) {
	scores := []ScoreRow{
		row("a", "Ann", "d1", "c1", 6),
		row("a", "Ann", "d1", "c2", 8),
		row("b", "Bob", "d2", "c1", 9),
		row("c", "Cid", "d2", "c1", 4),
	}
	board := Leaderboard(scores, 2)
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	if board[0].EmployeeID != "b" || board[1].EmployeeID != "a" {
		t.Fatalf("unexpected order %+v", board)
	}
	if board[1].Average != 7 || board[1].ScoreCount != 2 {
		t.Fatalf("unexpected average for Ann: %+v", board[1])
	}
	if len(Leaderboard(scores, 0)) != 3 {
		t.Fatal("limit 0 should keep every evaluated employee")
	}
	if len(Leaderboard(nil, 5)) != 0 {
		t.Fatal("expected empty leaderboard without scores")
	}
}

func TestCompletionCountsDistinctEmployees(t *testing.T) {
	active := []ActiveEmployee{{ID: "a", DepartmentID: "d1"}, {ID: "b", DepartmentID: "d1"}, {ID: "c", DepartmentID: "d2"}}
	scores := []ScoreRow{
		row("a", "A", "d1", "c1", 7),
		row("a", "A", "d1", "c2", 8),
		row("b", "B", "d1", "c1", 6),
	}
	got := ComputeCompletion(scores, active)
	if got.Evaluated != 2 || got.NotEvaluated != 1 || got.Total != 3 {
		t.Fatalf("unexpected completion %+v", got)
	}
	if got.Percent != 66.7 {
		t.Fatalf("expected 66.7 percent, got %v", got.Percent)
	}

	empty := ComputeCompletion(nil, nil)
	if empty.Rate != 0 || empty.Total != 0 {
		t.Fatalf("expected zero completion, got %+v", empty)
	}
}

func TestDepartmentActivity(t *testing.T) {
	departments := []NamedRef{{ID: "d1", Name: "Engineering"}, {ID: "d2", Name: "Sales"}, {ID: "d3", Name: "Empty"}}
	active := []ActiveEmployee{
		{ID: "a", DepartmentID: "d1"}, {ID: "b", DepartmentID: "d1"}, {ID: "c", DepartmentID: "d1"},
		{ID: "d", DepartmentID: "d2"},
	}
	scores := []ScoreRow{row("a", "A", "d1", "c1", 7)}

	got := ComputeDepartmentActivity(scores, active, departments)
	if len(got) != 2 {
		t.Fatalf("expected departments without active employees to be omitted, got %+v", got)
	}
	if got[0].Name != "Engineering" || got[0].Percent != 33.3 || got[0].Evaluated != 1 || got[0].Total != 3 {
		t.Fatalf("unexpected engineering activity %+v", got[0])
	}
	if got[1].Percent != 0 {
		t.Fatalf("expected zero activity for sales, got %v", got[1].Percent)
	}
}

func TestCategoryAveragesKeepEmptyCategories(t *testing.T) {
	categories := []NamedRef{{ID: "c1", Name: "Quality"}, {ID: "c2", Name: "Teamwork"}}
	scores := []ScoreRow{row("a", "A", "d1", "c1", 6), row("b", "B", "d1", "c1", 8)}

	got := CategoryAverages(scores, categories)
	if len(got) != 2 {
		t.Fatalf("expected both categories, got %+v", got)
	}
	if got[0].Average != 7 {
		t.Fatalf("expected quality average 7, got %v", got[0].Average)
	}
	if got[1].Name != "Teamwork" || got[1].Average != 0 {
		t.Fatalf("expected teamwork average 0, got %+v", got[1])
	}
}

func TestDepartmentAveragesOnlyScoredDepartments(t *testing.T) {
	scores := []ScoreRow{row("a", "A", "d1", "c1", 6), row("b", "B", "d1", "c1", 9)}
	got := DepartmentAverages(scores)
	if len(got) != 1 || got[0].ID != "d1" || got[0].Average != 7.5 {
		t.Fatalf("unexpected department averages %+v", got)
	}
}
