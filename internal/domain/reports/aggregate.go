package reports

import (
	"math"
	"sort"
)

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// EmployeeAverages averages every score row per employee, highest first.
// Employees without scores do not appear.
func EmployeeAverages(scores []ScoreRow) []EmployeeAverage {
	byEmployee := map[string]*EmployeeAverage{}
	sums := map[string]float64{}
	var order []string
	for _, row := range scores {
		avg, ok := byEmployee[row.EmployeeID]
		if !ok {
			avg = &EmployeeAverage{
				EmployeeID:     row.EmployeeID,
				FullName:       row.EmployeeName,
				DepartmentID:   row.DepartmentID,
				DepartmentName: row.DepartmentName,
			}
			byEmployee[row.EmployeeID] = avg
			order = append(order, row.EmployeeID)
		}
		avg.ScoreCount++
		sums[row.EmployeeID] += row.Score
	}

	out := make([]EmployeeAverage, 0, len(order))
	for _, id := range order {
		avg := byEmployee[id]
		avg.Average = sums[id] / float64(avg.ScoreCount)
		out = append(out, *avg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].FullName < out[j].FullName
	})
	return out
}

// Leaderboard returns the top limit employee averages; limit <= 0 keeps all.
func Leaderboard(scores []ScoreRow, limit int) []EmployeeAverage {
	averages := EmployeeAverages(scores)
	if limit > 0 && len(averages) > limit {
		averages = averages[:limit]
	}
	return averages
}

func evaluatedSet(scores []ScoreRow) map[string]bool {
	evaluated := make(map[string]bool)
	for _, row := range scores {
		evaluated[row.EmployeeID] = true
	}
	return evaluated
}

// ComputeCompletion counts active employees holding at least one score.
func ComputeCompletion(scores []ScoreRow, active []ActiveEmployee) Completion {
	evaluated := evaluatedSet(scores)
	out := Completion{Total: len(active)}
	for _, emp := range active {
		if evaluated[emp.ID] {
			out.Evaluated++
		}
	}
	out.NotEvaluated = out.Total - out.Evaluated
	if out.Total > 0 {
		out.Rate = float64(out.Evaluated) / float64(out.Total)
		out.Percent = round1(out.Rate * 100)
	}
	return out
}

// ComputeDepartmentActivity reports per-department completion in percent,
// skipping departments without active employees.
func ComputeDepartmentActivity(scores []ScoreRow, active []ActiveEmployee, departments []NamedRef) []DepartmentActivity {
	evaluated := evaluatedSet(scores)
	totals := map[string]int{}
	done := map[string]int{}
	for _, emp := range active {
		totals[emp.DepartmentID]++
		if evaluated[emp.ID] {
			done[emp.DepartmentID]++
		}
	}

	out := []DepartmentActivity{}
	for _, dep := range departments {
		total := totals[dep.ID]
		if total == 0 {
			continue
		}
		out = append(out, DepartmentActivity{
			DepartmentID: dep.ID,
			Name:         dep.Name,
			Total:        total,
			Evaluated:    done[dep.ID],
			Percent:      round1(float64(done[dep.ID]) / float64(total) * 100),
		})
	}
	return out
}

// DepartmentAverages averages score rows per department. Departments without
// scores are left out.
func DepartmentAverages(scores []ScoreRow) []GroupAverage {
	sums := map[string]float64{}
	counts := map[string]int{}
	names := map[string]string{}
	for _, row := range scores {
		sums[row.DepartmentID] += row.Score
		counts[row.DepartmentID]++
		names[row.DepartmentID] = row.DepartmentName
	}
	out := make([]GroupAverage, 0, len(counts))
	for id, count := range counts {
		out = append(out, GroupAverage{ID: id, Name: names[id], Average: sums[id] / float64(count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoryAverages averages score rows per metric category. Every category is
// present; one without scores averages 0.
func CategoryAverages(scores []ScoreRow, categories []NamedRef) []GroupAverage {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, row := range scores {
		sums[row.CategoryID] += row.Score
		counts[row.CategoryID]++
	}
	out := make([]GroupAverage, 0, len(categories))
	for _, category := range categories {
		avg := GroupAverage{ID: category.ID, Name: category.Name}
		if counts[category.ID] > 0 {
			avg.Average = sums[category.ID] / float64(counts[category.ID])
		}
		out = append(out, avg)
	}
	return out
}

func ScoreDistribution(scores []ScoreRow) []float64 {
	out := make([]float64, 0, len(scores))
	for _, row := range scores {
		out = append(out, row.Score)
	}
	return out
}

// OverallMean is the mean of the individual score rows, not of the
// per-employee averages.
func OverallMean(scores []ScoreRow) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, row := range scores {
		sum += row.Score
	}
	return sum / float64(len(scores))
}

// AboveAverage keeps employees whose own average is strictly above OverallMean.
func AboveAverage(scores []ScoreRow) []EmployeeAverage {
	mean := OverallMean(scores)
	return filterAverages(EmployeeAverages(scores), func(avg float64) bool { return avg > mean })
}

// BelowAverage keeps employees whose own average is strictly below OverallMean.
func BelowAverage(scores []ScoreRow) []EmployeeAverage {
	mean := OverallMean(scores)
	return filterAverages(EmployeeAverages(scores), func(avg float64) bool { return avg < mean })
}

func filterAverages(averages []EmployeeAverage, keep func(float64) bool) []EmployeeAverage {
	out := make([]EmployeeAverage, 0, len(averages))
	for _, avg := range averages {
		if keep(avg.Average) {
			out = append(out, avg)
		}
	}
	return out
}

// BuildDashboard computes every cycle statistic from ds.
func BuildDashboard(ds Dataset, leaderboardLimit int) Dashboard {
	cycle := ds.Cycle
	return Dashboard{
		Cycle:              &cycle,
		Leaderboard:        Leaderboard(ds.Scores, leaderboardLimit),
		Completion:         ComputeCompletion(ds.Scores, ds.ActiveEmployees),
		DepartmentActivity: ComputeDepartmentActivity(ds.Scores, ds.ActiveEmployees, ds.Departments),
		DepartmentAverages: DepartmentAverages(ds.Scores),
		CategoryAverages:   CategoryAverages(ds.Scores, ds.Categories),
		ScoreDistribution:  ScoreDistribution(ds.Scores),
		OverallMean:        OverallMean(ds.Scores),
	}
}
