package performance

// filterApplicable keeps the active metrics that cover the employee's
// department and are not excluded for the employee or their position.
func filterApplicable(emp EmployeeRef, metrics []Metric, exclusions []Exclusion) []Metric {
	excluded := make(map[string]bool, len(exclusions))
	for _, exclusion := range exclusions {
		if exclusion.Target.Matches(emp) {
			excluded[exclusion.MetricID] = true
		}
	}

	out := make([]Metric, 0, len(metrics))
	for _, metric := range metrics {
		if !metric.IsActive || !metric.CoversDepartment(emp.DepartmentID) {
			continue
		}
		if excluded[metric.ID] {
			continue
		}
		out = append(out, metric)
	}
	return out
}
