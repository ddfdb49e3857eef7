package auth

const (
	PermEmployeesRead  = "core.employees.read"
	PermEmployeesWrite = "core.employees.write"
	PermOrgRead        = "core.org.read"
	PermOrgWrite       = "core.org.write"
	PermCyclesRead     = "cycles.read"
	PermCyclesWrite    = "cycles.write"
	PermMetricsRead    = "metrics.read"
	PermMetricsWrite   = "metrics.write"
	PermScoresWrite    = "scores.write"
	PermScoresImport   = "scores.import"
	PermReportsRead    = "reports.read"
	PermReportsExport  = "reports.export"
	PermFeedbackWrite  = "feedback.write"
	PermAuditRead      = "audit.read"
	PermJobsRun        = "jobs.run"
)

var RolePermissions = map[Role][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOrgRead,
		PermCyclesRead,
		PermMetricsRead,
		PermScoresWrite,
		PermReportsRead,
		PermFeedbackWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermCyclesRead,
		PermCyclesWrite,
		PermMetricsRead,
		PermMetricsWrite,
		PermScoresWrite,
		PermScoresImport,
		PermReportsRead,
		PermReportsExport,
		PermFeedbackWrite,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermCyclesRead,
		PermCyclesWrite,
		PermMetricsRead,
		PermMetricsWrite,
		PermScoresWrite,
		PermScoresImport,
		PermReportsRead,
		PermReportsExport,
		PermFeedbackWrite,
		PermAuditRead,
		PermJobsRun,
	},
}

func HasPermission(role Role, permission string) bool {
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true
		}
	}
	return false
}
