package core

import "evalportal/internal/domain/auth"

// FilterEmployeeFields blanks workstation details unless the viewer is the
// employee, an admin, or a manager of the same department.
func FilterEmployeeFields(emp *Employee, actor auth.Actor) {
	if actor.Role == auth.RoleAdmin || actor.EmployeeID == emp.ID {
		return
	}
	if actor.Role == auth.RoleManager && actor.DepartmentID == emp.DepartmentID {
		return
	}
	emp.IPAddress = ""
	emp.HireDate = nil
}
