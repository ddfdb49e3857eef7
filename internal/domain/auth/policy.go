package auth

// Actor is the authenticated employee a decision is made for.
type Actor struct {
	EmployeeID   string
	Role         Role
	DepartmentID string
}

// Subject is the employee an action targets.
type Subject struct {
	EmployeeID   string
	Role         Role
	DepartmentID string
}

// CanEvaluate: admins score anyone, managers their own department, employees
// only themselves.
func CanEvaluate(actor Actor, target Subject) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return actor.DepartmentID != "" && actor.DepartmentID == target.DepartmentID
	case RoleEmployee:
		return actor.EmployeeID != "" && actor.EmployeeID == target.EmployeeID
	}
	return false
}

// CanManageMetric decides create/edit/delete on a metric scoped to
// departmentID. An empty departmentID is a global metric.
func CanManageMetric(actor Actor, departmentID string) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return departmentID == "" || departmentID == actor.DepartmentID
	}
	return false
}

// CanManageDepartment covers departments themselves.
func CanManageDepartment(actor Actor) bool {
	return actor.Role == RoleAdmin
}

// CanManagePosition covers positions inside departmentID.
func CanManagePosition(actor Actor, departmentID string) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return departmentID == actor.DepartmentID
	}
	return false
}

func CanManageCycles(actor Actor) bool {
	return actor.Role.Staff()
}

func CanAssignRole(actor Actor, role Role) bool {
	if !actor.Role.Staff() || !role.Valid() {
		return false
	}
	if role == RoleAdmin {
		return actor.Role == RoleAdmin
	}
	return true
}

// CanModifyEmployee covers edit and delete. Nobody edits themselves through the
// management path and only admins touch other admins.
func CanModifyEmployee(actor Actor, target Subject) bool {
	if actor.EmployeeID != "" && actor.EmployeeID == target.EmployeeID {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return target.Role != RoleAdmin && target.DepartmentID == actor.DepartmentID
	}
	return false
}

// CanViewDepartment restricts managers to their own department in listings.
func CanViewDepartment(actor Actor, departmentID string) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return departmentID == actor.DepartmentID
}
