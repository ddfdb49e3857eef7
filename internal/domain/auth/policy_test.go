package auth

import "testing"

func TestCanEvaluate(t *testing.T) {
	admin := Actor{EmployeeID: "a1", Role: RoleAdmin, DepartmentID: "d1"}
	manager := Actor{EmployeeID: "m1", Role: RoleManager, DepartmentID: "d1"}
	employee := Actor{EmployeeID: "e1", Role: RoleEmployee, DepartmentID: "d1"}

	sameDept := Subject{EmployeeID: "e2", DepartmentID: "d1"}
	otherDept := Subject{EmployeeID: "e3", DepartmentID: "d2"}
	self := Subject{EmployeeID: "e1", DepartmentID: "d1"}

	tests := []struct {
		name   string
		actor  Actor
		target Subject
		want   bool
	}{
		{name: "admin any department", actor: admin, target: otherDept, want: true},
		{name: "manager own department", actor: manager, target: sameDept, want: true},
		{name: "manager other department", actor: manager, target: otherDept, want: false},
		{name: "employee self", actor: employee, target: self, want: true},
		{name: "employee colleague", actor: employee, target: sameDept, want: false},
		{name: "unknown role", actor: Actor{EmployeeID: "x", Role: Role("guest")}, target: self, want: false},
		{name: "manager without department", actor: Actor{EmployeeID: "m2", Role: RoleManager}, target: Subject{EmployeeID: "e9"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEvaluate(tc.actor, tc.target); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanManageMetric(t *testing.T) {
	manager := Actor{EmployeeID: "m1", Role: RoleManager, DepartmentID: "d1"}
	if !CanManageMetric(manager, "d1") {
		t.Fatal("manager should manage own department metric")
	}
	if !CanManageMetric(manager, "") {
		t.Fatal("manager should manage global metric")
	}
	if CanManageMetric(manager, "d2") {
		t.Fatal("manager must not manage other department metric")
	}
	if CanManageMetric(Actor{Role: RoleEmployee, DepartmentID: "d1"}, "d1") {
		t.Fatal("employee must not manage metrics")
	}
	if !CanManageMetric(Actor{Role: RoleAdmin}, "d2") {
		t.Fatal("admin should manage any metric")
	}
}

func TestCanAssignRole(t *testing.T) {
	manager := Actor{Role: RoleManager}
	admin := Actor{Role: RoleAdmin}
	if CanAssignRole(manager, RoleAdmin) {
		t.Fatal("manager must not grant admin")
	}
	if !CanAssignRole(manager, RoleEmployee) {
		t.Fatal("manager should grant employee")
	}
	if !CanAssignRole(admin, RoleAdmin) {
		t.Fatal("admin should grant admin")
	}
	if CanAssignRole(admin, Role("root")) {
		t.Fatal("unknown role must be rejected")
	}
	if CanAssignRole(Actor{Role: RoleEmployee}, RoleEmployee) {
		t.Fatal("employee must not assign roles")
	}
}

func TestCanModifyEmployee(t *testing.T) {
	manager := Actor{EmployeeID: "m1", Role: RoleManager, DepartmentID: "d1"}
	if CanModifyEmployee(manager, Subject{EmployeeID: "m1", Role: RoleManager, DepartmentID: "d1"}) {
		t.Fatal("self modification must be rejected")
	}
	if CanModifyEmployee(manager, Subject{EmployeeID: "a1", Role: RoleAdmin, DepartmentID: "d1"}) {
		t.Fatal("manager must not modify admin")
	}
	if !CanModifyEmployee(manager, Subject{EmployeeID: "e1", Role: RoleEmployee, DepartmentID: "d1"}) {
		t.Fatal("manager should modify own department employee")
	}
	if CanModifyEmployee(manager, Subject{EmployeeID: "e2", Role: RoleEmployee, DepartmentID: "d2"}) {
		t.Fatal("manager must not modify other department employee")
	}
	if !CanModifyEmployee(Actor{EmployeeID: "a1", Role: RoleAdmin}, Subject{EmployeeID: "a2", Role: RoleAdmin}) {
		t.Fatal("admin should modify other admin")
	}
}

func TestHasPermission(t *testing.T) {
	if !HasPermission(RoleEmployee, PermScoresWrite) {
		t.Fatal("employee should submit self scores")
	}
	if HasPermission(RoleEmployee, PermScoresImport) {
		t.Fatal("employee must not import scores")
	}
	if HasPermission(RoleManager, PermAuditRead) {
		t.Fatal("manager must not read audit trail")
	}
	if !HasPermission(RoleAdmin, PermJobsRun) {
		t.Fatal("admin should run jobs")
	}
	if HasPermission(Role("guest"), PermOrgRead) {
		t.Fatal("unknown role has no permissions")
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Manager ")
	if err != nil || role != RoleManager {
		t.Fatalf("expected manager, got %q (%v)", role, err)
	}
	if _, err := ParseRole("hr"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
