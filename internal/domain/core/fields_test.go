package core

import (
	"testing"
	"time"

	"evalportal/internal/domain/auth"
)

func sampleEmployee() *Employee {
	hired := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	return &Employee{
		ID:           "e1",
		DepartmentID: "d1",
		IPAddress:    "10.0.0.12",
		HireDate:     &hired,
	}
}

func TestFilterEmployeeFieldsAdmin(t *testing.T) {
	emp := sampleEmployee()
	FilterEmployeeFields(emp, auth.Actor{EmployeeID: "a1", Role: auth.RoleAdmin, DepartmentID: "d9"})
	if emp.IPAddress == "" || emp.HireDate == nil {
		t.Fatal("admin should retain workstation fields")
	}
}

func TestFilterEmployeeFieldsManager(t *testing.T) {
	emp := sampleEmployee()
	FilterEmployeeFields(emp, auth.Actor{EmployeeID: "m1", Role: auth.RoleManager, DepartmentID: "d1"})
	if emp.IPAddress == "" {
		t.Fatal("manager of the department should see workstation fields")
	}

	other := sampleEmployee()
	FilterEmployeeFields(other, auth.Actor{EmployeeID: "m2", Role: auth.RoleManager, DepartmentID: "d2"})
	if other.IPAddress != "" || other.HireDate != nil {
		t.Fatal("manager of another department should not see workstation fields")
	}
}

func TestFilterEmployeeFieldsEmployee(t *testing.T) {
	self := sampleEmployee()
	FilterEmployeeFields(self, auth.Actor{EmployeeID: "e1", Role: auth.RoleEmployee, DepartmentID: "d1"})
	if self.IPAddress == "" {
		t.Fatal("employee should see own workstation fields")
	}

	colleague := sampleEmployee()
	FilterEmployeeFields(colleague, auth.Actor{EmployeeID: "e2", Role: auth.RoleEmployee, DepartmentID: "d1"})
	if colleague.IPAddress != "" || colleague.HireDate != nil {
		t.Fatal("colleague should not see workstation fields")
	}
}
