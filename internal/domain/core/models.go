package core

import (
	"time"

	"evalportal/internal/domain/auth"
)

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Position struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Employee struct {
	ID             string     `json:"id"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	Role           auth.Role  `json:"role"`
	DepartmentID   string     `json:"departmentId"`
	DepartmentName string     `json:"departmentName"`
	PositionID     string     `json:"positionId"`
	PositionTitle  string     `json:"positionTitle"`
	IPAddress      string     `json:"ipAddress,omitempty"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Subject is the policy view of an employee.
func (e Employee) Subject() auth.Subject {
	return auth.Subject{EmployeeID: e.ID, Role: e.Role, DepartmentID: e.DepartmentID}
}

// EmployeeInput carries create and update payloads. An empty Password on
// update keeps the stored hash.
type EmployeeInput struct {
	FullName     string
	Email        string
	Role         auth.Role
	DepartmentID string
	PositionID   string
	IPAddress    string
	HireDate     *time.Time
	Password     string
	IsActive     bool
}

type EmployeeFilter struct {
	DepartmentID string
	ActiveOnly   bool
	Limit        int
	Offset       int
}
