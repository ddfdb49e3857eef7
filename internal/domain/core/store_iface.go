package core

import "context"

type StoreAPI interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, departmentID string) (Department, error)
	CreateDepartment(ctx context.Context, dep Department) (string, error)
	UpdateDepartment(ctx context.Context, departmentID string, dep Department) error
	DeleteDepartment(ctx context.Context, departmentID string) error
	DepartmentUsage(ctx context.Context, departmentID string) (positions int, employees int, err error)

	ListPositions(ctx context.Context, departmentID string) ([]Position, error)
	GetPosition(ctx context.Context, positionID string) (Position, error)
	CreatePosition(ctx context.Context, pos Position) (string, error)
	UpdatePosition(ctx context.Context, positionID string, pos Position) error
	DeletePosition(ctx context.Context, positionID string) error
	PositionEmployeeCount(ctx context.Context, positionID string) (int, error)

	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	CreateEmployee(ctx context.Context, in EmployeeInput, passwordHash string) (string, error)
	UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput, passwordHash string) error
	SetEmployeeActive(ctx context.Context, employeeID string, active bool) error
	DeleteEmployee(ctx context.Context, employeeID string) error
	EmployeeScoreCount(ctx context.Context, employeeID string) (int, error)
	CountActiveEmployees(ctx context.Context) (int, error)
}
