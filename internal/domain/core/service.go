package core

import (
	"context"
	"strings"

	"evalportal/internal/domain/auth"
	"evalportal/internal/platform/apperr"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

func (s *Service) GetDepartment(ctx context.Context, departmentID string) (Department, error) {
	return s.store.GetDepartment(ctx, departmentID)
}

func (s *Service) CreateDepartment(ctx context.Context, dep Department) (Department, error) {
	dep.Name = strings.TrimSpace(dep.Name)
	if dep.Name == "" {
		return Department{}, apperr.Validation("name", "is required")
	}
	id, err := s.store.CreateDepartment(ctx, dep)
	if err != nil {
		return Department{}, err
	}
	dep.ID = id
	return dep, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID string, dep Department) error {
	dep.Name = strings.TrimSpace(dep.Name)
	if dep.Name == "" {
		return apperr.Validation("name", "is required")
	}
	return s.store.UpdateDepartment(ctx, departmentID, dep)
}

// DeleteDepartment refuses while positions or employees still point at it.
func (s *Service) DeleteDepartment(ctx context.Context, departmentID string) error {
	if _, err := s.store.GetDepartment(ctx, departmentID); err != nil {
		return err
	}
	positions, employees, err := s.store.DepartmentUsage(ctx, departmentID)
	if err != nil {
		return err
	}
	if positions > 0 || employees > 0 {
		return ErrDepartmentInUse
	}
	return s.store.DeleteDepartment(ctx, departmentID)
}

func (s *Service) ListPositions(ctx context.Context, departmentID string) ([]Position, error) {
	return s.store.ListPositions(ctx, departmentID)
}

func (s *Service) GetPosition(ctx context.Context, positionID string) (Position, error) {
	return s.store.GetPosition(ctx, positionID)
}

func (s *Service) CreatePosition(ctx context.Context, pos Position) (Position, error) {
	if err := s.validatePosition(ctx, &pos); err != nil {
		return Position{}, err
	}
	id, err := s.store.CreatePosition(ctx, pos)
	if err != nil {
		return Position{}, err
	}
	pos.ID = id
	return pos, nil
}

func (s *Service) UpdatePosition(ctx context.Context, positionID string, pos Position) error {
	if err := s.validatePosition(ctx, &pos); err != nil {
		return err
	}
	return s.store.UpdatePosition(ctx, positionID, pos)
}

func (s *Service) validatePosition(ctx context.Context, pos *Position) error {
	pos.Title = strings.TrimSpace(pos.Title)
	if pos.Title == "" {
		return apperr.Validation("title", "is required")
	}
	if pos.DepartmentID == "" {
		return apperr.Validation("departmentId", "is required")
	}
	dep, err := s.store.GetDepartment(ctx, pos.DepartmentID)
	if err != nil {
		return err
	}
	pos.DepartmentName = dep.Name
	return nil
}

// DeletePosition refuses while employees hold the position. Exclusions that
// target it are removed with it.
func (s *Service) DeletePosition(ctx context.Context, positionID string) error {
	count, err := s.store.PositionEmployeeCount(ctx, positionID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPositionInUse
	}
	return s.store.DeletePosition(ctx, positionID)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	return s.store.ListEmployees(ctx, filter)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) GetEmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	return s.store.GetEmployeeByEmail(ctx, email)
}

func (s *Service) CountActiveEmployees(ctx context.Context) (int, error) {
	return s.store.CountActiveEmployees(ctx)
}

func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (Employee, error) {
	in = normalizeInput(in)
	if err := validateEmployee(in, true); err != nil {
		return Employee{}, err
	}
	if err := s.checkEmployeeRefs(ctx, in, ""); err != nil {
		return Employee{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Employee{}, err
	}
	id, err := s.store.CreateEmployee(ctx, in, hash)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput) (Employee, error) {
	in = normalizeInput(in)
	if err := validateEmployee(in, false); err != nil {
		return Employee{}, err
	}
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return Employee{}, err
	}
	if err := s.checkEmployeeRefs(ctx, in, employeeID); err != nil {
		return Employee{}, err
	}
	hash := ""
	if in.Password != "" {
		var err error
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return Employee{}, err
		}
	}
	if err := s.store.UpdateEmployee(ctx, employeeID, in, hash); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) checkEmployeeRefs(ctx context.Context, in EmployeeInput, excludeID string) error {
	taken, err := s.store.EmailTaken(ctx, in.Email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	if _, err := s.store.GetDepartment(ctx, in.DepartmentID); err != nil {
		return err
	}
	pos, err := s.store.GetPosition(ctx, in.PositionID)
	if err != nil {
		return err
	}
	if pos.DepartmentID != in.DepartmentID {
		return ErrPositionOutsideDept
	}
	return nil
}

func (s *Service) SetEmployeeActive(ctx context.Context, employeeID string, active bool) error {
	return s.store.SetEmployeeActive(ctx, employeeID, active)
}

// DeleteEmployee refuses while score records name the employee as subject or
// evaluator; deactivate instead.
func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) error {
	count, err := s.store.EmployeeScoreCount(ctx, employeeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEmployeeHasScores
	}
	return s.store.DeleteEmployee(ctx, employeeID)
}

func normalizeInput(in EmployeeInput) EmployeeInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = NormalizeEmail(in.Email)
	in.IPAddress = strings.TrimSpace(in.IPAddress)
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)
	in.PositionID = strings.TrimSpace(in.PositionID)
	return in
}
