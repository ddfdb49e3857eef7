package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"evalportal/internal/platform/db"
	"evalportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, created_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.Description, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, departmentID string) (Department, error) {
	var dep Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, created_at
    FROM departments
    WHERE id = $1
  `, departmentID).Scan(&dep.ID, &dep.Name, &dep.Description, &dep.CreatedAt)
	if db.IsNotFound(err) {
		return Department{}, ErrDepartmentNotFound
	}
	return dep, err
}

func (s *Store) CreateDepartment(ctx context.Context, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description)
    VALUES ($1, $2)
    RETURNING id
  `, dep.Name, dep.Description).Scan(&id)
	return id, db.Translate(err, "department")
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID string, dep Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET name = $1, description = $2
    WHERE id = $3
  `, dep.Name, dep.Description, departmentID)
	if err != nil {
		return db.Translate(err, "department")
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, departmentID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", departmentID)
	if err != nil {
		return db.Translate(err, "department")
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func (s *Store) DepartmentUsage(ctx context.Context, departmentID string) (int, int, error) {
	var positions, employees int
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM positions WHERE department_id = $1),
      (SELECT COUNT(1) FROM employees WHERE department_id = $1)
  `, departmentID).Scan(&positions, &employees)
	return positions, employees, err
}

func (s *Store) ListPositions(ctx context.Context, departmentID string) ([]Position, error) {
	query := `
    SELECT p.id, p.title, p.description, p.department_id, d.name, p.created_at
    FROM positions p
    JOIN departments d ON d.id = p.department_id
  `
	args := []any{}
	if departmentID != "" {
		query += " WHERE p.department_id = $1"
		args = append(args, departmentID)
	}
	query += " ORDER BY d.name, p.title"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var pos Position
		if err := rows.Scan(&pos.ID, &pos.Title, &pos.Description, &pos.DepartmentID, &pos.DepartmentName, &pos.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, rows.Err()
}

func (s *Store) GetPosition(ctx context.Context, positionID string) (Position, error) {
	var pos Position
	err := s.DB.QueryRow(ctx, `
    SELECT p.id, p.title, p.description, p.department_id, d.name, p.created_at
    FROM positions p
    JOIN departments d ON d.id = p.department_id
    WHERE p.id = $1
  `, positionID).Scan(&pos.ID, &pos.Title, &pos.Description, &pos.DepartmentID, &pos.DepartmentName, &pos.CreatedAt)
	if db.IsNotFound(err) {
		return Position{}, ErrPositionNotFound
	}
	return pos, err
}

func (s *Store) CreatePosition(ctx context.Context, pos Position) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO positions (title, description, department_id)
    VALUES ($1, $2, $3)
    RETURNING id
  `, pos.Title, pos.Description, pos.DepartmentID).Scan(&id)
	return id, db.Translate(err, "position")
}

func (s *Store) UpdatePosition(ctx context.Context, positionID string, pos Position) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE positions SET title = $1, description = $2, department_id = $3
    WHERE id = $4
  `, pos.Title, pos.Description, pos.DepartmentID, positionID)
	if err != nil {
		return db.Translate(err, "position")
	}
	if tag.RowsAffected() == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (s *Store) DeletePosition(ctx context.Context, positionID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM positions WHERE id = $1", positionID)
	if err != nil {
		return db.Translate(err, "position")
	}
	if tag.RowsAffected() == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (s *Store) PositionEmployeeCount(ctx context.Context, positionID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE position_id = $1", positionID).Scan(&count)
	return count, err
}

const employeeColumns = `
    e.id, e.full_name, e.email, e.role, e.department_id, d.name, e.position_id, p.title,
    e.ip_address, e.hire_date, e.is_active, e.created_at, e.updated_at
  `

const employeeFrom = `
    FROM employees e
    JOIN departments d ON d.id = e.department_id
    JOIN positions p ON p.id = e.position_id
  `

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.DepartmentID, &emp.DepartmentName,
		&emp.PositionID, &emp.PositionTitle, &emp.IPAddress, &emp.HireDate, &emp.IsActive,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	query := "SELECT " + employeeColumns + employeeFrom + " WHERE 1=1"
	args := []any{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND e.is_active = true"
	}
	query += " ORDER BY e.full_name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+employeeFrom+" WHERE e.id = $1", employeeID))
	if db.IsNotFound(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+employeeFrom+" WHERE e.email = $1", NormalizeEmail(email)))
	if db.IsNotFound(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees
    WHERE email = $1 AND ($2::uuid IS NULL OR id <> $2::uuid)
  `, NormalizeEmail(email), nullIfEmpty(excludeID)).Scan(&count)
	return count > 0, err
}

func (s *Store) CreateEmployee(ctx context.Context, in EmployeeInput, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (full_name, email, password_hash, role, department_id, position_id, ip_address, hire_date, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, in.FullName, NormalizeEmail(in.Email), passwordHash, string(in.Role), in.DepartmentID, in.PositionID,
		in.IPAddress, in.HireDate, in.IsActive).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	return id, db.Translate(err, "employee")
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput, passwordHash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET full_name = $1, email = $2, role = $3, department_id = $4, position_id = $5,
        ip_address = $6, hire_date = $7,
        password_hash = COALESCE($8, password_hash),
        updated_at = now()
    WHERE id = $9
  `, in.FullName, NormalizeEmail(in.Email), string(in.Role), in.DepartmentID, in.PositionID,
		in.IPAddress, in.HireDate, nullIfEmpty(passwordHash), employeeID)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return db.Translate(err, "employee")
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) SetEmployeeActive(ctx context.Context, employeeID string, active bool) error {
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET is_active = $1, updated_at = now() WHERE id = $2", active, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", employeeID)
	if err != nil {
		return db.Translate(err, "employee")
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) EmployeeScoreCount(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employee_metrics
    WHERE employee_id = $1 OR evaluator_id = $1
  `, employeeID).Scan(&count)
	return count, err
}

func (s *Store) CountActiveEmployees(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE is_active = true").Scan(&count)
	return count, err
}
