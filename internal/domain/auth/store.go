package auth

import (
	"context"
	"strings"

	"evalportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type Credentials struct {
	EmployeeID   string
	Role         Role
	DepartmentID string
	PasswordHash string
}

func (s *Store) FindActiveByEmail(ctx context.Context, email string) (Credentials, error) {
	var out Credentials
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, department_id, password_hash
    FROM employees
    WHERE email = $1 AND is_active = true
  `, strings.ToLower(strings.TrimSpace(email))).Scan(&out.EmployeeID, &out.Role, &out.DepartmentID, &out.PasswordHash)
	return out, err
}
