package auth

import (
	"context"
	"time"
)

type CredentialStore interface {
	FindActiveByEmail(ctx context.Context, email string) (Credentials, error)
}

type Service struct {
	store  CredentialStore
	secret string
	ttl    time.Duration
}

func NewService(store CredentialStore, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

type Session struct {
	Token        string `json:"token"`
	EmployeeID   string `json:"employeeId"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"departmentId"`
}

// Login checks the password of an active employee and issues a token. Unknown
// emails and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	creds, err := s.store.FindActiveByEmail(ctx, email)
	if err != nil || creds.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.Issue(creds.EmployeeID, creds.Role, creds.DepartmentID)
}

// Issue signs a token without a password check; the CLI uses it for operators.
func (s *Service) Issue(employeeID string, role Role, departmentID string) (Session, error) {
	token, err := GenerateToken(s.secret, Claims{EmployeeID: employeeID, Role: role, DepartmentID: departmentID}, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, EmployeeID: employeeID, Role: role, DepartmentID: departmentID}, nil
}
