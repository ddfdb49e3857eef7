package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"evalportal/internal/domain/auth"
	"evalportal/internal/platform/config"
)

var DefaultFeedbackTypes = []string{"praise", "improvement", "general"}

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureFeedbackTypes(ctx, pool); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.SeedAdminEmail) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	departmentID, err := ensureDepartment(ctx, pool, cfg.SeedDepartmentName)
	if err != nil {
		return err
	}

	positionID, err := ensurePosition(ctx, pool, departmentID, cfg.SeedPositionTitle)
	if err != nil {
		return err
	}

	return ensureAdminEmployee(ctx, pool, departmentID, positionID, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureFeedbackTypes(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range DefaultFeedbackTypes {
		if _, err := pool.Exec(ctx, "INSERT INTO feedback_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name); err != nil {
			return err
		}
	}
	return nil
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `
    INSERT INTO departments (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, name).Scan(&id)
	return id, err
}

func ensurePosition(ctx context.Context, pool *pgxpool.Pool, departmentID, title string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `
    INSERT INTO positions (title, department_id) VALUES ($1, $2)
    ON CONFLICT (department_id, title) DO UPDATE SET title = EXCLUDED.title
    RETURNING id
  `, title, departmentID).Scan(&id)
	return id, err
}

func ensureAdminEmployee(ctx context.Context, pool *pgxpool.Pool, departmentID, positionID, name, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE email = $1", strings.ToLower(email)).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO employees (full_name, email, password_hash, role, department_id, position_id)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, name, strings.ToLower(email), hash, string(auth.RoleAdmin), departmentID, positionID)
	return err
}
