package performance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"evalportal/internal/platform/db"
)

func (s *Store) ListCategories(ctx context.Context) ([]MetricCategory, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, weight, created_at
    FROM metric_categories
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetricCategory
	for rows.Next() {
		var category MetricCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.Weight, &category.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, categoryID string) (MetricCategory, error) {
	var category MetricCategory
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, weight, created_at
    FROM metric_categories
    WHERE id = $1
  `, categoryID).Scan(&category.ID, &category.Name, &category.Description, &category.Weight, &category.CreatedAt)
	if db.IsNotFound(err) {
		return MetricCategory{}, ErrCategoryNotFound
	}
	return category, err
}

func (s *Store) CreateCategory(ctx context.Context, category MetricCategory) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO metric_categories (name, description, weight)
    VALUES ($1,$2,$3)
    RETURNING id
  `, category.Name, category.Description, category.Weight).Scan(&id)
	return id, db.Translate(err, "metric category")
}

func (s *Store) UpdateCategory(ctx context.Context, categoryID string, category MetricCategory) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE metric_categories SET name = $1, description = $2, weight = $3
    WHERE id = $4
  `, category.Name, category.Description, category.Weight, categoryID)
	if err != nil {
		return db.Translate(err, "metric category")
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM metric_categories WHERE id = $1", categoryID)
	if err != nil {
		return db.Translate(err, "metric category")
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Store) CategoryMetricCount(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM performance_metrics WHERE category_id = $1", categoryID).Scan(&count)
	return count, err
}

const metricSelect = `
    SELECT m.id, m.name, m.description, m.category_id, c.name, m.max_score, m.scale_type,
      m.weight, m.department_id, m.is_active, m.created_at, m.updated_at
    FROM performance_metrics m
    JOIN metric_categories c ON c.id = m.category_id
  `

func scanMetric(row rowScanner) (Metric, error) {
	var metric Metric
	var departmentID *string
	err := row.Scan(&metric.ID, &metric.Name, &metric.Description, &metric.CategoryID, &metric.CategoryName,
		&metric.MaxScore, &metric.ScaleType, &metric.Weight, &departmentID, &metric.IsActive, &metric.CreatedAt, &metric.UpdatedAt)
	metric.DepartmentID = stringOrEmpty(departmentID)
	return metric, err
}

func (s *Store) ListMetrics(ctx context.Context, filter MetricFilter) ([]Metric, error) {
	query := metricSelect + " WHERE 1=1"
	args := []any{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += fmt.Sprintf(" AND (m.department_id IS NULL OR m.department_id = $%d)", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND m.category_id = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND m.is_active"
	}
	query += " ORDER BY c.name, m.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Metric
	for rows.Next() {
		metric, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, metric)
	}
	return out, rows.Err()
}

func (s *Store) GetMetric(ctx context.Context, metricID string) (Metric, error) {
	metric, err := scanMetric(s.DB.QueryRow(ctx, metricSelect+" WHERE m.id = $1", metricID))
	if db.IsNotFound(err) {
		return Metric{}, ErrMetricNotFound
	}
	return metric, err
}

func (s *Store) GetMetricByName(ctx context.Context, name string) (Metric, error) {
	metric, err := scanMetric(s.DB.QueryRow(ctx, metricSelect+" WHERE m.name = $1", name))
	if db.IsNotFound(err) {
		return Metric{}, ErrMetricNotFound
	}
	return metric, err
}

// CreateMetric inserts the metric and its exclusion set in one transaction.
func (s *Store) CreateMetric(ctx context.Context, metric Metric, targets []ExclusionTarget) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO performance_metrics (name, description, category_id, max_score, scale_type, weight, department_id, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, metric.Name, metric.Description, metric.CategoryID, metric.MaxScore, metric.ScaleType, metric.Weight,
		nullIfEmpty(metric.DepartmentID), metric.IsActive).Scan(&id); err != nil {
		return "", db.Translate(err, "metric")
	}
	if err := insertExclusions(ctx, tx, id, targets); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateMetric rewrites the metric and replaces its whole exclusion set in
// one transaction.
func (s *Store) UpdateMetric(ctx context.Context, metricID string, metric Metric, targets []ExclusionTarget) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE performance_metrics
    SET name = $1, description = $2, category_id = $3, max_score = $4, scale_type = $5,
      weight = $6, department_id = $7, is_active = $8, updated_at = now()
    WHERE id = $9
  `, metric.Name, metric.Description, metric.CategoryID, metric.MaxScore, metric.ScaleType, metric.Weight,
		nullIfEmpty(metric.DepartmentID), metric.IsActive, metricID)
	if err != nil {
		return db.Translate(err, "metric")
	}
	if tag.RowsAffected() == 0 {
		return ErrMetricNotFound
	}
	if err := replaceExclusions(ctx, tx, metricID, targets); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ReplaceExclusions(ctx context.Context, metricID string, targets []ExclusionTarget) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := replaceExclusions(ctx, tx, metricID, targets); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceExclusions(ctx context.Context, tx pgx.Tx, metricID string, targets []ExclusionTarget) error {
	if _, err := tx.Exec(ctx, "DELETE FROM metric_exclusions WHERE metric_id = $1", metricID); err != nil {
		return err
	}
	return insertExclusions(ctx, tx, metricID, targets)
}

func insertExclusions(ctx context.Context, tx pgx.Tx, metricID string, targets []ExclusionTarget) error {
	for _, target := range targets {
		if !target.Valid() {
			return ErrInvalidExclusion
		}
		employeeID, positionID := target.columns()
		if _, err := tx.Exec(ctx, `
      INSERT INTO metric_exclusions (metric_id, employee_id, position_id)
      VALUES ($1,$2,$3)
    `, metricID, employeeID, positionID); err != nil {
			return db.Translate(err, "metric exclusion")
		}
	}
	return nil
}

// DeleteMetric removes the metric; its exclusions cascade.
func (s *Store) DeleteMetric(ctx context.Context, metricID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM performance_metrics WHERE id = $1", metricID)
	if err != nil {
		return db.Translate(err, "metric")
	}
	if tag.RowsAffected() == 0 {
		return ErrMetricNotFound
	}
	return nil
}

func (s *Store) MetricScoreCount(ctx context.Context, metricID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_metrics WHERE metric_id = $1", metricID).Scan(&count)
	return count, err
}

func (s *Store) ListExclusions(ctx context.Context, metricID string) ([]Exclusion, error) {
	return s.queryExclusions(ctx, `
    SELECT id, metric_id, employee_id, position_id, created_at
    FROM metric_exclusions
    WHERE metric_id = $1
    ORDER BY created_at
  `, metricID)
}

// ExclusionsFor returns every exclusion that names the employee or the position.
func (s *Store) ExclusionsFor(ctx context.Context, employeeID, positionID string) ([]Exclusion, error) {
	return s.queryExclusions(ctx, `
    SELECT id, metric_id, employee_id, position_id, created_at
    FROM metric_exclusions
    WHERE employee_id = $1 OR position_id = $2
  `, employeeID, nullIfEmpty(positionID))
}

func (s *Store) queryExclusions(ctx context.Context, query string, args ...any) ([]Exclusion, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exclusion
	for rows.Next() {
		var exclusion Exclusion
		var employeeID, positionID *string
		if err := rows.Scan(&exclusion.ID, &exclusion.MetricID, &employeeID, &positionID, &exclusion.CreatedAt); err != nil {
			return nil, err
		}
		target, err := targetFromColumns(employeeID, positionID)
		if err != nil {
			return nil, err
		}
		exclusion.Target = target
		out = append(out, exclusion)
	}
	return out, rows.Err()
}
