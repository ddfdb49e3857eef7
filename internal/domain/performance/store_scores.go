package performance

import (
	"context"
	"fmt"

	"evalportal/internal/platform/db"
)

func (s *Store) EmployeeRef(ctx context.Context, employeeID string) (EmployeeRef, error) {
	var ref EmployeeRef
	err := s.DB.QueryRow(ctx, `
    SELECT id, department_id, position_id, is_active
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&ref.ID, &ref.DepartmentID, &ref.PositionID, &ref.IsActive)
	if db.IsNotFound(err) {
		return EmployeeRef{}, ErrEmployeeNotFound
	}
	return ref, err
}

func (s *Store) EmployeeIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE email = lower($1)", email).Scan(&id)
	if db.IsNotFound(err) {
		return "", ErrEmployeeNotFound
	}
	return id, err
}

// UpsertScore inserts the record or, when the key already exists, overwrites
// score and comment while keeping id and evaluated_at.
func (s *Store) UpsertScore(ctx context.Context, in ScoreUpsert) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_metrics (employee_id, metric_id, cycle_id, evaluator_id, score, comment)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (employee_id, metric_id, cycle_id, evaluator_id)
    DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = now()
    RETURNING id
  `, in.EmployeeID, in.MetricID, in.CycleID, in.EvaluatorID, in.Score, in.Comment).Scan(&id)
	return id, db.Translate(err, "score")
}

func (s *Store) ListScores(ctx context.Context, filter ScoreFilter) ([]Score, error) {
	query := `
    SELECT em.id, em.employee_id, e.full_name, em.metric_id, m.name, m.max_score, em.cycle_id,
      em.evaluator_id, ev.full_name, em.score, em.comment, em.evaluated_at, em.updated_at
    FROM employee_metrics em
    JOIN employees e ON e.id = em.employee_id
    JOIN employees ev ON ev.id = em.evaluator_id
    JOIN performance_metrics m ON m.id = em.metric_id
    WHERE 1=1
  `
	args := []any{}
	if filter.CycleID != "" {
		args = append(args, filter.CycleID)
		query += fmt.Sprintf(" AND em.cycle_id = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND em.employee_id = $%d", len(args))
	}
	if filter.EvaluatorID != "" {
		args = append(args, filter.EvaluatorID)
		query += fmt.Sprintf(" AND em.evaluator_id = $%d", len(args))
	}
	query += " ORDER BY em.evaluated_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var score Score
		if err := rows.Scan(&score.ID, &score.EmployeeID, &score.EmployeeName, &score.MetricID, &score.MetricName, &score.MaxScore,
			&score.CycleID, &score.EvaluatorID, &score.EvaluatorName, &score.Score, &score.Comment, &score.EvaluatedAt, &score.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}
