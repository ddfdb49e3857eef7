package reports

import (
	"context"

	"evalportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ScoreRows(ctx context.Context, cycleID string) ([]ScoreRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT em.employee_id, e.full_name, e.department_id, d.name, em.metric_id, m.category_id, em.score
    FROM employee_metrics em
    JOIN employees e ON e.id = em.employee_id
    JOIN departments d ON d.id = e.department_id
    JOIN performance_metrics m ON m.id = em.metric_id
    WHERE em.cycle_id = $1
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var row ScoreRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.DepartmentID, &row.DepartmentName, &row.MetricID, &row.CategoryID, &row.Score); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]ActiveEmployee, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, department_id FROM employees WHERE is_active")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActiveEmployee
	for rows.Next() {
		var emp ActiveEmployee
		if err := rows.Scan(&emp.ID, &emp.DepartmentID); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Departments(ctx context.Context) ([]NamedRef, error) {
	return s.namedRefs(ctx, "SELECT id, name FROM departments ORDER BY name")
}

func (s *Store) Categories(ctx context.Context) ([]NamedRef, error) {
	return s.namedRefs(ctx, "SELECT id, name FROM metric_categories ORDER BY name")
}

func (s *Store) namedRefs(ctx context.Context, query string) ([]NamedRef, error) {
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NamedRef
	for rows.Next() {
		var ref NamedRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) Headline(ctx context.Context) (Headline, error) {
	var h Headline
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM employees WHERE is_active),
      (SELECT COUNT(1) FROM evaluation_cycles),
      (SELECT COUNT(1) FROM performance_metrics WHERE is_active),
      (SELECT COUNT(1) FROM feedback)
  `).Scan(&h.ActiveEmployees, &h.Cycles, &h.ActiveMetrics, &h.Feedback)
	return h, err
}
