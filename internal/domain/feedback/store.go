package feedback

import (
	"context"

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

func (s *Store) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name FROM feedback_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) TypeExists(ctx context.Context, typeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM feedback_types WHERE id::text = $1)`, typeID).Scan(&exists)
	return exists, err
}

func (s *Store) CycleExists(ctx context.Context, cycleID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM evaluation_cycles WHERE id::text = $1)`, cycleID).Scan(&exists)
	return exists, err
}

func (s *Store) Recipient(ctx context.Context, employeeID string) (Recipient, error) {
	var r Recipient
	err := s.DB.QueryRow(ctx, `
    SELECT full_name, email, is_active
    FROM employees
    WHERE id::text = $1
  `, employeeID).Scan(&r.FullName, &r.Email, &r.IsActive)
	if db.IsNotFound(err) {
		return Recipient{}, ErrRecipientNotFound
	}
	return r, err
}

func (s *Store) Create(ctx context.Context, senderID string, in Input) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO feedback (employee_id, sender_id, cycle_id, type_id, content, is_anonymous)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, in.EmployeeID, senderID, nullIfEmpty(in.CycleID), in.TypeID, in.Content, in.IsAnonymous).Scan(&id)
	return id, db.Translate(err, "feedback")
}

const feedbackSelect = `
    SELECT f.id, f.employee_id, f.sender_id, s.full_name, COALESCE(f.cycle_id::text, ''),
           f.type_id, t.name, f.content, f.is_anonymous, f.created_at
    FROM feedback f
    JOIN employees s ON s.id = f.sender_id
    JOIN feedback_types t ON t.id = f.type_id
`

func (s *Store) ListReceived(ctx context.Context, employeeID string, limit, offset int) ([]Feedback, error) {
	return s.list(ctx, feedbackSelect+` WHERE f.employee_id = $1 ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`, employeeID, limit, offset)
}

func (s *Store) ListSent(ctx context.Context, senderID string, limit, offset int) ([]Feedback, error) {
	return s.list(ctx, feedbackSelect+` WHERE f.sender_id = $1 ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`, senderID, limit, offset)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Feedback, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.EmployeeID, &f.SenderID, &f.SenderName, &f.CycleID,
			&f.TypeID, &f.TypeName, &f.Content, &f.IsAnonymous, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	return count, err
}
