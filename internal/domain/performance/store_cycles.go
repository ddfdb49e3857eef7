package performance

import (
	"context"
	"time"

	"evalportal/internal/platform/db"
)

const cycleColumns = "id, name, description, start_date, end_date, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (Cycle, error) {
	var cycle Cycle
	err := row.Scan(&cycle.ID, &cycle.Name, &cycle.Description, &cycle.StartDate, &cycle.EndDate, &cycle.Status, &cycle.CreatedAt, &cycle.UpdatedAt)
	return cycle, err
}

// ExpireCycles closes every active cycle whose end date is before now in a
// single statement and returns the ids it closed.
func (s *Store) ExpireCycles(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    UPDATE evaluation_cycles
    SET status = 'closed', updated_at = now()
    WHERE status = 'active' AND end_date < $1
    RETURNING id
  `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ActiveCycle(ctx context.Context) (Cycle, error) {
	cycle, err := scanCycle(s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM evaluation_cycles WHERE status = 'active' LIMIT 1"))
	if db.IsNotFound(err) {
		return Cycle{}, ErrNoActiveCycle
	}
	return cycle, err
}

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+cycleColumns+" FROM evaluation_cycles ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cycle)
	}
	return out, rows.Err()
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	cycle, err := scanCycle(s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM evaluation_cycles WHERE id = $1", cycleID))
	if db.IsNotFound(err) {
		return Cycle{}, ErrCycleNotFound
	}
	return cycle, err
}

func (s *Store) CreateCycle(ctx context.Context, cycle Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_cycles (name, description, start_date, end_date, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, cycle.Name, cycle.Description, cycle.StartDate, cycle.EndDate, cycle.Status).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrAnotherCycleActive
	}
	return id, db.Translate(err, "evaluation cycle")
}

func (s *Store) UpdateCycle(ctx context.Context, cycleID string, cycle Cycle) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles
    SET name = $1, description = $2, start_date = $3, end_date = $4, updated_at = now()
    WHERE id = $5 AND status <> 'active'
  `, cycle.Name, cycle.Description, cycle.StartDate, cycle.EndDate, cycleID)
	if err != nil {
		return db.Translate(err, "evaluation cycle")
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleLocked
	}
	return nil
}

func (s *Store) SetCycleStatus(ctx context.Context, cycleID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles SET status = $1, updated_at = now()
    WHERE id = $2
  `, status, cycleID)
	if db.IsUniqueViolation(err) {
		return ErrAnotherCycleActive
	}
	if err != nil {
		return db.Translate(err, "evaluation cycle")
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

// DeleteCycle removes a non-active cycle; its score records go with it.
func (s *Store) DeleteCycle(ctx context.Context, cycleID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluation_cycles WHERE id = $1 AND status <> 'active'", cycleID)
	if err != nil {
		return db.Translate(err, "evaluation cycle")
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleDeleteActive
	}
	return nil
}
