package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"evalportal/internal/platform/metrics"
	"evalportal/internal/platform/querier"
)

const (
	JobCycleExpiry = "cycle_expiry"
	JobScoreImport = "score_import"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      RunFunc
}

// Service runs jobs on a single worker and records each run in job_runs.
// A nil DB disables run recording.
type Service struct {
	DB        querier.Querier
	queue     chan job
	schedules []schedule
}

type job struct {
	Type string
	Run  RunFunc
}

func New(db querier.Querier) *Service {
	return &Service{
		DB:    db,
		queue: make(chan job, 128),
	}
}

// Every registers a job to be enqueued on each tick of interval once Start is
// called. Non-positive intervals are ignored.
func (s *Service) Every(jobType string, interval time.Duration, run RunFunc) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

// Start launches the worker and the tickers. It returns immediately; everything
// stops when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, sc := range s.schedules {
		go s.tick(ctx, sc)
	}
}

// Scheduled returns the run function registered for jobType with Every.
func (s *Service) Scheduled(jobType string) (RunFunc, bool) {
	for _, sc := range s.schedules {
		if sc.jobType == jobType {
			return sc.run, true
		}
	}
	return nil, false
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) tick(ctx context.Context, sc schedule) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sc.jobType, sc.run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, StatusRunning).Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "details": details}
	}
	metrics.JobRuns.WithLabelValues(j.Type, status).Inc()

	if runID != "" {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			slog.Warn("job details marshal failed", "err", marshalErr)
			detailsJSON = []byte("{}")
		}
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	if s.DB == nil {
		return nil, nil
	}
	query := "SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at FROM job_runs"
	args := []any{}
	if jobType != "" {
		query += " WHERE job_type = $1"
		args = append(args, jobType)
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
