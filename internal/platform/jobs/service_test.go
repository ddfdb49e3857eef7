package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunNowReturnsDetails(t *testing.T) {
	svc := New(nil)
	details, err := svc.RunNow(context.Background(), JobCycleExpiry, func(context.Context) (any, error) {
		return map[string]any{"expired": 2}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := details.(map[string]any)
	if !ok || got["expired"] != 2 {
		t.Fatalf("unexpected details: %#v", details)
	}
}

func TestRunNowPropagatesError(t *testing.T) {
	svc := New(nil)
	wantErr := errors.New("no active cycle")
	_, err := svc.RunNow(context.Background(), JobScoreImport, func(context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestScheduledJobRuns(t *testing.T) {
	svc := New(nil)
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	svc.Every(JobCycleExpiry, 5*time.Millisecond, func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			done <- struct{}{}
		}
		return nil, nil
	})
	svc.Every("ignored", 0, func(context.Context) (any, error) {
		t.Fatal("zero interval job must not run")
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := &Service{queue: make(chan job, 1)}
	noop := func(context.Context) (any, error) { return nil, nil }
	if !svc.Enqueue(JobCycleExpiry, noop) {
		t.Fatal("expected first enqueue to succeed")
	}
	if svc.Enqueue(JobCycleExpiry, noop) {
		t.Fatal("expected second enqueue to fail on a full queue")
	}
}

func TestScheduledLookup(t *testing.T) {
	svc := New(nil)
	svc.Every(JobCycleExpiry, time.Minute, func(context.Context) (any, error) { return "ran", nil })
	svc.Every("disabled", 0, func(context.Context) (any, error) { return nil, nil })

	run, ok := svc.Scheduled(JobCycleExpiry)
	if !ok {
		t.Fatal("expected cycle expiry to be registered")
	}
	if got, _ := run(context.Background()); got != "ran" {
		t.Fatalf("unexpected run result %v", got)
	}
	if _, ok := svc.Scheduled("disabled"); ok {
		t.Fatal("jobs with a non-positive interval are not registered")
	}
}
