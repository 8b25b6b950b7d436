package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jobportal/aggregator/internal/core"
	"github.com/jobportal/aggregator/internal/scheduler"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context) core.Report {
	r.runs.Add(1)
	return core.Report{Success: true}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.New(&countingRunner{}, "not a cron spec")
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestStart_TriggersRuns(t *testing.T) {
	runner := &countingRunner{}
	s := scheduler.New(runner, "@every 20ms")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runner.runs.Load() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("scheduler fired %d times within 2s, want at least 2", runner.runs.Load())
}
