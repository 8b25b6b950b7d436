// Package scheduler wires up the cron job that periodically triggers an
// aggregation run.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/jobportal/aggregator/internal/core"
)

type Runner interface {
	Run(ctx context.Context) core.Report
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a Scheduler firing on the given cron spec, e.g. "@every 6h".
func New(runner Runner, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler: cron started, spec %s", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler: cron stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report := s.runner.Run(ctx)
	if !report.Success {
		log.Printf("Scheduler: aggregation failed: %s", report.Err)
		return
	}
	log.Printf("Scheduler: aggregation done, considered=%d inserted=%d skipped=%d",
		report.Count, report.Inserted, report.Skipped)
}
