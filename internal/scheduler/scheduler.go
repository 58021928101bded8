// Package scheduler runs the nudge assignment and dispatch jobs in-process.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"colors-app-go/internal/config"
	"colors-app-go/internal/domain/nudge"
	"colors-app-go/pkg/logger"
)

const jobTimeout = 50 * time.Second

type NudgeRunner interface {
	AssignDaily(ctx context.Context) (nudge.Summary, error)
	DispatchDue(ctx context.Context) (nudge.Summary, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner NudgeRunner
	log    logger.Logger

	// One run per job at a time; a slow run makes the next tick a no-op.
	assignMu   sync.Mutex
	dispatchMu sync.Mutex
}

func New(cfg config.NudgeConfig, runner NudgeRunner, log logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		runner: runner,
		log:    log.With("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(cfg.AssignCron, s.Assign); err != nil {
		return nil, fmt.Errorf("invalid assign cron %q: %w", cfg.AssignCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.DispatchCron, s.Dispatch); err != nil {
		return nil, fmt.Errorf("invalid dispatch cron %q: %w", cfg.DispatchCron, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler: started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler: stop timed out with jobs still running")
	}
}

func (s *Scheduler) Assign() {
	if !s.assignMu.TryLock() {
		s.log.Debug("scheduler: assign still running, tick skipped")
		return
	}
	defer s.assignMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.runner.AssignDaily(ctx); err != nil {
		s.log.InternalError("scheduler: assign nudges failed", err)
	}
}

func (s *Scheduler) Dispatch() {
	if !s.dispatchMu.TryLock() {
		s.log.Debug("scheduler: dispatch still running, tick skipped")
		return
	}
	defer s.dispatchMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.runner.DispatchDue(ctx); err != nil {
		s.log.InternalError("scheduler: dispatch nudges failed", err)
	}
}
