package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs one recurring job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	ctx    context.Context
	cancel context.CancelFunc
	job    func(ctx context.Context) error
	logger *zap.Logger
}

// New creates a scheduler for the standard five-field cron spec, evaluated
// in loc.
func New(spec string, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// SetJob sets the function run on every tick.
func (s *Scheduler) SetJob(f func(ctx context.Context) error) {
	s.job = f
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.job == nil {
		return errors.New("scheduler: job not set")
	}
	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.spec))
	return nil
}

func (s *Scheduler) run() {
	s.logger.Debug("scheduled job triggered", zap.String("schedule", s.spec))
	if err := s.job(s.ctx); err != nil {
		s.logger.Warn("scheduled job failed", zap.Error(err))
	}
}

// Stop waits for a running job to finish, then cancels its context.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether a job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
