package internal

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/toast"
)

const toastSweepSchedule = "@every 1m"

// Scheduler runs the periodic settlement pass and drops expired toasts.
type Scheduler struct {
	cron   *cron.Cron
	admin  *AdminService
	toasts *toast.Toaster
	logger *zap.SugaredLogger
}

func NewScheduler(schedule string, admin *AdminService, toasts *toast.Toaster, logger *zap.SugaredLogger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), admin: admin, toasts: toasts, logger: logger}

	if _, err := s.cron.AddFunc(schedule, s.runSettlements); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(toastSweepSchedule, s.sweepToasts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSettlements() {
	n, err := s.admin.RunSettlements(context.Background())
	if err != nil {
		s.logger.Errorf("settlement run error: %s", err.Error())
		return
	}
	if n > 0 {
		s.logger.Infof("settlement run moved %d payouts to processing", n)
	}
}

func (s *Scheduler) sweepToasts() {
	if n := s.toasts.Sweep(); n > 0 {
		s.logger.Debugf("dropped %d expired toasts", n)
	}
}
