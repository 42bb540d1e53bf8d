package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/service/auth"
	"github.com/sygemat/provider-portal/internal/service/reporting"
)

// Scheduler manages the periodic lockout purge and the optional catalog
// snapshot export.
type Scheduler struct {
	cron        *cron.Cron
	limiter     *auth.Limiter
	snapshotSvc *reporting.Service
	cfg         config.Config
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance. snapshotSvc may be nil when
// the Sheets export is not configured.
func NewScheduler(cfg config.Config, limiter *auth.Limiter, snapshotSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:        cron.New(),
		limiter:     limiter,
		snapshotSvc: snapshotSvc,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Limiter.PurgeSchedule, s.purgeLockouts); err != nil {
		s.logger.Error("failed to schedule lockout purge", zap.Error(err))
	}

	if s.snapshotSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.Sheets.CronSchedule, s.exportSnapshot); err != nil {
			s.logger.Error("failed to schedule snapshot export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) purgeLockouts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.limiter.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("lockout purge failed", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("purged expired lockout records", zap.Int64("count", purged))
	}
}

func (s *Scheduler) exportSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.snapshotSvc.ExportSnapshot(ctx); err != nil {
		s.logger.Error("snapshot export failed", zap.Error(err))
	}
}
