package services

import (
	"context"
	"time"

	"creditoya-web/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// PurgeSchedule runs the expired pending loan purge every five minutes
const PurgeSchedule = "@every 5m"

// CronService runs periodic housekeeping jobs
type CronService struct {
	cron    *cron.Cron
	pending *PendingLoanService
}

// NewCronService creates the scheduler and registers its jobs
func NewCronService(pending *PendingLoanService) (*CronService, error) {
	s := &CronService{
		cron:    cron.New(),
		pending: pending,
	}
	if _, err := s.cron.AddFunc(PurgeSchedule, s.purgePendingLoans); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running jobs in the background
func (s *CronService) Start() {
	s.cron.Start()
	logger.Log.WithField("schedule", PurgeSchedule).Info("cron service started")
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("cron service stopped")
}

func (s *CronService) purgePendingLoans() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.pending.PurgeExpired(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("pending loan purge failed")
		return
	}
	if n > 0 {
		logger.Log.WithField("purged", n).Info("expired pending loans removed")
	}
}
