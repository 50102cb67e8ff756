package services

import (
	"context"
	"log"
	"time"

	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/config"

	"github.com/robfig/cron/v3"
)

const housekeepingTimeout = 2 * time.Minute

// CronService runs scheduled housekeeping jobs
type CronService struct {
	cron             *cron.Cron
	cfg              config.CronConfig
	refreshTokenRepo repositories.RefreshTokenRepository
	resetRepo        repositories.PasswordResetRepository
	notifications    *NotificationService
}

// NewCronService creates the scheduler; call Start to run it
func NewCronService(
	cfg config.CronConfig,
	refreshTokenRepo repositories.RefreshTokenRepository,
	resetRepo repositories.PasswordResetRepository,
	notifications *NotificationService,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		cfg:              cfg,
		refreshTokenRepo: refreshTokenRepo,
		resetRepo:        resetRepo,
		notifications:    notifications,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if !s.cfg.Enabled {
		log.Println("⚠️ Cron disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.TokenCleanupSpec, s.CleanupTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.NotificationPurgeSpec, s.PurgeNotifications); err != nil {
		return err
	}
	s.cron.Start()

	log.Printf("✅ Cron started [tokens: %s, notifications: %s]", s.cfg.TokenCleanupSpec, s.cfg.NotificationPurgeSpec)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Cron stopped")
}

// CleanupTokens deletes expired refresh tokens and spent reset tokens
func (s *CronService) CleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
	defer cancel()

	refresh, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
		return
	}
	resets, err := s.resetRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Password reset cleanup failed: %v", err)
		return
	}
	log.Printf("🧹 Token cleanup: %d refresh, %d reset", refresh, resets)
}

// PurgeNotifications deletes read notifications past the retention window
func (s *CronService) PurgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
	defer cancel()

	retain := time.Duration(s.cfg.NotificationRetainDays) * 24 * time.Hour
	n, err := s.notifications.PurgeRead(ctx, retain)
	if err != nil {
		log.Printf("❌ Notification purge failed: %v", err)
		return
	}
	log.Printf("🧹 Notification purge: %d removed", n)
}
