package services

import (
	"testing"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/config"
)

func TestCronService_Jobs(t *testing.T) {
	notes := &fakeNotificationRepo{}
	old := time.Now().Add(-40 * 24 * time.Hour)
	notes.rows = []*models.Notification{
		{ID: 1, UserID: 5, Read: true, CreatedAt: old},
		{ID: 2, UserID: 5, Read: false, CreatedAt: old},
		{ID: 3, UserID: 5, Read: true, CreatedAt: time.Now()},
	}

	cfg := config.CronConfig{Enabled: false, NotificationRetainDays: 30}
	svc := NewCronService(cfg, &fakeRefreshRepo{}, &fakeResetRepo{}, NewNotificationService(notes))

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() with cron disabled: %v", err)
	}

	svc.CleanupTokens()
	svc.PurgeNotifications()

	if len(notes.rows) != 2 {
		t.Fatalf("rows after purge = %d, want 2", len(notes.rows))
	}
	for _, n := range notes.rows {
		if n.ID == 1 {
			t.Errorf("old read notification was kept")
		}
	}
}

func TestCronService_BadSpec(t *testing.T) {
	cfg := config.CronConfig{Enabled: true, TokenCleanupSpec: "not a spec", NotificationPurgeSpec: "@daily"}
	svc := NewCronService(cfg, &fakeRefreshRepo{}, &fakeResetRepo{}, NewNotificationService(&fakeNotificationRepo{}))
	if err := svc.Start(); err == nil {
		t.Fatal("Start() with invalid spec should fail")
	}
}
