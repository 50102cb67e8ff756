package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"
)

// NotificationService stores in-app notifications
type NotificationService struct {
	repo repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]domain.Notification, error) {
	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

// Count returns total and unread counts
func (s *NotificationService) Count(ctx context.Context, userID uint) (domain.NotificationCount, error) {
	total, unread, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return domain.NotificationCount{}, err
	}
	return domain.NotificationCount{Total: total, Unread: unread}, nil
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// PurgeRead removes read notifications older than retain
func (s *NotificationService) PurgeRead(ctx context.Context, retain time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-retain))
}

type loanNotice struct {
	LoanID            uint              `json:"loanId"`
	ApplicationNumber string            `json:"applicationNumber"`
	Status            domain.LoanStatus `json:"status"`
}

// LoanStatusChanged tells the customer about their loan's new status
func (s *NotificationService) LoanStatusChanged(ctx context.Context, userID uint, loan *models.LoanApplication) error {
	kind, title, message := loanStatusCopy(loan)
	if kind == "" {
		return nil
	}

	data, err := json.Marshal(loanNotice{
		LoanID:            loan.ID,
		ApplicationNumber: loan.ApplicationNumber,
		Status:            loan.Status,
	})
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Data:    string(data),
	})
}

func loanStatusCopy(loan *models.LoanApplication) (domain.NotificationType, string, string) {
	num := loan.ApplicationNumber
	switch loan.Status {
	case domain.StatusReviewed:
		return domain.NotifyLoanReviewed, "Pengajuan Direview",
			fmt.Sprintf("Pengajuan %s telah selesai direview dan menunggu persetujuan.", num)
	case domain.StatusApproved:
		return domain.NotifyLoanApproved, "Pengajuan Disetujui",
			fmt.Sprintf("Selamat! Pengajuan %s telah disetujui.", num)
	case domain.StatusRejected:
		return domain.NotifyLoanRejected, "Pengajuan Ditolak",
			fmt.Sprintf("Pengajuan %s ditolak. Alasan: %s", num, loan.RejectionReason)
	case domain.StatusDisbursed:
		return domain.NotifyLoanDisbursed, "Dana Dicairkan",
			fmt.Sprintf("Dana pinjaman %s telah dicairkan ke rekening Anda.", num)
	}
	return "", "", ""
}
