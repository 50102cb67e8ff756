package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/pkg/metrics"

	"gorm.io/gorm"
)

// Actor is the staff member performing a workflow action
type Actor struct {
	UserID    uint
	Username  string
	Roles     []domain.Role
	IPAddress string
}

// LoanService runs the server side of the review, approval and
// disbursement workflow
type LoanService struct {
	loanRepo repositories.LoanRepository
	notifier *NotificationService
	now      func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(loanRepo repositories.LoanRepository, notifier *NotificationService) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListAll lists every loan, optionally narrowed to one status
func (s *LoanService) ListAll(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error) {
	filter := repositories.LoanFilter{}
	if status != "" {
		if !status.Valid() {
			return nil, &ValidationError{Errors: []string{fmt.Sprintf("unknown status %q", status)}}
		}
		filter.Statuses = []domain.LoanStatus{status}
	}
	return s.list(ctx, filter)
}

// Pending lists the loans waiting in queue
func (s *LoanService) Pending(ctx context.Context, queue lifecycle.Queue) ([]domain.LoanApplication, error) {
	return s.list(ctx, repositories.LoanFilter{Statuses: queue.Statuses()})
}

// Disbursed lists loans that already had funds released
func (s *LoanService) Disbursed(ctx context.Context) ([]domain.LoanApplication, error) {
	return s.list(ctx, repositories.LoanFilter{
		Statuses: []domain.LoanStatus{domain.StatusDisbursed, domain.StatusCompleted},
	})
}

// Get returns one loan
func (s *LoanService) Get(ctx context.Context, id uint) (domain.LoanApplication, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return domain.LoanApplication{}, err
	}
	return row.ToDomain(), nil
}

// History returns the status changes of a loan
func (s *LoanService) History(ctx context.Context, id uint) ([]*models.LoanHistory, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.loanRepo.History(ctx, id)
}

// Review completes the review of a loan. A SUBMITTED loan is begun and
// completed in the same call.
func (s *LoanService) Review(ctx context.Context, id uint, actor Actor, req domain.ReviewRequest) (domain.LoanApplication, error) {
	if !strings.EqualFold(strings.TrimSpace(req.ReviewStatus), "APPROVED") {
		return domain.LoanApplication{}, ErrInvalidReviewStatus
	}

	return s.transition(ctx, id, actor, lifecycle.ReviewPath, func(loan *models.LoanApplication, now time.Time) string {
		note := lifecycle.NoteOrDefault(lifecycle.ActionCompleteReview, req.ReviewNote)
		loan.ReviewedBy = actor.Username
		loan.ReviewedAt = &now
		loan.ReviewNotes = note
		return note
	})
}

// Decide approves or rejects a reviewed loan
func (s *LoanService) Decide(ctx context.Context, id uint, actor Actor, req domain.ApprovalRequest) (domain.LoanApplication, error) {
	switch strings.ToUpper(strings.TrimSpace(req.ApprovalStatus)) {
	case string(domain.StatusApproved):
		return s.transition(ctx, id, actor, only(lifecycle.ActionApprove), func(loan *models.LoanApplication, now time.Time) string {
			note := lifecycle.NoteOrDefault(lifecycle.ActionApprove, req.ApprovalNote)
			loan.ApprovedBy = actor.Username
			loan.ApprovedAt = &now
			loan.ApprovalNotes = note
			return note
		})

	case string(domain.StatusRejected):
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			reason = strings.TrimSpace(req.ApprovalNote)
		}
		if reason == "" {
			return domain.LoanApplication{}, domain.ErrRejectionReasonRequired
		}
		return s.transition(ctx, id, actor, only(lifecycle.ActionReject), func(loan *models.LoanApplication, now time.Time) string {
			loan.ApprovedBy = actor.Username
			loan.ApprovedAt = &now
			loan.ApprovalNotes = strings.TrimSpace(req.ApprovalNote)
			loan.RejectionReason = reason
			return reason
		})
	}
	return domain.LoanApplication{}, ErrInvalidApprovalStatus
}

// Disburse releases the full loan amount
func (s *LoanService) Disburse(ctx context.Context, id uint, actor Actor, note string) (domain.LoanApplication, error) {
	return s.transition(ctx, id, actor, only(lifecycle.ActionDisburse), func(loan *models.LoanApplication, now time.Time) string {
		amount := loan.Amount
		n := lifecycle.NoteOrDefault(lifecycle.ActionDisburse, note)
		loan.DisbursedBy = actor.Username
		loan.DisbursedAt = &now
		loan.DisbursementAmount = &amount
		loan.DisbursementNotes = n
		return n
	})
}

// transition authorizes the path from the stored status, stamps the audit
// fields and persists the change guarded by the previous status
func (s *LoanService) transition(
	ctx context.Context,
	id uint,
	actor Actor,
	path func(from domain.LoanStatus) []lifecycle.Action,
	stamp func(loan *models.LoanApplication, now time.Time) string,
) (domain.LoanApplication, error) {
	loan, err := s.load(ctx, id)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	from := loan.Status
	actions := path(from)
	final := actions[len(actions)-1]
	label := string(final)

	to, err := lifecycle.Walk(actor.Roles, from, actions...)
	if err != nil {
		metrics.ObserveTransition(label, outcomeOf(err))
		return domain.LoanApplication{}, err
	}

	now := s.now()
	loan.Status = to
	loan.UpdatedAt = now
	note := stamp(loan, now)

	history := &models.LoanHistory{
		LoanID:      loan.ID,
		Action:      label,
		FromStatus:  from,
		ToStatus:    to,
		PerformedBy: actor.Username,
		Note:        note,
		IPAddress:   actor.IPAddress,
	}

	applied, err := s.loanRepo.Transition(ctx, loan, from, history)
	if err != nil {
		metrics.ObserveTransition(label, metrics.OutcomeError)
		return domain.LoanApplication{}, err
	}
	if !applied {
		// another staff member moved the loan first
		metrics.ObserveTransition(label, metrics.OutcomeConflict)
		return domain.LoanApplication{}, &lifecycle.TransitionError{
			Code:   lifecycle.CodeConflict,
			Action: final,
			From:   from,
			Roles:  actor.Roles,
		}
	}
	metrics.ObserveTransition(label, metrics.OutcomeSuccess)

	log.Printf("✅ Loan %s: %s -> %s by %s", loan.ApplicationNumber, from, to, actor.Username)

	s.notifyCustomer(ctx, loan)
	return loan.ToDomain(), nil
}

func (s *LoanService) notifyCustomer(ctx context.Context, loan *models.LoanApplication) {
	if s.notifier == nil || loan.Customer == nil {
		return
	}
	if err := s.notifier.LoanStatusChanged(ctx, loan.Customer.UserID, loan); err != nil {
		log.Printf("⚠️ Failed to notify customer of %s: %v", loan.ApplicationNumber, err)
	}
}

func (s *LoanService) load(ctx context.Context, id uint) (*models.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) list(ctx context.Context, filter repositories.LoanFilter) ([]domain.LoanApplication, error) {
	rows, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LoanApplication, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

func only(action lifecycle.Action) func(domain.LoanStatus) []lifecycle.Action {
	return func(domain.LoanStatus) []lifecycle.Action {
		return []lifecycle.Action{action}
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, domain.ErrInvalidTransition):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
