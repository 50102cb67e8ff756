package repositories

import (
	"context"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"

	"gorm.io/gorm"
)

// loanRepository handles loan application data access
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// GetByID gets a loan with its customer and product
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var loan models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Plafond").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans, newest first
func (r *loanRepository) List(ctx context.Context, filter LoanFilter) ([]*models.LoanApplication, error) {
	var loans []*models.LoanApplication

	q := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Plafond")
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}

	err := q.Order("created_at DESC").Find(&loans).Error
	return loans, err
}

// Transition updates status and audit columns guarded by the previous
// status, and appends the history row in the same transaction
func (r *loanRepository) Transition(ctx context.Context, loan *models.LoanApplication, from domain.LoanStatus, history *models.LoanHistory) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoanApplication{}).
			Where("id = ? AND status = ?", loan.ID, from).
			Select(
				"status",
				"reviewed_by", "reviewed_at", "review_notes",
				"approved_by", "approved_at", "approval_notes", "rejection_reason",
				"disbursed_by", "disbursed_at", "disbursement_amount", "disbursement_notes",
				"updated_at",
			).
			Updates(loan)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Create(history).Error
	})
	return applied, err
}

// History lists status changes of a loan, oldest first
func (r *loanRepository) History(ctx context.Context, loanID uint) ([]*models.LoanHistory, error) {
	var rows []*models.LoanHistory
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
