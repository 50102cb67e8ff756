package services

import (
	"context"

	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	loanRepo repositories.LoanRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(loanRepo repositories.LoanRepository) *DashboardService {
	return &DashboardService{loanRepo: loanRepo}
}

// Stats summarizes the loans visible to roles
func (s *DashboardService) Stats(ctx context.Context, roles []domain.Role) (domain.DashboardStats, error) {
	statuses, all := lifecycle.VisibleStatuses(roles)
	filter := repositories.LoanFilter{}
	if !all {
		if len(statuses) == 0 {
			return domain.DashboardStats{}, nil
		}
		filter.Statuses = statuses
	}

	rows, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	loans := make([]domain.LoanApplication, 0, len(rows))
	for _, r := range rows {
		loans = append(loans, r.ToDomain())
	}
	return lifecycle.Summarize(loans), nil
}
