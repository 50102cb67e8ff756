package lifecycle

import (
	"eloan-must/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Summarize computes dashboard statistics over loans
func Summarize(loans []domain.LoanApplication) domain.DashboardStats {
	var stats domain.DashboardStats
	disbursed := decimal.Zero
	all := decimal.Zero

	for _, l := range loans {
		stats.TotalApplications++
		all = all.Add(decimal.NewFromFloat(l.Amount))

		switch l.Status {
		case domain.StatusSubmitted:
			stats.PendingReview++
		case domain.StatusInReview, domain.StatusReviewed:
			stats.PendingApproval++
		case domain.StatusApproved:
			stats.Approved++
		case domain.StatusRejected:
			stats.Rejected++
		case domain.StatusDisbursed:
			stats.Disbursed++
		}

		if l.Status == domain.StatusDisbursed || l.Status == domain.StatusCompleted {
			amount := l.Amount
			if l.DisbursementAmount != nil {
				amount = *l.DisbursementAmount
			}
			disbursed = disbursed.Add(decimal.NewFromFloat(amount))
		}
	}

	stats.TotalDisbursedAmount = disbursed.InexactFloat64()
	stats.TotalAllAmount = all.InexactFloat64()
	return stats
}
