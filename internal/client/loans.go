package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/session"
)

var pendingPaths = map[lifecycle.Queue]string{
	lifecycle.QueueReview:       "/reviews/pending",
	lifecycle.QueueApproval:     "/approvals/pending",
	lifecycle.QueueDisbursement: "/disbursements/pending",
}

// Simulate asks the server for the authoritative simulation figures
func (c *Client) Simulate(ctx context.Context, amount float64, tenor int) (domain.SimulationResult, error) {
	return call[domain.SimulationResult](ctx, c, http.MethodPost, "/loans/simulate", nil, domain.SimulationRequest{
		Amount:     amount,
		TenorMonth: tenor,
	})
}

// AllLoans lists every loan, optionally filtered by status (SUPER_ADMIN)
func (c *Client) AllLoans(ctx context.Context, cred *session.Credential, status domain.LoanStatus) ([]domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	return call[[]domain.LoanApplication](ctx, c, http.MethodGet, withQuery("/loans/all", q), cred, nil)
}

// Loan fetches one loan
func (c *Client) Loan(ctx context.Context, cred *session.Credential, id uint) (domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return domain.LoanApplication{}, err
	}
	return call[domain.LoanApplication](ctx, c, http.MethodGet, fmt.Sprintf("/loans/%d", id), cred, nil)
}

// ExportLoans streams the XLSX export into w, optionally filtered by status.
// It returns the number of bytes written.
func (c *Client) ExportLoans(ctx context.Context, cred *session.Credential, status domain.LoanStatus, w io.Writer) (int64, error) {
	if err := requireCredential(cred); err != nil {
		return 0, err
	}
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	return c.download(ctx, withQuery("/loans/export", q), cred, w)
}

// Pending fetches a role work queue. QueueAll maps to /loans/all.
func (c *Client) Pending(ctx context.Context, cred *session.Credential, queue lifecycle.Queue) ([]domain.LoanApplication, error) {
	if queue == lifecycle.QueueAll {
		return c.AllLoans(ctx, cred, "")
	}
	path, ok := pendingPaths[queue]
	if !ok {
		return nil, fmt.Errorf("%w: queue %q", domain.ErrInvalidInput, queue)
	}
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.LoanApplication](ctx, c, http.MethodGet, path, cred, nil)
}

// Review completes the review of a loan
func (c *Client) Review(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return domain.LoanApplication{}, err
	}
	return call[domain.LoanApplication](ctx, c, http.MethodPost, "/reviews/"+strconv.FormatUint(uint64(id), 10), cred, domain.ReviewRequest{
		ReviewStatus: "APPROVED",
		ReviewNote:   note,
	})
}

// Decide approves or rejects a reviewed loan
func (c *Client) Decide(ctx context.Context, cred *session.Credential, id uint, req domain.ApprovalRequest) (domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return domain.LoanApplication{}, err
	}
	return call[domain.LoanApplication](ctx, c, http.MethodPost, "/approvals/"+strconv.FormatUint(uint64(id), 10), cred, req)
}

// Disburse disburses an approved loan. The amount is always the loan amount.
func (c *Client) Disburse(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return domain.LoanApplication{}, err
	}
	var body any
	if note != "" {
		body = map[string]string{"note": note}
	}
	return call[domain.LoanApplication](ctx, c, http.MethodPost, "/disbursements/"+strconv.FormatUint(uint64(id), 10), cred, body)
}

// Disbursed lists loans already disbursed
func (c *Client) Disbursed(ctx context.Context, cred *session.Credential) ([]domain.LoanApplication, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.LoanApplication](ctx, c, http.MethodGet, "/disbursements", cred, nil)
}

// DashboardStats fetches the server-side dashboard summary
func (c *Client) DashboardStats(ctx context.Context, cred *session.Credential) (domain.DashboardStats, error) {
	if err := requireCredential(cred); err != nil {
		return domain.DashboardStats{}, err
	}
	return call[domain.DashboardStats](ctx, c, http.MethodGet, "/dashboard/stats", cred, nil)
}
