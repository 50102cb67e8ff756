package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type fakeWorkflow struct {
	loan    domain.LoanApplication
	err     error
	actor   services.Actor
	note    string
	review  domain.ReviewRequest
	queue   lifecycle.Queue
	decided domain.ApprovalRequest
}

func (f *fakeWorkflow) ListAll(context.Context, domain.LoanStatus) ([]domain.LoanApplication, error) {
	return []domain.LoanApplication{f.loan}, f.err
}

func (f *fakeWorkflow) Pending(_ context.Context, q lifecycle.Queue) ([]domain.LoanApplication, error) {
	f.queue = q
	return []domain.LoanApplication{f.loan}, f.err
}

func (f *fakeWorkflow) Disbursed(context.Context) ([]domain.LoanApplication, error) {
	return nil, f.err
}

func (f *fakeWorkflow) Get(context.Context, uint) (domain.LoanApplication, error) {
	return f.loan, f.err
}

func (f *fakeWorkflow) History(context.Context, uint) ([]*models.LoanHistory, error) {
	return nil, f.err
}

func (f *fakeWorkflow) Review(_ context.Context, _ uint, a services.Actor, req domain.ReviewRequest) (domain.LoanApplication, error) {
	f.actor, f.review = a, req
	return f.loan, f.err
}

func (f *fakeWorkflow) Decide(_ context.Context, _ uint, a services.Actor, req domain.ApprovalRequest) (domain.LoanApplication, error) {
	f.actor, f.decided = a, req
	return f.loan, f.err
}

func (f *fakeWorkflow) Disburse(_ context.Context, _ uint, a services.Actor, note string) (domain.LoanApplication, error) {
	f.actor, f.note = a, note
	return f.loan, f.err
}

// withIdentity stands in for AuthMiddleware
func withIdentity(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		c.Locals("username", "staff")
		c.Locals("roles", roles)
		return c.Next()
	}
}

func newLoanApp(wf *fakeWorkflow, roles ...domain.Role) *fiber.App {
	h := NewLoanHandler(wf, nil, nil)
	app := fiber.New()
	app.Use(withIdentity(roles...))
	app.Get("/loans/:id", h.Get)
	app.Post("/reviews/:id", h.Review)
	app.Get("/reviews/pending", h.PendingReviews)
	app.Post("/approvals/:id", h.Decide)
	app.Post("/disbursements/:id", h.Disburse)
	return app
}

func decode(t *testing.T, body io.Reader) response.Response {
	t.Helper()
	var out response.Response
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return out
}

func TestLoanHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"forbidden transition", &lifecycle.TransitionError{Code: lifecycle.CodeForbidden, Action: lifecycle.ActionCompleteReview}, http.StatusForbidden},
		{"invalid transition", &lifecycle.TransitionError{Code: lifecycle.CodeConflict, Action: lifecycle.ActionCompleteReview, From: domain.StatusApproved}, http.StatusConflict},
		{"missing loan", domain.ErrLoanNotFound, http.StatusNotFound},
		{"bad review status", services.ErrInvalidReviewStatus, http.StatusBadRequest},
		{"validation", &services.ValidationError{Errors: []string{"x"}}, http.StatusBadRequest},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &fakeWorkflow{err: tt.err, loan: domain.LoanApplication{ID: 1, Status: domain.StatusReviewed}}
			app := newLoanApp(wf, domain.RoleMarketing)

			req := httptest.NewRequest(http.MethodPost, "/reviews/1", strings.NewReader(`{"reviewStatus":"APPROVED","reviewNote":"ok"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			env := decode(t, resp.Body)
			if env.Success != (tt.err == nil) {
				t.Errorf("success = %v", env.Success)
			}
			if wf.actor.Username != "staff" || wf.review.ReviewNote != "ok" {
				t.Errorf("actor/request not forwarded: %+v %+v", wf.actor, wf.review)
			}
		})
	}
}

func TestLoanHandler_DisburseWithoutBody(t *testing.T) {
	wf := &fakeWorkflow{loan: domain.LoanApplication{ID: 3, Status: domain.StatusDisbursed}}
	app := newLoanApp(wf, domain.RoleBackOffice)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/disbursements/3", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if wf.note != "" {
		t.Errorf("note = %q, want empty", wf.note)
	}
	if len(wf.actor.Roles) != 1 || wf.actor.Roles[0] != domain.RoleBackOffice {
		t.Errorf("roles = %v", wf.actor.Roles)
	}
}

func TestLoanHandler_RejectMessage(t *testing.T) {
	wf := &fakeWorkflow{loan: domain.LoanApplication{ID: 2, Status: domain.StatusRejected}}
	app := newLoanApp(wf, domain.RoleBranchManager)

	req := httptest.NewRequest(http.MethodPost, "/approvals/2", strings.NewReader(`{"approvalStatus":"REJECTED","rejectionReason":"Skor rendah"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	env := decode(t, resp.Body)
	if env.Message != "Loan rejected" {
		t.Errorf("message = %q", env.Message)
	}
	if wf.decided.RejectionReason != "Skor rendah" {
		t.Errorf("request = %+v", wf.decided)
	}
}

func TestLoanHandler_GetHonoursVisibility(t *testing.T) {
	tests := []struct {
		name   string
		roles  []domain.Role
		status domain.LoanStatus
		want   int
	}{
		{"marketing sees submitted", []domain.Role{domain.RoleMarketing}, domain.StatusSubmitted, http.StatusOK},
		{"marketing cannot see approved", []domain.Role{domain.RoleMarketing}, domain.StatusApproved, http.StatusForbidden},
		{"super admin sees completed", []domain.Role{domain.RoleSuperAdmin}, domain.StatusCompleted, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &fakeWorkflow{loan: domain.LoanApplication{ID: 9, Status: tt.status}}
			resp, _ := newLoanApp(wf, tt.roles...).Test(httptest.NewRequest(http.MethodGet, "/loans/9", nil))
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	resp, _ := newLoanApp(&fakeWorkflow{}, domain.RoleSuperAdmin).Test(httptest.NewRequest(http.MethodGet, "/loans/abc", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d", resp.StatusCode)
	}
}

func TestLoanHandler_PendingUsesQueue(t *testing.T) {
	wf := &fakeWorkflow{}
	resp, _ := newLoanApp(wf, domain.RoleMarketing).Test(httptest.NewRequest(http.MethodGet, "/reviews/pending", nil))
	if resp.StatusCode != http.StatusOK || wf.queue != lifecycle.QueueReview {
		t.Errorf("status = %d queue = %q", resp.StatusCode, wf.queue)
	}
}
