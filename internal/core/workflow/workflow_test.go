package workflow

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eloan-must/internal/client"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/session"
)

type fakeGateway struct {
	mu       sync.Mutex
	loans    []domain.LoanApplication
	pending  func(q lifecycle.Queue) ([]domain.LoanApplication, error)
	actErr   error
	block    chan struct{}
	calls    int32
	queues   []lifecycle.Queue
	decided  domain.ApprovalRequest
	reviewed string

	detect    domain.PlafondDetection
	detectErr error
	simErr    error
	simulated []int
	plafonds  []domain.Plafond
	users     []domain.User
	toggleErr error
	onToggle  func()
}

func (f *fakeGateway) Pending(_ context.Context, _ *session.Credential, q lifecycle.Queue) ([]domain.LoanApplication, error) {
	f.mu.Lock()
	f.queues = append(f.queues, q)
	hook := f.pending
	loans := append([]domain.LoanApplication(nil), f.loans...)
	f.mu.Unlock()
	if hook != nil {
		return hook(q)
	}
	return loans, nil
}

func (f *fakeGateway) act(id uint, to domain.LoanStatus) (domain.LoanApplication, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.actErr != nil {
		return domain.LoanApplication{}, f.actErr
	}
	return domain.LoanApplication{ID: id, Status: to}, nil
}

func (f *fakeGateway) Review(_ context.Context, _ *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	f.reviewed = note
	return f.act(id, domain.StatusReviewed)
}

func (f *fakeGateway) Decide(_ context.Context, _ *session.Credential, id uint, req domain.ApprovalRequest) (domain.LoanApplication, error) {
	f.decided = req
	return f.act(id, domain.LoanStatus(req.ApprovalStatus))
}

func (f *fakeGateway) Disburse(_ context.Context, _ *session.Credential, id uint, _ string) (domain.LoanApplication, error) {
	return f.act(id, domain.StatusDisbursed)
}

func (f *fakeGateway) DetectPlafond(context.Context, float64) (domain.PlafondDetection, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.detect, f.detectErr
}

func (f *fakeGateway) Simulate(_ context.Context, amount float64, tenor int) (domain.SimulationResult, error) {
	f.simulated = append(f.simulated, tenor)
	if f.simErr != nil {
		return domain.SimulationResult{}, f.simErr
	}
	return domain.SimulationResult{Amount: amount, TenorMonth: tenor, MonthlyInstallment: 1}, nil
}

func (f *fakeGateway) AllPlafonds(context.Context, *session.Credential) ([]domain.Plafond, error) {
	return append([]domain.Plafond(nil), f.plafonds...), nil
}

func (f *fakeGateway) TogglePlafond(_ context.Context, _ *session.Credential, id uint) (domain.Plafond, error) {
	if f.onToggle != nil {
		f.onToggle()
	}
	if f.toggleErr != nil {
		return domain.Plafond{}, f.toggleErr
	}
	for _, p := range f.plafonds {
		if p.ID == id {
			p.Active = !p.Active
			return p, nil
		}
	}
	return domain.Plafond{}, domain.ErrPlafondNotFound
}

func (f *fakeGateway) Users(context.Context, *session.Credential, string, int, int) (domain.Page[domain.User], error) {
	return domain.Page[domain.User]{Content: append([]domain.User(nil), f.users...)}, nil
}

func (f *fakeGateway) ToggleUser(_ context.Context, _ *session.Credential, id uint) (domain.User, error) {
	if f.onToggle != nil {
		f.onToggle()
	}
	if f.toggleErr != nil {
		return domain.User{}, f.toggleErr
	}
	for _, u := range f.users {
		if u.ID == id {
			u.Active = !u.Active
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func cred(roles ...domain.Role) *session.Credential {
	return &session.Credential{Token: "tok", Username: "staff", Roles: roles, ExpiresAt: fixedNow.Add(time.Hour)}
}

func sampleLoans() []domain.LoanApplication {
	return []domain.LoanApplication{
		{ID: 1, ApplicationNumber: "LN-20260301-AAAA0001", Status: domain.StatusSubmitted, Amount: 5_000_000,
			Customer: &domain.Customer{FullName: "Budi Santoso", Email: "budi@example.com"}},
		{ID: 2, ApplicationNumber: "LN-20260301-AAAA0002", Status: domain.StatusInReview, Amount: 12_000_000,
			Customer: &domain.Customer{FullName: "Sari Dewi", Email: "sari@example.com"}},
		{ID: 3, ApplicationNumber: "LN-20260301-AAAA0003", Status: domain.StatusReviewed, Amount: 25_000_000},
		{ID: 4, ApplicationNumber: "LN-20260301-AAAA0004", Status: domain.StatusApproved, Amount: 75_000_000},
		{ID: 5, ApplicationNumber: "LN-20260301-AAAA0005", Status: domain.StatusDisbursed, Amount: 3_000_000},
	}
}

func newCoordinator(gw *fakeGateway, rec *recorder, expired *int32) *Coordinator {
	return NewCoordinator(gw, Options{
		Notifier:         rec,
		Now:              func() time.Time { return fixedNow },
		OnSessionExpired: func() { atomic.AddInt32(expired, 1) },
	})
}

func TestCoordinator_RefreshFiltersQueue(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans()}
	var expired int32
	c := newCoordinator(gw, &recorder{}, &expired)

	got, err := c.Refresh(context.Background(), cred(domain.RoleMarketing), lifecycle.QueueReview)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("review queue = %+v", got)
	}

	if _, err := c.Refresh(context.Background(), cred(domain.RoleMarketing), lifecycle.QueueDisbursement); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign queue err = %v", err)
	}
}

func TestCoordinator_RefreshLastResponseWins(t *testing.T) {
	release := make(chan struct{})
	var n int32
	gw := &fakeGateway{}
	gw.pending = func(lifecycle.Queue) ([]domain.LoanApplication, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			<-release
			return []domain.LoanApplication{{ID: 10, Status: domain.StatusSubmitted}}, nil
		}
		return []domain.LoanApplication{{ID: 20, Status: domain.StatusSubmitted}}, nil
	}
	var expired int32
	c := newCoordinator(gw, &recorder{}, &expired)
	cr := cred(domain.RoleMarketing)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Refresh(context.Background(), cr, lifecycle.QueueReview)
		firstErr <- err
	}()
	for atomic.LoadInt32(&n) < 1 {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueReview); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	close(release)

	if err := <-firstErr; !errors.Is(err, ErrStale) {
		t.Errorf("first Refresh err = %v, want ErrStale", err)
	}
	page := c.View(lifecycle.QueueReview, "", 0, 10)
	if len(page.Content) != 1 || page.Content[0].ID != 20 {
		t.Errorf("queue = %+v", page.Content)
	}
}

func TestCoordinator_View(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans()}
	var expired int32
	c := newCoordinator(gw, &recorder{}, &expired)
	if _, err := c.Refresh(context.Background(), cred(domain.RoleSuperAdmin), lifecycle.QueueAll); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		search string
		page   int
		size   int
		ids    []uint
		total  int64
	}{
		{"all first page", "", 0, 2, []uint{1, 2}, 5},
		{"last page", "", 2, 2, []uint{5}, 5},
		{"by customer name", "sari", 0, 10, []uint{2}, 1},
		{"by email", "BUDI@", 0, 10, []uint{1}, 1},
		{"by number", "AAAA0004", 0, 10, []uint{4}, 1},
		{"no match", "zzz", 0, 10, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.View(lifecycle.QueueAll, tt.search, tt.page, tt.size)
			if p.TotalElements != tt.total || len(p.Content) != len(tt.ids) {
				t.Fatalf("page = %+v", p)
			}
			for i, id := range tt.ids {
				if p.Content[i].ID != id {
					t.Errorf("content[%d] = %d, want %d", i, p.Content[i].ID, id)
				}
			}
		})
	}
}

func TestCoordinator_Actions(t *testing.T) {
	type run func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error)
	ctx := context.Background()

	tests := []struct {
		name      string
		roles     []domain.Role
		do        run
		wantErr   error
		wantCalls int32
		removed   uint
	}{
		{
			name:  "marketing begins review of submitted loan",
			roles: []domain.Role{domain.RoleMarketing},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.BeginReview(cr, 1)
			},
		},
		{
			name:  "back office cannot begin review",
			roles: []domain.Role{domain.RoleBackOffice},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.BeginReview(cr, 1)
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:  "review from submitted collapses both steps",
			roles: []domain.Role{domain.RoleMarketing},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.CompleteReview(ctx, cr, 1, "")
			},
			wantCalls: 1,
			removed:   1,
		},
		{
			name:  "marketing cannot approve",
			roles: []domain.Role{domain.RoleMarketing},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Approve(ctx, cr, 3, "")
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:  "approve reviewed loan",
			roles: []domain.Role{domain.RoleBranchManager},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Approve(ctx, cr, 3, "")
			},
			wantCalls: 1,
			removed:   3,
		},
		{
			name:  "reject without reason never calls the server",
			roles: []domain.Role{domain.RoleBranchManager},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Reject(ctx, cr, 3, "catatan", "   ")
			},
			wantErr: domain.ErrRejectionReasonRequired,
		},
		{
			name:  "cannot disburse a reviewed loan",
			roles: []domain.Role{domain.RoleBackOffice},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Disburse(ctx, cr, 3, "")
			},
			wantErr: domain.ErrInvalidTransition,
		},
		{
			name:  "super admin disburses",
			roles: []domain.Role{domain.RoleSuperAdmin},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Disburse(ctx, cr, 4, "")
			},
			wantCalls: 1,
			removed:   4,
		},
		{
			name:  "unloaded loan",
			roles: []domain.Role{domain.RoleSuperAdmin},
			do: func(c *Coordinator, cr *session.Credential) (domain.LoanApplication, error) {
				return c.Disburse(ctx, cr, 99, "")
			},
			wantErr: domain.ErrLoanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{loans: sampleLoans()}
			var expired int32
			c := newCoordinator(gw, &recorder{}, &expired)
			if _, err := c.Refresh(ctx, cred(domain.RoleSuperAdmin), lifecycle.QueueAll); err != nil {
				t.Fatal(err)
			}

			_, err := tt.do(c, cred(tt.roles...))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got := atomic.LoadInt32(&gw.calls); got != tt.wantCalls {
				t.Errorf("gateway calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.removed != 0 {
				if _, ok := c.Loan(tt.removed); ok {
					t.Errorf("loan %d still queued", tt.removed)
				}
			}
		})
	}
}

func TestCoordinator_BeginReviewIsLocal(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans()}
	var expired int32
	c := newCoordinator(gw, &recorder{}, &expired)
	cr := cred(domain.RoleMarketing)
	if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueReview); err != nil {
		t.Fatal(err)
	}

	loan, err := c.BeginReview(cr, 1)
	if err != nil || loan.Status != domain.StatusInReview {
		t.Fatalf("BeginReview = %+v, %v", loan, err)
	}
	if got, _ := c.Loan(1); got.Status != domain.StatusInReview {
		t.Errorf("queued status = %s", got.Status)
	}

	if _, err := c.CompleteReview(context.Background(), cr, 1, "  "); err != nil {
		t.Fatalf("CompleteReview: %v", err)
	}
	if gw.reviewed != "Review selesai, data lengkap" {
		t.Errorf("note = %q", gw.reviewed)
	}
}

func TestCoordinator_RejectComposesNote(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans()}
	var expired int32
	rec := &recorder{}
	c := newCoordinator(gw, rec, &expired)
	cr := cred(domain.RoleBranchManager)
	if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueApproval); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Reject(context.Background(), cr, 3, "Slip gaji tidak valid", "Dokumen palsu"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	want := domain.ApprovalRequest{
		ApprovalStatus:  "REJECTED",
		ApprovalNote:    "Slip gaji tidak valid. Reason: Dokumen palsu",
		RejectionReason: "Dokumen palsu",
	}
	if gw.decided != want {
		t.Errorf("request = %+v", gw.decided)
	}
	if n := rec.last(); n.Level != LevelSuccess || n.Message != "Pengajuan ditolak." {
		t.Errorf("notice = %+v", n)
	}
}

func TestCoordinator_FailedDisburseKeepsLoan(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans(), actErr: &client.APIError{Kind: client.KindServer, Status: 500, Message: "Terjadi kesalahan pada server. Silakan coba lagi nanti."}}
	var expired int32
	rec := &recorder{}
	c := newCoordinator(gw, rec, &expired)
	cr := cred(domain.RoleBackOffice)
	if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueDisbursement); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Disburse(context.Background(), cr, 4, ""); err == nil {
		t.Fatal("expected error")
	}
	loan, ok := c.Loan(4)
	if !ok || loan.Status != domain.StatusApproved {
		t.Errorf("loan = %+v, %v", loan, ok)
	}
	if n := rec.last(); n.Level != LevelError {
		t.Errorf("notice = %+v", n)
	}
	if atomic.LoadInt32(&expired) != 0 {
		t.Error("server error invalidated the session")
	}
}

func TestCoordinator_InFlightGuard(t *testing.T) {
	gw := &fakeGateway{loans: sampleLoans(), block: make(chan struct{})}
	var expired int32
	c := newCoordinator(gw, &recorder{}, &expired)
	cr := cred(domain.RoleBackOffice)
	if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueDisbursement); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Disburse(context.Background(), cr, 4, "")
		done <- err
	}()
	for atomic.LoadInt32(&gw.calls) < 1 {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Disburse(context.Background(), cr, 4, ""); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Disburse err = %v, want ErrInFlight", err)
	}
	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first Disburse: %v", err)
	}
	if got := atomic.LoadInt32(&gw.calls); got != 1 {
		t.Errorf("gateway calls = %d, want 1", got)
	}
}

func TestCoordinator_SessionHandling(t *testing.T) {
	unauthorized := &client.APIError{Kind: client.KindAuthorization, Status: http.StatusUnauthorized, Message: "Sesi Anda telah berakhir. Silakan login kembali."}

	t.Run("401 invalidates", func(t *testing.T) {
		gw := &fakeGateway{loans: sampleLoans()}
		var expired int32
		c := newCoordinator(gw, &recorder{}, &expired)
		cr := cred(domain.RoleBackOffice)
		if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueDisbursement); err != nil {
			t.Fatal(err)
		}
		gw.actErr = unauthorized
		if _, err := c.Disburse(context.Background(), cr, 4, ""); !client.IsSessionExpired(err) {
			t.Fatalf("err = %v", err)
		}
		if atomic.LoadInt32(&expired) != 1 {
			t.Errorf("expired callbacks = %d", expired)
		}
	})

	t.Run("expired credential", func(t *testing.T) {
		var expired int32
		c := newCoordinator(&fakeGateway{}, &recorder{}, &expired)
		cr := cred(domain.RoleMarketing)
		cr.ExpiresAt = fixedNow.Add(-time.Minute)
		if _, err := c.Refresh(context.Background(), cr, lifecycle.QueueReview); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("err = %v", err)
		}
		if atomic.LoadInt32(&expired) != 1 {
			t.Errorf("expired callbacks = %d", expired)
		}
	})

	t.Run("customer only", func(t *testing.T) {
		var expired int32
		c := newCoordinator(&fakeGateway{}, &recorder{}, &expired)
		if _, err := c.Dashboard(context.Background(), cred(domain.RoleCustomer)); !errors.Is(err, client.ErrAccessDenied) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("no credential", func(t *testing.T) {
		var expired int32
		c := newCoordinator(&fakeGateway{}, &recorder{}, &expired)
		if _, err := c.Refresh(context.Background(), nil, lifecycle.QueueReview); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("err = %v", err)
		}
		if atomic.LoadInt32(&expired) != 0 {
			t.Error("missing credential should not clear anything")
		}
	})
}

func TestCoordinator_Dashboard(t *testing.T) {
	tests := []struct {
		name   string
		roles  []domain.Role
		queues []lifecycle.Queue
		total  int64
	}{
		{"super admin reads everything", []domain.Role{domain.RoleSuperAdmin}, []lifecycle.Queue{lifecycle.QueueAll}, 5},
		{"marketing reads review queue", []domain.Role{domain.RoleMarketing}, []lifecycle.Queue{lifecycle.QueueReview}, 2},
		{"manager and back office union", []domain.Role{domain.RoleBranchManager, domain.RoleBackOffice},
			[]lifecycle.Queue{lifecycle.QueueApproval, lifecycle.QueueDisbursement}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := sampleLoans()
			gw := &fakeGateway{}
			gw.pending = func(q lifecycle.Queue) ([]domain.LoanApplication, error) {
				var out []domain.LoanApplication
				for _, l := range all {
					if q.Includes(l.Status) {
						out = append(out, l)
					}
				}
				return out, nil
			}
			var expired int32
			c := newCoordinator(gw, &recorder{}, &expired)

			stats, err := c.Dashboard(context.Background(), cred(tt.roles...))
			if err != nil {
				t.Fatalf("Dashboard: %v", err)
			}
			if stats.TotalApplications != tt.total {
				t.Errorf("total = %d, want %d", stats.TotalApplications, tt.total)
			}
			if len(gw.queues) != len(tt.queues) {
				t.Fatalf("queues = %v, want %v", gw.queues, tt.queues)
			}
			for i := range tt.queues {
				if gw.queues[i] != tt.queues[i] {
					t.Errorf("queues = %v, want %v", gw.queues, tt.queues)
				}
			}
		})
	}
}

func TestSimulator_Preview(t *testing.T) {
	silver := domain.PlafondDetection{Found: true, Message: "Produk Silver, tenor maksimal 12 bulan", PlafondName: "Silver", MaxTenorMonth: 12}

	tests := []struct {
		name      string
		amount    float64
		tenor     int
		gw        *fakeGateway
		wantTenor int
		clamped   bool
		found     bool
		result    bool
		message   string
		detects   int32
	}{
		{name: "below minimum clears", amount: 999_999, tenor: 12, gw: &fakeGateway{detect: silver}, wantTenor: 12},
		{name: "above maximum not found", amount: 500_000_001, tenor: 12, gw: &fakeGateway{detect: silver}, wantTenor: 12, message: "Jumlah pinjaman melebihi batas simulasi"},
		{name: "detect failure", amount: 5_000_000, tenor: 12, gw: &fakeGateway{detectErr: errors.New("down")}, wantTenor: 12,
			message: "Gagal mendeteksi produk. Silakan coba lagi.", detects: 1},
		{name: "no product", amount: 5_000_000, tenor: 12, gw: &fakeGateway{detect: domain.PlafondDetection{Message: "Tidak ada produk"}}, wantTenor: 12,
			message: "Tidak ada produk", detects: 1},
		{name: "tenor clamped before submit", amount: 5_000_000, tenor: 36, gw: &fakeGateway{detect: silver}, wantTenor: 12, clamped: true,
			found: true, result: true, message: silver.Message, detects: 1},
		{name: "tenor within range", amount: 5_000_000, tenor: 6, gw: &fakeGateway{detect: silver}, wantTenor: 6,
			found: true, result: true, message: silver.Message, detects: 1},
		{name: "simulate failure clears result", amount: 5_000_000, tenor: 6, gw: &fakeGateway{detect: silver, simErr: errors.New("x")}, wantTenor: 6,
			found: true, message: "Simulasi belum tersedia. Silakan coba lagi.", detects: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimulator(tt.gw)
			p, err := s.Preview(context.Background(), tt.amount, tt.tenor)
			if err != nil {
				t.Fatalf("Preview: %v", err)
			}
			if p.Tenor != tt.wantTenor || p.Clamped != tt.clamped {
				t.Errorf("tenor = %d clamped = %v", p.Tenor, p.Clamped)
			}
			if found := p.Detection != nil && p.Detection.Found; found != tt.found {
				t.Errorf("found = %v", found)
			}
			if (p.Result != nil) != tt.result {
				t.Errorf("result = %+v", p.Result)
			}
			if p.Message != tt.message {
				t.Errorf("message = %q, want %q", p.Message, tt.message)
			}
			if got := atomic.LoadInt32(&tt.gw.calls); got != tt.detects {
				t.Errorf("detect calls = %d, want %d", got, tt.detects)
			}
			if tt.result && tt.gw.simulated[0] != tt.wantTenor {
				t.Errorf("submitted tenor = %d, want %d", tt.gw.simulated[0], tt.wantTenor)
			}
		})
	}
}

func TestRunOptimistic(t *testing.T) {
	state := false
	flip := func() { state = !state }

	if err := RunOptimistic(context.Background(), Command{Apply: flip, Revert: flip}, func(context.Context) error { return nil }); err != nil || !state {
		t.Fatalf("success: state = %v err = %v", state, err)
	}

	boom := errors.New("boom")
	if err := RunOptimistic(context.Background(), Command{Apply: flip, Revert: flip}, func(context.Context) error {
		if state {
			t.Error("apply did not run before remote")
		}
		return boom
	}); !errors.Is(err, boom) || !state {
		t.Fatalf("failure: state = %v err = %v", state, err)
	}
}

func TestCatalog_Toggle(t *testing.T) {
	ctx := context.Background()
	admin := cred(domain.RoleSuperAdmin)

	t.Run("product success", func(t *testing.T) {
		gw := &fakeGateway{plafonds: []domain.Plafond{{ID: 1, Name: "Silver", Active: true}}}
		rec := &recorder{}
		cat := NewCatalog(gw, rec)
		if _, err := cat.LoadProducts(ctx, admin); err != nil {
			t.Fatal(err)
		}
		if err := cat.ToggleProduct(ctx, admin, 1); err != nil {
			t.Fatalf("ToggleProduct: %v", err)
		}
		if cat.Products()[0].Active {
			t.Error("product still active")
		}
		if n := rec.last(); n.Message != "Produk berhasil dinonaktifkan!" {
			t.Errorf("notice = %+v", n)
		}
	})

	t.Run("user failure reverts", func(t *testing.T) {
		gw := &fakeGateway{users: []domain.User{{ID: 2, Username: "rina", Active: false}}, toggleErr: errors.New("down")}
		rec := &recorder{}
		cat := NewCatalog(gw, rec)
		if _, err := cat.LoadUsers(ctx, admin, "", 0, 10); err != nil {
			t.Fatal(err)
		}
		if err := cat.ToggleUser(ctx, admin, 2); err == nil {
			t.Fatal("expected error")
		}
		if cat.Users()[0].Active {
			t.Error("failed toggle was not reverted")
		}
		if n := rec.last(); n.Level != LevelError {
			t.Errorf("notice = %+v", n)
		}
	})

	t.Run("product reloaded during failed toggle", func(t *testing.T) {
		gw := &fakeGateway{
			plafonds: []domain.Plafond{
				{ID: 1, Name: "Bronze", Active: true},
				{ID: 2, Name: "Silver", Active: true},
				{ID: 3, Name: "Gold", Active: true},
			},
			toggleErr: errors.New("down"),
		}
		cat := NewCatalog(gw, nil)
		if _, err := cat.LoadProducts(ctx, admin); err != nil {
			t.Fatal(err)
		}
		gw.onToggle = func() {
			gw.plafonds = []domain.Plafond{{ID: 1, Name: "Bronze", Active: true}}
			if _, err := cat.LoadProducts(ctx, admin); err != nil {
				t.Errorf("reload: %v", err)
			}
		}
		if err := cat.ToggleProduct(ctx, admin, 3); err == nil {
			t.Fatal("expected error")
		}
		got := cat.Products()
		if len(got) != 1 || got[0].ID != 1 || !got[0].Active {
			t.Errorf("products after reload = %+v", got)
		}
	})

	t.Run("user list reordered during toggle", func(t *testing.T) {
		gw := &fakeGateway{users: []domain.User{
			{ID: 1, Username: "rina", Active: true},
			{ID: 2, Username: "budi", Active: true},
		}}
		cat := NewCatalog(gw, nil)
		if _, err := cat.LoadUsers(ctx, admin, "", 0, 10); err != nil {
			t.Fatal(err)
		}
		gw.onToggle = func() {
			gw.users = []domain.User{
				{ID: 2, Username: "budi", Active: true},
				{ID: 1, Username: "rina", Active: true},
			}
			if _, err := cat.LoadUsers(ctx, admin, "", 0, 10); err != nil {
				t.Errorf("reload: %v", err)
			}
		}
		if err := cat.ToggleUser(ctx, admin, 1); err != nil {
			t.Fatalf("ToggleUser: %v", err)
		}
		active := map[uint]bool{}
		for _, u := range cat.Users() {
			active[u.ID] = u.Active
		}
		if active[1] || !active[2] {
			t.Errorf("active = %v, want only user 1 deactivated", active)
		}
	})

	t.Run("non admin", func(t *testing.T) {
		cat := NewCatalog(&fakeGateway{}, nil)
		if err := cat.ToggleProduct(ctx, cred(domain.RoleMarketing), 1); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("err = %v", err)
		}
	})
}
