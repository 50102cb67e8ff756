// Package workflow coordinates staff actions on loans against the API.
// It keeps the loaded work queues, gates every action through the
// transition table before any network call and guards each loan against
// double submission.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"eloan-must/internal/client"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/core/session"
	"eloan-must/internal/pkg/pagination"
)

// Workflow errors
var (
	ErrInFlight       = errors.New("an action on this loan is already in progress")
	ErrStale          = errors.New("queue response superseded by a newer refresh")
	ErrNotLoaded      = fmt.Errorf("%w: not in a loaded queue", domain.ErrLoanNotFound)
	ErrSessionExpired = errors.New("session expired")
)

// LoanGateway is the remote side of the loan workflow
type LoanGateway interface {
	Pending(ctx context.Context, cred *session.Credential, queue lifecycle.Queue) ([]domain.LoanApplication, error)
	Review(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error)
	Decide(ctx context.Context, cred *session.Credential, id uint, req domain.ApprovalRequest) (domain.LoanApplication, error)
	Disburse(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error)
}

var _ LoanGateway = (*client.Client)(nil)

// Options configures a Coordinator
type Options struct {
	Notifier Notifier

	// OnSessionExpired runs when the server rejects the credential or the
	// credential is found expired or without an admin role
	OnSessionExpired func()

	// Now defaults to time.Now
	Now func() time.Time
}

type queueState struct {
	seq      uint64
	items    []domain.LoanApplication
	loadedAt time.Time
}

// Coordinator drives review, approval and disbursement
type Coordinator struct {
	gw        LoanGateway
	notify    Notifier
	onExpired func()
	now       func() time.Time

	mu       sync.Mutex
	queues   map[lifecycle.Queue]*queueState
	inFlight map[uint]bool
}

// NewCoordinator creates a coordinator over gw
func NewCoordinator(gw LoanGateway, opts Options) *Coordinator {
	c := &Coordinator{
		gw:        gw,
		notify:    opts.Notifier,
		onExpired: opts.OnSessionExpired,
		now:       opts.Now,
		queues:    make(map[lifecycle.Queue]*queueState),
		inFlight:  make(map[uint]bool),
	}
	if c.notify == nil {
		c.notify = nopNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Refresh reloads a queue. When two refreshes of the same queue overlap,
// only the most recently started one is kept; the other returns ErrStale.
func (c *Coordinator) Refresh(ctx context.Context, cred *session.Credential, queue lifecycle.Queue) ([]domain.LoanApplication, error) {
	if err := c.checkSession(cred); err != nil {
		return nil, err
	}
	if !lifecycle.HasRole(cred.Roles, queue.Role()) {
		return nil, fmt.Errorf("%w: queue %s", domain.ErrForbidden, queue)
	}

	c.mu.Lock()
	st := c.state(queue)
	st.seq++
	mine := st.seq
	c.mu.Unlock()

	loans, err := c.gw.Pending(ctx, cred, queue)

	c.mu.Lock()
	defer c.mu.Unlock()
	if mine != st.seq {
		return nil, ErrStale
	}
	if err != nil {
		c.failed(err, "Gagal memuat data pengajuan")
		return nil, err
	}

	visible := lifecycle.Filter(cred.Roles, loans, "")
	items := make([]domain.LoanApplication, 0, len(visible))
	for _, l := range visible {
		if queue.Includes(l.Status) {
			items = append(items, l)
		}
	}
	st.items = items
	st.loadedAt = c.now()
	return cloneLoans(items), nil
}

// View returns one 0-based page of a loaded queue filtered by search
func (c *Coordinator) View(queue lifecycle.Queue, search string, page, size int) domain.Page[domain.LoanApplication] {
	c.mu.Lock()
	var items []domain.LoanApplication
	if st, ok := c.queues[queue]; ok {
		items = cloneLoans(st.items)
	}
	c.mu.Unlock()

	return pagination.Slice(lifecycle.Search(items, search), pagination.New(page, size))
}

// Loan returns a loaded loan by id
func (c *Coordinator) Loan(id uint) (domain.LoanApplication, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(id)
}

// AvailableActions lists what cred may do with a loaded loan
func (c *Coordinator) AvailableActions(cred *session.Credential, id uint) []lifecycle.Action {
	loan, ok := c.Loan(id)
	if !ok || cred == nil {
		return nil
	}
	return lifecycle.AvailableActions(cred.Roles, loan.Status)
}

// BeginReview marks a submitted loan as being reviewed. This is local
// only; the server learns about it when the review is completed.
func (c *Coordinator) BeginReview(cred *session.Credential, id uint) (domain.LoanApplication, error) {
	if err := c.checkSession(cred); err != nil {
		return domain.LoanApplication{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	loan, ok := c.lookup(id)
	if !ok {
		return domain.LoanApplication{}, ErrNotLoaded
	}
	to, err := lifecycle.Authorize(cred.Roles, loan.Status, lifecycle.ActionBeginReview)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	loan.Status = to
	c.replace(loan)
	c.notify.Notify(Notice{Level: LevelInfo, Message: "Silakan isi catatan review"})
	return loan, nil
}

// CompleteReview submits the review. A loan still SUBMITTED is begun and
// completed in the same call. An empty note uses the default note.
func (c *Coordinator) CompleteReview(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	note = lifecycle.NoteOrDefault(lifecycle.ActionCompleteReview, note)
	return c.act(ctx, cred, id, actionPlan{
		check: func(roles []domain.Role, from domain.LoanStatus) error {
			_, err := lifecycle.Walk(roles, from, lifecycle.ReviewPath(from)...)
			return err
		},
		call: func(ctx context.Context) (domain.LoanApplication, error) {
			return c.gw.Review(ctx, cred, id, note)
		},
		success: "Review selesai! Pengajuan diteruskan ke Branch Manager.",
		failure: "Gagal menyelesaikan review",
	})
}

// Approve approves a loan under review
func (c *Coordinator) Approve(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	note = lifecycle.NoteOrDefault(lifecycle.ActionApprove, note)
	return c.act(ctx, cred, id, actionPlan{
		check: authorizer(lifecycle.ActionApprove),
		call: func(ctx context.Context) (domain.LoanApplication, error) {
			return c.gw.Decide(ctx, cred, id, domain.ApprovalRequest{ApprovalStatus: string(domain.StatusApproved), ApprovalNote: note})
		},
		success: "Pengajuan disetujui! Diteruskan ke Back Office untuk pencairan.",
		failure: "Gagal menyetujui pengajuan",
	})
}

// Reject rejects a loan under review. reason is required; an empty reason
// fails without contacting the server.
func (c *Coordinator) Reject(ctx context.Context, cred *session.Credential, id uint, notes, reason string) (domain.LoanApplication, error) {
	reason = strings.TrimSpace(reason)
	return c.act(ctx, cred, id, actionPlan{
		check: func(roles []domain.Role, from domain.LoanStatus) error {
			if _, err := lifecycle.Authorize(roles, from, lifecycle.ActionReject); err != nil {
				return err
			}
			if lifecycle.RequiresReason(lifecycle.ActionReject) && reason == "" {
				return domain.ErrRejectionReasonRequired
			}
			return nil
		},
		call: func(ctx context.Context) (domain.LoanApplication, error) {
			return c.gw.Decide(ctx, cred, id, domain.ApprovalRequest{
				ApprovalStatus:  string(domain.StatusRejected),
				ApprovalNote:    lifecycle.ComposeRejectionNote(notes, reason),
				RejectionReason: reason,
			})
		},
		success: "Pengajuan ditolak.",
		failure: "Gagal menolak pengajuan",
	})
}

// Disburse disburses an approved loan for its full amount
func (c *Coordinator) Disburse(ctx context.Context, cred *session.Credential, id uint, note string) (domain.LoanApplication, error) {
	return c.act(ctx, cred, id, actionPlan{
		check: authorizer(lifecycle.ActionDisburse),
		call: func(ctx context.Context) (domain.LoanApplication, error) {
			return c.gw.Disburse(ctx, cred, id, strings.TrimSpace(note))
		},
		success: "Dana berhasil dicairkan!",
		failure: "Gagal mencairkan dana",
	})
}

// Dashboard summarizes what cred can see. SUPER_ADMIN reads every loan;
// other roles read the union of their queues.
func (c *Coordinator) Dashboard(ctx context.Context, cred *session.Credential) (domain.DashboardStats, error) {
	if err := c.checkSession(cred); err != nil {
		return domain.DashboardStats{}, err
	}

	queues := []lifecycle.Queue{lifecycle.QueueAll}
	if !lifecycle.HasRole(cred.Roles, domain.RoleSuperAdmin) {
		queues = lifecycle.QueuesFor(cred.Roles)
	}

	seen := make(map[uint]bool)
	var loans []domain.LoanApplication
	for _, q := range queues {
		items, err := c.gw.Pending(ctx, cred, q)
		if err != nil {
			c.mu.Lock()
			c.failed(err, "Gagal memuat statistik")
			c.mu.Unlock()
			return domain.DashboardStats{}, err
		}
		for _, l := range items {
			if !seen[l.ID] {
				seen[l.ID] = true
				loans = append(loans, l)
			}
		}
	}
	return lifecycle.Summarize(lifecycle.Filter(cred.Roles, loans, "")), nil
}

type actionPlan struct {
	check   func(roles []domain.Role, from domain.LoanStatus) error
	call    func(ctx context.Context) (domain.LoanApplication, error)
	success string
	failure string
}

func authorizer(action lifecycle.Action) func([]domain.Role, domain.LoanStatus) error {
	return func(roles []domain.Role, from domain.LoanStatus) error {
		_, err := lifecycle.Authorize(roles, from, action)
		return err
	}
}

// act runs one state-changing action: local checks, in-flight guard,
// exactly one gateway call, then local bookkeeping
func (c *Coordinator) act(ctx context.Context, cred *session.Credential, id uint, plan actionPlan) (domain.LoanApplication, error) {
	if err := c.checkSession(cred); err != nil {
		return domain.LoanApplication{}, err
	}

	c.mu.Lock()
	loan, ok := c.lookup(id)
	if !ok {
		c.mu.Unlock()
		return domain.LoanApplication{}, ErrNotLoaded
	}
	if err := plan.check(cred.Roles, loan.Status); err != nil {
		c.mu.Unlock()
		c.notify.Notify(Notice{Level: LevelError, Message: localMessage(err)})
		return domain.LoanApplication{}, err
	}
	if c.inFlight[id] {
		c.mu.Unlock()
		return domain.LoanApplication{}, ErrInFlight
	}
	c.inFlight[id] = true
	c.mu.Unlock()

	updated, err := plan.call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)

	if err != nil {
		c.failed(err, plan.failure)
		return domain.LoanApplication{}, err
	}

	c.remove(id)
	c.notify.Notify(Notice{Level: LevelSuccess, Message: plan.success})
	return updated, nil
}

// checkSession runs the access gate; expired or non-admin credentials
// invalidate the session
func (c *Coordinator) checkSession(cred *session.Credential) error {
	d := session.Gate(cred, c.now(), "")
	switch d.Outcome {
	case session.Allow:
		return nil
	case session.Deny:
		c.expire()
		return client.ErrAccessDenied
	default:
		if d.ClearSession {
			c.expire()
		}
		return ErrSessionExpired
	}
}

// failed reports a remote failure. Caller holds c.mu.
func (c *Coordinator) failed(err error, prefix string) {
	c.notify.Notify(Notice{Level: LevelError, Message: prefix + ": " + client.UserMessage(err)})
	if client.IsSessionExpired(err) {
		c.expire()
	}
}

func (c *Coordinator) expire() {
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Coordinator) state(q lifecycle.Queue) *queueState {
	st, ok := c.queues[q]
	if !ok {
		st = &queueState{}
		c.queues[q] = st
	}
	return st
}

// lookup finds a loan in any loaded queue. Caller holds c.mu.
func (c *Coordinator) lookup(id uint) (domain.LoanApplication, bool) {
	for _, st := range c.queues {
		for _, l := range st.items {
			if l.ID == id {
				return l, true
			}
		}
	}
	return domain.LoanApplication{}, false
}

// replace updates a loan in every queue that holds it. Caller holds c.mu.
func (c *Coordinator) replace(loan domain.LoanApplication) {
	for _, st := range c.queues {
		for i := range st.items {
			if st.items[i].ID == loan.ID {
				st.items[i] = loan
			}
		}
	}
}

// remove drops a loan from every queue. Caller holds c.mu.
func (c *Coordinator) remove(id uint) {
	for _, st := range c.queues {
		kept := st.items[:0]
		for _, l := range st.items {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		st.items = kept
	}
}

func localMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRejectionReasonRequired):
		return "Alasan penolakan wajib diisi"
	case errors.Is(err, domain.ErrForbidden):
		return "Anda tidak memiliki akses untuk tindakan ini"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Status pengajuan tidak sesuai untuk tindakan ini"
	default:
		return err.Error()
	}
}

func cloneLoans(in []domain.LoanApplication) []domain.LoanApplication {
	out := make([]domain.LoanApplication, len(in))
	copy(out, in)
	return out
}
