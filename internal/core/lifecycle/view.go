package lifecycle

import (
	"strings"

	"eloan-must/internal/core/domain"
)

// Queue is a role's pending work list
type Queue string

const (
	QueueReview       Queue = "review"
	QueueApproval     Queue = "approval"
	QueueDisbursement Queue = "disbursement"
	QueueAll          Queue = "all"
)

var queueStatuses = map[Queue][]domain.LoanStatus{
	QueueReview:       {domain.StatusSubmitted, domain.StatusInReview},
	QueueApproval:     {domain.StatusInReview, domain.StatusReviewed},
	QueueDisbursement: {domain.StatusApproved},
}

var queueRoles = map[Queue]domain.Role{
	QueueReview:       domain.RoleMarketing,
	QueueApproval:     domain.RoleBranchManager,
	QueueDisbursement: domain.RoleBackOffice,
	QueueAll:          domain.RoleSuperAdmin,
}

// ParseQueue converts a queue name
func ParseQueue(name string) (Queue, bool) {
	q := Queue(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := queueRoles[q]; !ok {
		return "", false
	}
	return q, true
}

// Statuses returns the statuses listed in the queue; QueueAll returns nil
func (q Queue) Statuses() []domain.LoanStatus {
	s := queueStatuses[q]
	out := make([]domain.LoanStatus, len(s))
	copy(out, s)
	return out
}

// Role returns the role that owns the queue
func (q Queue) Role() domain.Role {
	return queueRoles[q]
}

// Includes reports whether status belongs in the queue
func (q Queue) Includes(status domain.LoanStatus) bool {
	if q == QueueAll {
		return true
	}
	for _, s := range queueStatuses[q] {
		if s == status {
			return true
		}
	}
	return false
}

// QueuesFor returns the work queues the roles can open
func QueuesFor(roles []domain.Role) []Queue {
	var out []Queue
	for _, q := range []Queue{QueueReview, QueueApproval, QueueDisbursement, QueueAll} {
		if HasRole(roles, q.Role()) {
			out = append(out, q)
		}
	}
	return out
}

// VisibleStatuses returns the statuses roles may see. all is true for
// SUPER_ADMIN, in which case statuses is every status.
func VisibleStatuses(roles []domain.Role) (statuses []domain.LoanStatus, all bool) {
	if containsRole(roles, domain.RoleSuperAdmin) {
		return domain.AllStatuses(), true
	}
	seen := make(map[domain.LoanStatus]bool)
	for _, r := range roles {
		for q, owner := range queueRoles {
			if owner != r {
				continue
			}
			for _, s := range queueStatuses[q] {
				seen[s] = true
			}
		}
	}
	for _, s := range domain.AllStatuses() {
		if seen[s] {
			statuses = append(statuses, s)
		}
	}
	return statuses, false
}

// Visible reports whether roles may see a loan in status
func Visible(roles []domain.Role, status domain.LoanStatus) bool {
	statuses, all := VisibleStatuses(roles)
	if all {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Filter keeps the loans roles may see. An empty statusFilter keeps every
// visible status.
func Filter(roles []domain.Role, loans []domain.LoanApplication, statusFilter domain.LoanStatus) []domain.LoanApplication {
	out := make([]domain.LoanApplication, 0, len(loans))
	for _, l := range loans {
		if !Visible(roles, l.Status) {
			continue
		}
		if statusFilter != "" && l.Status != statusFilter {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Search keeps loans whose application number or customer name/email
// contain term, case-insensitively
func Search(loans []domain.LoanApplication, term string) []domain.LoanApplication {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return loans
	}
	out := make([]domain.LoanApplication, 0, len(loans))
	for _, l := range loans {
		if strings.Contains(strings.ToLower(l.ApplicationNumber), term) ||
			strings.Contains(strings.ToLower(l.CustomerName()), term) ||
			strings.Contains(strings.ToLower(l.CustomerEmail()), term) {
			out = append(out, l)
		}
	}
	return out
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
