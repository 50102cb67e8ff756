// Package lifecycle holds the loan status state machine.
//
// The transition table below is the only place that decides whether a role may
// move a loan from one status to another. Server handlers, the admin client
// coordinator and menu/action visibility all query it.
//
//	SUBMITTED --BEGIN_REVIEW--> IN_REVIEW --COMPLETE_REVIEW--> REVIEWED
//	IN_REVIEW|REVIEWED --APPROVE--> APPROVED --DISBURSE--> DISBURSED
//	IN_REVIEW|REVIEWED --REJECT--> REJECTED
//
// SUPER_ADMIN passes the role check of every edge.
package lifecycle

import (
	"fmt"
	"strings"

	"eloan-must/internal/core/domain"
)

// Action is a workflow step applied to a loan
type Action string

const (
	ActionBeginReview    Action = "BEGIN_REVIEW"
	ActionCompleteReview Action = "COMPLETE_REVIEW"
	ActionApprove        Action = "APPROVE"
	ActionReject         Action = "REJECT"
	ActionDisburse       Action = "DISBURSE"
)

// Transition error codes
const (
	CodeForbidden     = "FORBIDDEN_TRANSITION"
	CodeConflict      = "INVALID_TRANSITION"
	CodeUnknownAction = "UNKNOWN_ACTION"
)

// Edge is one row of the transition table
type Edge struct {
	Action Action
	From   []domain.LoanStatus
	To     domain.LoanStatus
	Roles  []domain.Role
}

var edges = []Edge{
	{
		Action: ActionBeginReview,
		From:   []domain.LoanStatus{domain.StatusSubmitted},
		To:     domain.StatusInReview,
		Roles:  []domain.Role{domain.RoleMarketing},
	},
	{
		Action: ActionCompleteReview,
		From:   []domain.LoanStatus{domain.StatusInReview},
		To:     domain.StatusReviewed,
		Roles:  []domain.Role{domain.RoleMarketing},
	},
	{
		Action: ActionApprove,
		From:   []domain.LoanStatus{domain.StatusInReview, domain.StatusReviewed},
		To:     domain.StatusApproved,
		Roles:  []domain.Role{domain.RoleBranchManager},
	},
	{
		Action: ActionReject,
		From:   []domain.LoanStatus{domain.StatusInReview, domain.StatusReviewed},
		To:     domain.StatusRejected,
		Roles:  []domain.Role{domain.RoleBranchManager},
	},
	{
		Action: ActionDisburse,
		From:   []domain.LoanStatus{domain.StatusApproved},
		To:     domain.StatusDisbursed,
		Roles:  []domain.Role{domain.RoleBackOffice},
	},
}

var defaultNotes = map[Action]string{
	ActionCompleteReview: "Review selesai, data lengkap",
	ActionApprove:        "Disetujui",
	ActionDisburse:       "Dana telah dicairkan",
}

// TransitionError is returned when a transition is refused
type TransitionError struct {
	Code   string
	Action Action
	From   domain.LoanStatus
	Roles  []domain.Role
}

func (e *TransitionError) Error() string {
	switch e.Code {
	case CodeForbidden:
		return fmt.Sprintf("roles [%s] may not %s a loan", joinRoles(e.Roles), strings.ToLower(string(e.Action)))
	case CodeConflict:
		return fmt.Sprintf("cannot %s a loan in status %s", strings.ToLower(string(e.Action)), e.From)
	default:
		return fmt.Sprintf("unknown action %q", e.Action)
	}
}

// Unwrap maps the code onto the matching domain error
func (e *TransitionError) Unwrap() error {
	switch e.Code {
	case CodeForbidden:
		return domain.ErrForbidden
	case CodeConflict:
		return domain.ErrInvalidTransition
	default:
		return domain.ErrInvalidInput
	}
}

// Edges returns a copy of the transition table
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Lookup finds the edge for an action
func Lookup(action Action) (Edge, bool) {
	for _, e := range edges {
		if e.Action == action {
			return e, true
		}
	}
	return Edge{}, false
}

// Authorize checks that roles may apply action to a loan in status from and
// returns the resulting status. Roles are checked before the status.
func Authorize(roles []domain.Role, from domain.LoanStatus, action Action) (domain.LoanStatus, error) {
	edge, ok := Lookup(action)
	if !ok {
		return from, &TransitionError{Code: CodeUnknownAction, Action: action, From: from, Roles: roles}
	}
	if !edge.permits(roles) {
		return from, &TransitionError{Code: CodeForbidden, Action: action, From: from, Roles: roles}
	}
	if !edge.startsAt(from) {
		return from, &TransitionError{Code: CodeConflict, Action: action, From: from, Roles: roles}
	}
	return edge.To, nil
}

// Walk authorizes a chain of actions starting at from
func Walk(roles []domain.Role, from domain.LoanStatus, actions ...Action) (domain.LoanStatus, error) {
	current := from
	for _, a := range actions {
		next, err := Authorize(roles, current, a)
		if err != nil {
			return from, err
		}
		current = next
	}
	return current, nil
}

// ReviewPath returns the actions a review submission walks from status.
// A SUBMITTED loan is begun and completed in one step.
func ReviewPath(from domain.LoanStatus) []Action {
	if from == domain.StatusSubmitted {
		return []Action{ActionBeginReview, ActionCompleteReview}
	}
	return []Action{ActionCompleteReview}
}

// Can reports whether Authorize would succeed
func Can(roles []domain.Role, status domain.LoanStatus, action Action) bool {
	_, err := Authorize(roles, status, action)
	return err == nil
}

// AvailableActions lists the actions roles may take on a loan in status
func AvailableActions(roles []domain.Role, status domain.LoanStatus) []Action {
	var out []Action
	for _, e := range edges {
		if e.permits(roles) && e.startsAt(status) {
			out = append(out, e.Action)
		}
	}
	return out
}

// RequiresReason reports whether the action needs a rejection reason
func RequiresReason(action Action) bool {
	return action == ActionReject
}

// DefaultNote returns the placeholder note used when none is given
func DefaultNote(action Action) string {
	return defaultNotes[action]
}

// NoteOrDefault trims note and falls back to the action's default
func NoteOrDefault(action Action, note string) string {
	if n := strings.TrimSpace(note); n != "" {
		return n
	}
	return DefaultNote(action)
}

// ComposeRejectionNote joins free-text notes with the rejection reason
func ComposeRejectionNote(notes, reason string) string {
	notes = strings.TrimSpace(notes)
	reason = strings.TrimSpace(reason)
	if notes == "" {
		return reason
	}
	return notes + ". Reason: " + reason
}

// IsTerminal reports whether no further transitions exist for status
func IsTerminal(status domain.LoanStatus) bool {
	switch status {
	case domain.StatusRejected, domain.StatusCompleted, domain.StatusCancelled:
		return true
	}
	return false
}

// HasRole reports whether roles grant role, SUPER_ADMIN granting everything
func HasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role || r == domain.RoleSuperAdmin {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether roles grant at least one of wanted
func HasAnyRole(roles []domain.Role, wanted ...domain.Role) bool {
	for _, w := range wanted {
		if HasRole(roles, w) {
			return true
		}
	}
	return false
}

func (e Edge) permits(roles []domain.Role) bool {
	return HasAnyRole(roles, e.Roles...)
}

func (e Edge) startsAt(status domain.LoanStatus) bool {
	for _, f := range e.From {
		if f == status {
			return true
		}
	}
	return false
}

func joinRoles(roles []domain.Role) string {
	return strings.Join(domain.RoleStrings(roles), ",")
}
