package session

import (
	"net/url"
	"time"
)

// LoginPath is where unauthenticated callers are sent
const LoginPath = "/login"

// Outcome of an access check
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "deny"
	}
}

// Decision is the result of Gate
type Decision struct {
	Outcome      Outcome
	RedirectTo   string
	ClearSession bool
	Reason       string
}

// Gate decides whether cred may open the requested destination.
// Missing or expired credentials are sent to login with a returnUrl.
// Credentials without an admin role are denied and cleared.
func Gate(cred *Credential, now time.Time, requested string) Decision {
	if cred.Empty() {
		return Decision{
			Outcome:    Redirect,
			RedirectTo: loginURL("returnUrl", requested),
			Reason:     "not authenticated",
		}
	}
	if cred.Expired(now) {
		return Decision{
			Outcome:      Redirect,
			RedirectTo:   loginURL("returnUrl", requested),
			ClearSession: true,
			Reason:       "session expired",
		}
	}
	if !HasAdminRole(cred.Roles) {
		return Decision{
			Outcome:      Deny,
			RedirectTo:   loginURL("error", "access_denied"),
			ClearSession: true,
			Reason:       "access denied",
		}
	}
	return Decision{Outcome: Allow}
}

func loginURL(key, value string) string {
	if value == "" {
		return LoginPath
	}
	q := url.Values{}
	q.Set(key, value)
	return LoginPath + "?" + q.Encode()
}
