// Package guard decides whether a session may enter a role-protected
// area. Routing itself lives with the caller; the guard only answers
// allow, send to login, or send to the unauthorized page.
package guard

import "github.com/pearldata/pearlctl/internal/app/models"

// Decision is the guard's verdict for an access attempt.
type Decision int

const (
	// Allow grants entry.
	Allow Decision = iota
	// RedirectLogin means there is no authenticated session.
	RedirectLogin
	// RedirectUnauthorized means the session's role does not match.
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect:login"
	case RedirectUnauthorized:
		return "redirect:unauthorized"
	default:
		return "unknown"
	}
}

// Subject is the slice of session state the guard needs.
type Subject interface {
	IsAuthenticated() bool
	CurrentRole() (models.Role, bool)
}

// Check evaluates the subject against the role an area requires. An
// empty required role means the area only needs authentication.
// Authentication is checked before role so an expired session lands on
// login rather than the unauthorized page.
func Check(subject Subject, required models.Role) Decision {
	if !subject.IsAuthenticated() {
		return RedirectLogin
	}
	if required == "" {
		return Allow
	}
	if role, ok := subject.CurrentRole(); !ok || role != required {
		return RedirectUnauthorized
	}
	return Allow
}
