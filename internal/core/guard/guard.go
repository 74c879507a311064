// Package guard decides whether a console view may be rendered for a session.
//
// Decide is pure: the caller performs any navigation it asks for.
package guard

import "github.com/webhub/admin-console/internal/core/domain"

const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// Requirements are the access flags of a view. The zero value requires
// authentication only.
type Requirements struct {
	RequireAdmin      bool
	RequireSuperAdmin bool
	// GuestOnly views send signed-in users to the landing page.
	GuestOnly bool
	// Public views render for every session, even a loading one.
	Public bool
}

// AllowsAnonymous reports whether the view renders without a user.
func (r Requirements) AllowsAnonymous() bool { return r.GuestOnly || r.Public }

// Outcome is the kind of decision taken for a view.
type Outcome string

const (
	OutcomeLoading  Outcome = "loading"
	OutcomeRender   Outcome = "render"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is the result of evaluating a session against requirements.
// Target is set only for OutcomeRedirect.
type Decision struct {
	Outcome Outcome
	Target  string
	Reason  string
}

// Render reports whether the wrapped view may be shown.
func (d Decision) Render() bool { return d.Outcome == OutcomeRender }

// Decide evaluates the checks in order: loading, authentication, super admin,
// admin. A loading session yields no redirect. Public views skip every check;
// guest-only views stop after loading.
func Decide(s domain.Session, req Requirements) Decision {
	if req.Public {
		return Decision{Outcome: OutcomeRender}
	}
	switch {
	case s.Loading:
		return Decision{Outcome: OutcomeLoading}
	case req.GuestOnly && s.IsAuthenticated():
		return Decision{Outcome: OutcomeRedirect, Target: LandingPath, Reason: "already_authenticated"}
	case req.GuestOnly:
		return Decision{Outcome: OutcomeRender}
	case !s.IsAuthenticated():
		return Decision{Outcome: OutcomeRedirect, Target: LoginPath, Reason: "unauthenticated"}
	case req.RequireSuperAdmin && !domain.IsSuperAdmin(s.User):
		return Decision{Outcome: OutcomeRedirect, Target: LandingPath, Reason: "super_admin_required"}
	case req.RequireAdmin && !domain.IsAdmin(s.User):
		return Decision{Outcome: OutcomeRedirect, Target: LandingPath, Reason: "admin_required"}
	}
	return Decision{Outcome: OutcomeRender}
}
