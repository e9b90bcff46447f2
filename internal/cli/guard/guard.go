// Package guard decides whether a protected view may be shown for the
// current session. The decision is a pure function of session state and
// per-route configuration; it holds no state of its own.
package guard

// Outcome is what the caller should render
type Outcome int

const (
	// OutcomeLoading means an auth check is still in flight; show a
	// placeholder rather than bouncing the user to login prematurely
	OutcomeLoading Outcome = iota
	// OutcomeRedirectLogin means the user must authenticate first
	OutcomeRedirectLogin
	// OutcomeVerificationRequired means the user must confirm their email
	OutcomeVerificationRequired
	// OutcomeAccessDenied means the user's role is not allowed here
	OutcomeAccessDenied
	// OutcomeAllow means the guarded content may be shown
	OutcomeAllow
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirectLogin:
		return "redirect-login"
	case OutcomeVerificationRequired:
		return "verification-required"
	case OutcomeAccessDenied:
		return "access-denied"
	case OutcomeAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session consulted by the guard
type State struct {
	Loading       bool
	Authenticated bool
	Verified      bool
	Role          string
}

// Config is the per-route guard configuration
type Config struct {
	// AllowedRoles is the set of admitted roles; empty admits any
	// authenticated user
	AllowedRoles []string
	// RequireVerification additionally demands a confirmed email
	RequireVerification bool
}

// Decision is the guard's verdict plus the context needed to render it
type Decision struct {
	Outcome Outcome
	// ReturnTo carries the originally requested destination through the
	// login redirect so the user lands back where they were headed
	ReturnTo string
	// RequiredRoles and ActualRole are set for OutcomeAccessDenied
	RequiredRoles []string
	ActualRole    string
}

// Decide evaluates the guard checks in fixed order; the first failing
// check determines the outcome.
func Decide(state State, cfg Config, destination string) Decision {
	if state.Loading {
		return Decision{Outcome: OutcomeLoading}
	}

	if !state.Authenticated {
		return Decision{Outcome: OutcomeRedirectLogin, ReturnTo: destination}
	}

	if cfg.RequireVerification && !state.Verified {
		return Decision{Outcome: OutcomeVerificationRequired}
	}

	if len(cfg.AllowedRoles) > 0 {
		allowed := false
		for _, role := range cfg.AllowedRoles {
			if state.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return Decision{
				Outcome:       OutcomeAccessDenied,
				RequiredRoles: cfg.AllowedRoles,
				ActualRole:    state.Role,
			}
		}
	}

	return Decision{Outcome: OutcomeAllow}
}
