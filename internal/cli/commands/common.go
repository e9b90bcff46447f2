package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pakproperty/pakproperty/internal/cli/auth"
	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/guard"
	"github.com/pakproperty/pakproperty/internal/cli/session"
	"github.com/pakproperty/pakproperty/internal/cli/userconfig"
)

// newSession wires up the API client, keyring token store and session for
// the configured server. The session is restored from the persisted token.
func newSession() (*session.Session, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	apiClient := client.New(cfg.APIURL)
	sess := session.New(apiClient, auth.Default, cfg.APIURL, zerolog.Nop())
	sess.Initialize()
	return sess, nil
}

// sessionState snapshots the session for the guard
func sessionState(sess *session.Session) guard.State {
	return guard.State{
		Loading:       sess.Loading(),
		Authenticated: sess.IsAuthenticated(),
		Verified:      sess.IsVerified(),
		Role:          sess.Role(),
	}
}

// checkGuard evaluates the guard for a command and renders any refusal.
// Returns true when the command may proceed.
func checkGuard(out io.Writer, sess *session.Session, cfg guard.Config, destination string) bool {
	decision := guard.Decide(sessionState(sess), cfg, destination)

	switch decision.Outcome {
	case guard.OutcomeAllow:
		return true
	case guard.OutcomeLoading:
		fmt.Fprintln(out, "Checking authentication...")
	case guard.OutcomeRedirectLogin:
		fmt.Fprintf(out, "You are not logged in. Run 'pakprop login' first")
		if decision.ReturnTo != "" {
			fmt.Fprintf(out, ", then retry '%s'", decision.ReturnTo)
		}
		fmt.Fprintln(out, ".")
	case guard.OutcomeVerificationRequired:
		fmt.Fprintln(out, "Your email address is not verified.")
		fmt.Fprintln(out, "Run 'pakprop resend-verification' to receive a new verification link.")
	case guard.OutcomeAccessDenied:
		fmt.Fprintf(out, "Access denied: requires role %s, your role is %q.\n",
			strings.Join(decision.RequiredRoles, " or "), decision.ActualRole)
	}
	return false
}
