package guard

import (
	"testing"
)

// TestDecide_LoadingBeatsEverything tests that no verdict is reached while
// the session is still restoring, even for a fully forbidden user
func TestDecide_LoadingBeatsEverything(t *testing.T) {
	state := State{
		Loading:       true,
		Authenticated: false,
		Verified:      false,
		Role:          "",
	}
	cfg := Config{
		AllowedRoles:        []string{"admin"},
		RequireVerification: true,
	}

	decision := Decide(state, cfg, "/admin")
	if decision.Outcome != OutcomeLoading {
		t.Fatalf("expected OutcomeLoading, got %s", decision.Outcome)
	}

	// Still loading even when the user would be allowed
	state.Authenticated = true
	state.Verified = true
	state.Role = "admin"
	decision = Decide(state, cfg, "/admin")
	if decision.Outcome != OutcomeLoading {
		t.Fatalf("expected OutcomeLoading for allowed user, got %s", decision.Outcome)
	}
}

// TestDecide_UnauthenticatedRedirectsWithReturnTo tests the login redirect
// and that it carries the original destination
func TestDecide_UnauthenticatedRedirectsWithReturnTo(t *testing.T) {
	state := State{Loading: false, Authenticated: false}
	cfg := Config{
		AllowedRoles:        []string{"admin"},
		RequireVerification: true,
	}

	decision := Decide(state, cfg, "/admin/users")
	if decision.Outcome != OutcomeRedirectLogin {
		t.Fatalf("expected OutcomeRedirectLogin, got %s", decision.Outcome)
	}
	if decision.ReturnTo != "/admin/users" {
		t.Errorf("expected ReturnTo to carry destination, got %q", decision.ReturnTo)
	}
}

// TestDecide_UnauthenticatedBeatsRoleAndVerification tests that the login
// redirect takes priority over role and verification refusals
func TestDecide_UnauthenticatedBeatsRoleAndVerification(t *testing.T) {
	// Unauthenticated user with no role and no verification: the only
	// correct answer is the login redirect, never AccessDenied
	state := State{Authenticated: false, Verified: false, Role: ""}
	cfg := Config{
		AllowedRoles:        []string{"owner", "agent"},
		RequireVerification: true,
	}

	decision := Decide(state, cfg, "/my-listings")
	if decision.Outcome != OutcomeRedirectLogin {
		t.Fatalf("expected OutcomeRedirectLogin, got %s", decision.Outcome)
	}
}

// TestDecide_VerificationBeforeRole tests that an unverified user is asked
// to verify before any role check happens
func TestDecide_VerificationBeforeRole(t *testing.T) {
	state := State{
		Authenticated: true,
		Verified:      false,
		Role:          "tenant", // would also fail the role check
	}
	cfg := Config{
		AllowedRoles:        []string{"owner"},
		RequireVerification: true,
	}

	decision := Decide(state, cfg, "/my-listings")
	if decision.Outcome != OutcomeVerificationRequired {
		t.Fatalf("expected OutcomeVerificationRequired, got %s", decision.Outcome)
	}
}

// TestDecide_ExactRoleMatch tests that role checks are exact string matches
// with no hierarchy: admin does not implicitly pass an owner-only gate
func TestDecide_ExactRoleMatch(t *testing.T) {
	cfg := Config{AllowedRoles: []string{"owner"}}

	cases := []struct {
		role    string
		outcome Outcome
	}{
		{"owner", OutcomeAllow},
		{"admin", OutcomeAccessDenied},
		{"agent", OutcomeAccessDenied},
		{"tenant", OutcomeAccessDenied},
		{"", OutcomeAccessDenied},
		{"Owner", OutcomeAccessDenied}, // case matters
	}

	for _, tc := range cases {
		state := State{Authenticated: true, Verified: true, Role: tc.role}
		decision := Decide(state, cfg, "/my-listings")
		if decision.Outcome != tc.outcome {
			t.Errorf("role %q: expected %s, got %s", tc.role, tc.outcome, decision.Outcome)
		}
	}
}

// TestDecide_AccessDeniedDetails tests that the refusal names the required
// roles and the user's actual role
func TestDecide_AccessDeniedDetails(t *testing.T) {
	state := State{Authenticated: true, Verified: true, Role: "tenant"}
	cfg := Config{AllowedRoles: []string{"owner", "agent"}}

	decision := Decide(state, cfg, "/my-listings")
	if decision.Outcome != OutcomeAccessDenied {
		t.Fatalf("expected OutcomeAccessDenied, got %s", decision.Outcome)
	}
	if len(decision.RequiredRoles) != 2 || decision.RequiredRoles[0] != "owner" {
		t.Errorf("expected required roles [owner agent], got %v", decision.RequiredRoles)
	}
	if decision.ActualRole != "tenant" {
		t.Errorf("expected actual role tenant, got %q", decision.ActualRole)
	}
}

// TestDecide_EmptyRoleListAdmitsAnyAuthenticated tests that a config with
// no role restriction admits every authenticated user
func TestDecide_EmptyRoleListAdmitsAnyAuthenticated(t *testing.T) {
	cfg := Config{} // no roles, no verification requirement

	for _, role := range []string{"tenant", "owner", "agent", "admin", ""} {
		state := State{Authenticated: true, Verified: false, Role: role}
		decision := Decide(state, cfg, "/whoami")
		if decision.Outcome != OutcomeAllow {
			t.Errorf("role %q: expected OutcomeAllow, got %s", role, decision.Outcome)
		}
	}
}

// TestDecide_NoVerificationRequirement tests that unverified users pass
// when the destination does not require verification
func TestDecide_NoVerificationRequirement(t *testing.T) {
	state := State{Authenticated: true, Verified: false, Role: "tenant"}
	cfg := Config{AllowedRoles: []string{"tenant"}}

	decision := Decide(state, cfg, "/saved")
	if decision.Outcome != OutcomeAllow {
		t.Fatalf("expected OutcomeAllow, got %s", decision.Outcome)
	}
}
