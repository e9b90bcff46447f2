// Package session holds the authenticated-user state shared by every CLI
// command: current user, bearer token and the in-flight flag. It owns all
// network calls that change authentication state and keeps the durable
// token slot and the HTTP client's token source in step with its own state.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pakproperty/pakproperty/internal/cli/auth"
	"github.com/pakproperty/pakproperty/internal/cli/client"
)

// Result is the outcome of a session operation. Operations never return raw
// errors; failures carry a display-ready message.
type Result struct {
	Success bool
	Error   string
}

func success() Result {
	return Result{Success: true}
}

func failure(message string) Result {
	return Result{Success: false, Error: message}
}

// Session is the single source of truth for the authenticated user.
//
// Overlapping operations are ordered by a generation counter: every
// operation bumps the generation when it starts, and a response is applied
// only if no later operation started in the meantime. The last request
// wins, never the last response.
type Session struct {
	mu sync.Mutex

	client *client.Client
	tokens auth.TokenStore
	server string
	logger zerolog.Logger

	user       *client.User
	token      string
	loading    bool
	generation uint64
}

// New creates an empty session bound to an API client and token store.
// The client's token source is pointed at this session immediately.
func New(apiClient *client.Client, tokens auth.TokenStore, server string, logger zerolog.Logger) *Session {
	s := &Session{
		client: apiClient,
		tokens: tokens,
		server: server,
		logger: logger,
	}
	apiClient.SetTokenSource(s.currentToken)
	return s
}

// currentToken is consulted by the HTTP client on every request
func (s *Session) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// begin marks an operation in flight and returns its generation. Any
// operation that starts later invalidates this one's response.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = true
	return s.generation
}

// current reports whether gen is still the newest operation. Must be
// called with the mutex held.
func (s *Session) current(gen uint64) bool {
	return gen == s.generation
}

// Initialize restores a persisted token and re-validates it against the
// API. A rejected token is cleared silently; the user just isn't logged in.
func (s *Session) Initialize() {
	token, err := s.tokens.LoadToken(s.server)
	if err != nil || token == "" {
		return
	}

	gen := s.begin()
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.client.Me()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
	if err != nil {
		if s.current(gen) {
			s.logout()
		}
		s.logger.Debug().Err(err).Msg("Stored token rejected")
		return
	}
	if !s.current(gen) {
		return
	}
	s.user = user
}

// Login exchanges credentials for a token and loads the user
func (s *Session) Login(email, password string) Result {
	gen := s.begin()
	resp, err := s.client.Login(email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
	if err != nil {
		return failure(client.ErrorMessage(err, "Login failed"))
	}
	if !s.current(gen) {
		return failure("Superseded by a newer session operation")
	}

	s.applyCredentials(resp.Token, resp.User)
	return success()
}

// Register creates an account, stores the returned token and loads the user
func (s *Session) Register(req client.RegisterRequest) Result {
	gen := s.begin()
	resp, err := s.client.Register(req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
	if err != nil {
		return failure(client.ErrorMessage(err, "Registration failed"))
	}
	if !s.current(gen) {
		return failure("Superseded by a newer session operation")
	}

	s.applyCredentials(resp.Token, resp.User)
	return success()
}

// applyCredentials installs a fresh token and user record and persists the
// token. Must be called with the mutex held.
func (s *Session) applyCredentials(token string, user client.User) {
	s.token = token
	s.user = &user
	if err := s.tokens.SaveToken(s.server, token); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist token")
	}
}

// Logout clears the user, the token and the durable token slot. Safe to
// call when already logged out; it never fails.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Invalidate any in-flight operation so its response is discarded
	s.generation++
	s.loading = false
	s.logout()
}

// logout performs the state reset. Must be called with the mutex held.
func (s *Session) logout() {
	s.user = nil
	s.token = ""
	if err := s.tokens.DeleteToken(s.server); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete persisted token")
	}
}

// UpdateProfile replaces the stored user with the server's updated record
func (s *Session) UpdateProfile(update client.ProfileUpdate) Result {
	gen := s.begin()
	user, err := s.client.UpdateProfile(update)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to update profile"))
	}
	if !s.current(gen) {
		return failure("Superseded by a newer session operation")
	}

	s.user = user
	return success()
}

// ChangePassword replaces the account password; session state is unchanged
func (s *Session) ChangePassword(currentPassword, newPassword string) Result {
	gen := s.begin()
	err := s.client.ChangePassword(currentPassword, newPassword)
	s.finish(gen)
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to change password"))
	}
	return success()
}

// ForgotPassword requests a reset email; session state is unchanged
func (s *Session) ForgotPassword(email string) Result {
	gen := s.begin()
	err := s.client.ForgotPassword(email)
	s.finish(gen)
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to request password reset"))
	}
	return success()
}

// ResetPassword sets a new password with a reset token; state is unchanged
func (s *Session) ResetPassword(resetToken, password string) Result {
	gen := s.begin()
	err := s.client.ResetPassword(resetToken, password)
	s.finish(gen)
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to reset password"))
	}
	return success()
}

// VerifyEmail confirms an email address; a loaded user is marked verified
func (s *Session) VerifyEmail(verifyToken string) Result {
	gen := s.begin()
	err := s.client.VerifyEmail(verifyToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to verify email"))
	}
	if s.current(gen) && s.user != nil {
		s.user.IsVerified = true
	}
	return success()
}

// ResendVerification re-issues the verification email; state is unchanged
func (s *Session) ResendVerification() Result {
	gen := s.begin()
	err := s.client.ResendVerification()
	s.finish(gen)
	if err != nil {
		return failure(client.ErrorMessage(err, "Failed to resend verification email"))
	}
	return success()
}

// finish clears the loading flag if gen is still the newest operation
func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.loading = false
	}
}

// User returns a copy of the current user record, or nil
func (s *Session) User() *client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Client returns the API client bound to this session. Requests made
// through it carry the session's current bearer token.
func (s *Session) Client() *client.Client {
	return s.client
}

// Token returns the current bearer token, empty when unauthenticated
func (s *Session) Token() string {
	return s.currentToken()
}

// Loading reports whether an authentication operation is in flight
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether a user is loaded
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// IsVerified reports whether the loaded user confirmed their email
func (s *Session) IsVerified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsVerified
}

// Role returns the loaded user's role, empty when unauthenticated
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Role flags computed by exact string match against the user's role
func (s *Session) IsAdmin() bool  { return s.Role() == "admin" }
func (s *Session) IsOwner() bool  { return s.Role() == "owner" }
func (s *Session) IsAgent() bool  { return s.Role() == "agent" }
func (s *Session) IsTenant() bool { return s.Role() == "tenant" }
