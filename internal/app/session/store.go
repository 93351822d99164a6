// Package session holds the authenticated identity and its lifecycle:
// Unauthenticated → (login success) → Authenticated → (logout) →
// Unauthenticated. There is no client-side token expiry; a stale token
// surfaces as a server rejection on the next call.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
	"github.com/pearldata/pearlctl/internal/pkg/validation"
)

// Store owns the session state. Domain stores read it through Token and
// IsAuthenticated but never mutate it.
type Store struct {
	mu      sync.Mutex
	client  *api.Client
	vault   Vault
	current *models.Session
	loading bool
	errMsg  string
	logger  zerolog.Logger
}

// New creates the store and rehydrates any previously persisted session.
// A corrupt vault entry is treated as "no session" and cleared rather
// than failing startup.
func New(vault Vault, logger zerolog.Logger) *Store {
	s := &Store{
		vault:  vault,
		logger: logger,
	}
	s.rehydrate()
	return s
}

// AttachClient wires the API client after construction; the client's
// token source reads back from this store, so the two cannot be built
// in one step.
func (s *Store) AttachClient(client *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *Store) rehydrate() {
	token, userJSON, err := s.vault.Read()
	if err != nil || token == "" || userJSON == "" {
		if err != nil {
			s.logger.Warn().Err(err).Msg("session vault unreadable, starting unauthenticated")
			_ = s.vault.Clear()
		}
		return
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(userJSON), &sess); err != nil {
		// Corrupted slot: clear it instead of crashing
		s.logger.Warn().Err(err).Msg("stored session corrupt, clearing vault")
		_ = s.vault.Clear()
		return
	}
	sess.Token = token
	s.current = &sess
	s.logger.Debug().Str("role", string(sess.Role)).Msg("session rehydrated")
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Token == "" {
		return "", false
	}
	return s.current.Token, true
}

// Current returns a copy of the session, if authenticated.
func (s *Store) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Token == "" {
		return models.Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session with a non-empty token is held.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// CurrentRole returns the session role, if authenticated.
func (s *Store) CurrentRole() (models.Role, bool) {
	sess, ok := s.Current()
	if !ok {
		return "", false
	}
	return sess.Role, true
}

// Loading reports whether a login or signup call is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last auth error message, if any.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError resets the error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Login posts credentials and, on success, persists the session and
// makes the token available to every subsequent call. Failures clear
// any partial state and are never retried automatically.
func (s *Store) Login(ctx context.Context, emailOrPhone, password string) error {
	s.mu.Lock()
	client := s.client
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	env, err := client.Post(ctx, "/auth/login", models.LoginRequest{
		EmailOrPhone: emailOrPhone,
		Password:     password,
	})
	if err != nil {
		return s.failLogin(err)
	}

	var sess models.Session
	if err := env.Object(&sess); err != nil {
		return s.failLogin(err)
	}
	if sess.Token == "" {
		return s.failLogin(apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Login failed"))
	}

	// Persist the user record without the token; the token gets its own slot
	userCopy := sess
	userCopy.Token = ""
	userJSON, err := json.Marshal(userCopy)
	if err != nil {
		return s.failLogin(err)
	}
	if err := s.vault.Write(sess.Token, string(userJSON)); err != nil {
		return s.failLogin(err)
	}

	s.mu.Lock()
	s.current = &sess
	s.loading = false
	s.mu.Unlock()
	s.logger.Info().Str("role", string(sess.Role)).Msg("logged in")
	return nil
}

func validateSignup(req models.SignupRequest) error {
	if !validation.Password(req.Password) {
		return apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}
	if !validation.Phone(req.PhoneNumber) {
		return apperrors.NewValidationError("Please enter a valid Indian mobile number starting with +91")
	}
	return nil
}

func (s *Store) failLogin(err error) error {
	msg := api.ErrorMessage(err, "Login failed")
	s.mu.Lock()
	s.current = nil
	s.loading = false
	s.errMsg = msg
	s.mu.Unlock()
	_ = s.vault.Clear()
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, msg)
}

// Signup posts a registration. Field checks run before any network
// call. It never auto-logs-in; only the loading flag and error message
// change.
func (s *Store) Signup(ctx context.Context, req models.SignupRequest) error {
	if err := validateSignup(req); err != nil {
		s.mu.Lock()
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	client := s.client
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	_, err := client.Post(ctx, "/auth/signup", req)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Signup failed")
	}
	s.mu.Unlock()

	if err != nil {
		return apperrors.NewCustomError(err, api.ErrorMessage(err, "Signup failed"))
	}
	return nil
}

// Logout clears the vault and the in-memory session. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = nil
	s.errMsg = ""
	s.mu.Unlock()
	_ = s.vault.Clear()
	s.logger.Info().Msg("logged out")
}
