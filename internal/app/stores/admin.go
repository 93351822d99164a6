package stores

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
	"github.com/pearldata/pearlctl/internal/pkg/validation"
)

// AdminStore owns the user collection and the admin dashboard stats.
type AdminStore struct {
	mu       sync.Mutex
	client   *api.Client
	auth     Authenticator
	logger   zerolog.Logger
	users    collection[models.User]
	usersSeq fetchToken
	stats    *models.AdminStats
	loading  bool
	errMsg   string
}

// NewAdminStore creates the store with its dependencies injected.
func NewAdminStore(client *api.Client, auth Authenticator, logger zerolog.Logger) *AdminStore {
	return &AdminStore{
		client: client,
		auth:   auth,
		logger: logger,
		users:  newCollection(userID),
	}
}

// Users returns a copy of the cached user list.
func (s *AdminStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.snapshot()
}

// Stats returns the cached dashboard stats, if fetched.
func (s *AdminStore) Stats() *models.AdminStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	stats := *s.stats
	return &stats
}

// Loading reports whether a call is in flight.
func (s *AdminStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current error message, if any.
func (s *AdminStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError resets the error message.
func (s *AdminStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

func (s *AdminStore) beginFetch(t *fetchToken) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.auth.IsAuthenticated() {
		s.errMsg = errNotAuthenticated
		return 0, false
	}
	s.loading = true
	s.errMsg = ""
	return t.next(), true
}

func (s *AdminStore) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.auth.IsAuthenticated() {
		s.errMsg = errNotAuthenticated
		return apperrors.NewCustomError(apperrors.ErrNotAuthenticated, errNotAuthenticated)
	}
	s.loading = true
	s.errMsg = ""
	return nil
}

// fail records the error and re-returns it so a form can show it inline.
func (s *AdminStore) fail(err error, fallback string) error {
	msg := api.ErrorMessage(err, fallback)
	s.mu.Lock()
	s.loading = false
	s.errMsg = msg
	s.mu.Unlock()
	return apperrors.NewCustomError(err, msg)
}

// FetchUsers replaces the user cache with the server's result set. The
// endpoint answers either a flat list or a paginated envelope; both are
// normalized. Errors are recorded in store state, not returned.
func (s *AdminStore) FetchUsers(ctx context.Context) {
	seq, ok := s.beginFetch(&s.usersSeq)
	if !ok {
		return
	}

	env, err := s.client.Get(ctx, "/admin/users", nil)
	var users []models.User
	if err == nil {
		err = env.List(&users)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usersSeq.stale(seq) {
		// A newer fetch owns the cache now
		return
	}
	s.loading = false
	if err != nil {
		s.errMsg = api.ErrorMessage(err, "Failed to fetch users")
		return
	}
	s.users.replace(users)
}

func validateUser(req models.CreateUserRequest, role models.Role) error {
	if req.Password != "" && !validation.Password(req.Password) {
		return apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}
	if !validation.Phone(req.PhoneNumber) {
		return apperrors.NewValidationError("Please enter a valid Indian mobile number starting with +91")
	}
	if role == models.RoleStudent && req.StudentID != "" && !validation.StudentID(req.StudentID) {
		return apperrors.NewValidationError("Student ID must be 5-20 characters")
	}
	return nil
}

// CreateUser posts a new user and prepends the server's representation
// to the cache once confirmed.
func (s *AdminStore) CreateUser(ctx context.Context, req models.CreateUserRequest) error {
	if err := validateUser(req, req.Role); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}

	env, err := s.client.Post(ctx, "/admin/users", req)
	if err != nil {
		return s.fail(err, "Failed to create user")
	}
	var user models.User
	if err := env.Object(&user); err != nil {
		return s.fail(err, "Failed to create user")
	}

	s.mu.Lock()
	s.users.prepend(user)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// CreateUserWithRole posts to the role-scoped creation endpoint
// (/admin/users/student, /faculty or /admin).
func (s *AdminStore) CreateUserWithRole(ctx context.Context, req models.CreateUserRequest, role models.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("Unknown role")
	}
	if err := validateUser(req, role); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}

	path := "/admin/users/" + strings.ToLower(string(role))
	env, err := s.client.Post(ctx, path, req)
	if err != nil {
		return s.fail(err, "Failed to create user")
	}
	var out struct {
		User models.User `json:"user"`
	}
	if err := env.Object(&out); err != nil {
		return s.fail(err, "Failed to create user")
	}

	s.mu.Lock()
	s.users.prepend(out.User)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// UpdateUser replaces the cached entity with the server's returned
// representation after confirmation.
func (s *AdminStore) UpdateUser(ctx context.Context, id int64, req models.CreateUserRequest) error {
	if err := validateUser(req, req.Role); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}

	env, err := s.client.Put(ctx, fmt.Sprintf("/admin/users/%d", id), req)
	if err != nil {
		return s.fail(err, "Failed to update user")
	}
	var user models.User
	if err := env.Object(&user); err != nil {
		return s.fail(err, "Failed to update user")
	}

	s.mu.Lock()
	s.users.update(user)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// DeleteUser removes the entity from the cache after the server
// confirms the deletion.
func (s *AdminStore) DeleteUser(ctx context.Context, id int64) error {
	if err := s.begin(); err != nil {
		return err
	}

	if _, err := s.client.Delete(ctx, fmt.Sprintf("/admin/users/%d", id)); err != nil {
		return s.fail(err, "Failed to delete user")
	}

	s.mu.Lock()
	s.users.remove(id)
	s.loading = false
	s.mu.Unlock()
	return nil
}

// GetUser is read-through: it never touches the cache. Returns nil on
// failure after recording the error.
func (s *AdminStore) GetUser(ctx context.Context, id int64) *models.User {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	env, err := s.client.Get(ctx, fmt.Sprintf("/admin/users/%d", id), nil)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch user"))
		return nil
	}
	var user models.User
	if err := env.Object(&user); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch user"))
		return nil
	}
	return &user
}

// SearchUsers is read-through: a filtered list view keeps the
// unfiltered cache underneath. Returns an empty slice on failure.
func (s *AdminStore) SearchUsers(ctx context.Context, query string) []models.User {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	q := url.Values{}
	q.Set("q", query)
	env, err := s.client.Get(ctx, "/admin/users/search", q)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to search users"))
		return nil
	}
	var users []models.User
	if err := env.List(&users); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to search users"))
		return nil
	}
	return users
}

// FetchDashboardStats fetches and caches the admin counters.
func (s *AdminStore) FetchDashboardStats(ctx context.Context) *models.AdminStats {
	if !s.auth.IsAuthenticated() {
		s.setErr(errNotAuthenticated)
		return nil
	}
	env, err := s.client.Get(ctx, "/admin/dashboard-stats", nil)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch dashboard stats"))
		return nil
	}
	var stats models.AdminStats
	if err := env.Object(&stats); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch dashboard stats"))
		return nil
	}
	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	out := stats
	return &out
}

func (s *AdminStore) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}
