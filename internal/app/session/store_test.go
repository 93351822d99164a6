package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/models"
	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
	"github.com/pearldata/pearlctl/internal/stub"
)

func tempVault(t *testing.T) (Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewFileVault(path), path
}

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := stub.New(stub.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, zerolog.Nop())
	server := httptest.NewServer(srv.Router())
	t.Cleanup(server.Close)
	return server
}

func wiredStore(t *testing.T, baseURL string) *Store {
	t.Helper()
	vault, _ := tempVault(t)
	store := New(vault, zerolog.Nop())
	client := api.New(baseURL+"/api", 5*time.Second, store.Token, zerolog.Nop())
	store.AttachClient(client)
	return store
}

func TestVaultRoundTrip(t *testing.T) {
	vault, _ := tempVault(t)

	token, user, err := vault.Read()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, user)

	require.NoError(t, vault.Write("tok-1", `{"id":1}`))
	token, user, err = vault.Read()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, `{"id":1}`, user)

	require.NoError(t, vault.Clear())
	token, _, err = vault.Read()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an already-empty vault is fine.
	require.NoError(t, vault.Clear())
}

func TestRehydrate(t *testing.T) {
	vault, _ := tempVault(t)
	require.NoError(t, vault.Write("tok-9", `{"id":9,"name":"Ada","role":"ADMIN"}`))

	store := New(vault, zerolog.Nop())
	assert.True(t, store.IsAuthenticated())

	sess, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, int64(9), sess.ID)
	assert.Equal(t, models.RoleAdmin, sess.Role)
	assert.Equal(t, "tok-9", sess.Token)
}

func TestRehydrateCorruptVault(t *testing.T) {
	vault, path := tempVault(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"x","user":"not json`), 0o600))

	store := New(vault, zerolog.Nop())
	assert.False(t, store.IsAuthenticated())

	// The corrupt file was cleared, not left to fail again.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoginSuccess(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	require.NoError(t, store.Login(context.Background(), "admin@pearldata.edu", "admin123"))

	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())

	role, ok := store.CurrentRole()
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)

	token, ok := store.Token()
	require.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestLoginWithPhone(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	require.NoError(t, store.Login(context.Background(), "+919876543212", "student123"))
	role, _ := store.CurrentRole()
	assert.Equal(t, models.RoleStudent, role)
}

func TestLoginFailure(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	err := store.Login(context.Background(), "admin@pearldata.edu", "wrong")
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "Invalid credentials", store.Err())

	store.ClearError()
	assert.Empty(t, store.Err())
}

func TestLoginPersistsAcrossRestarts(t *testing.T) {
	server := stubServer(t)
	vault, _ := tempVault(t)

	first := New(vault, zerolog.Nop())
	client := api.New(server.URL+"/api", 5*time.Second, first.Token, zerolog.Nop())
	first.AttachClient(client)
	require.NoError(t, first.Login(context.Background(), "admin@pearldata.edu", "admin123"))
	firstToken, _ := first.Token()

	// A fresh store over the same vault picks the session up.
	second := New(vault, zerolog.Nop())
	assert.True(t, second.IsAuthenticated())
	secondToken, _ := second.Token()
	assert.Equal(t, firstToken, secondToken)
}

func TestTokenAttachedToSubsequentRequests(t *testing.T) {
	var authHeaders []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		if r.URL.Path == "/api/auth/login" {
			_, _ = w.Write([]byte(`{"id":1,"name":"Ada","role":"ADMIN","token":"abc"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer backend.Close()

	store := wiredStore(t, backend.URL)
	client := api.New(backend.URL+"/api", 5*time.Second, store.Token, zerolog.Nop())
	store.AttachClient(client)

	require.NoError(t, store.Login(context.Background(), "a@b.c", "secret"))
	_, err := client.Get(context.Background(), "/anything", nil)
	require.NoError(t, err)

	require.Len(t, authHeaders, 2)
	assert.Equal(t, "", authHeaders[0])
	assert.Equal(t, "Bearer abc", authHeaders[1])
}

func TestSignupDoesNotLogIn(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	err := store.Signup(context.Background(), models.SignupRequest{
		Name:        "New Student",
		Email:       "new@pearldata.edu",
		Password:    "secret1",
		PhoneNumber: "+919876500000",
	})
	require.NoError(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Err())
}

func TestSignupValidationError(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	err := store.Signup(context.Background(), models.SignupRequest{
		Name:        "New Student",
		Email:       "short@pearldata.edu",
		Password:    "12345",
		PhoneNumber: "+919876500001",
	})
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 6 characters", store.Err())
}

func TestSignupRejectsBadFieldsBeforeNetwork(t *testing.T) {
	var requests int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	store := wiredStore(t, backend.URL)

	cases := []struct {
		name string
		req  models.SignupRequest
		msg  string
	}{
		{
			name: "short password",
			req:  models.SignupRequest{Name: "A", Email: "a@b.c", Password: "123", PhoneNumber: "+919876500002"},
			msg:  "Password must be at least 6 characters",
		},
		{
			name: "bad phone",
			req:  models.SignupRequest{Name: "A", Email: "a@b.c", Password: "secret1", PhoneNumber: "12345"},
			msg:  "Please enter a valid Indian mobile number starting with +91",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Signup(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
	assert.Zero(t, requests)
}

func TestLogoutIdempotent(t *testing.T) {
	server := stubServer(t)
	store := wiredStore(t, server.URL)

	require.NoError(t, store.Login(context.Background(), "admin@pearldata.edu", "admin123"))
	store.Logout()
	assert.False(t, store.IsAuthenticated())
	_, ok := store.Token()
	assert.False(t, ok)

	store.Logout()
	assert.False(t, store.IsAuthenticated())
}
