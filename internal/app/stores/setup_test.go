package stores

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pearldata/pearlctl/internal/api"
	"github.com/pearldata/pearlctl/internal/app/session"
	"github.com/pearldata/pearlctl/internal/stub"
)

// Seeded stub credentials.
const (
	adminEmail   = "admin@pearldata.edu"
	adminPass    = "admin123"
	facultyEmail = "faculty@pearldata.edu"
	facultyPass  = "faculty123"
	studentEmail = "student@pearldata.edu"
	studentPass  = "student123"
)

// fixture wires a stub backend to a logged-in session, the way the CLI
// does it.
type fixture struct {
	session *session.Store
	client  *api.Client
}

func newFixture(t *testing.T, email, password string) fixture {
	t.Helper()
	srv := stub.New(stub.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, zerolog.Nop())
	server := httptest.NewServer(srv.Router())
	t.Cleanup(server.Close)

	vault := session.NewFileVault(filepath.Join(t.TempDir(), "session.json"))
	sess := session.New(vault, zerolog.Nop())
	client := api.New(server.URL+"/api", 5*time.Second, sess.Token, zerolog.Nop())
	sess.AttachClient(client)

	if email != "" {
		require.NoError(t, sess.Login(context.Background(), email, password))
	}
	return fixture{session: sess, client: client}
}

// authedAlways satisfies Authenticator for tests that point the store
// at a raw handler instead of the stub.
type authedAlways struct{}

func (authedAlways) IsAuthenticated() bool { return true }

func rawClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return api.New(server.URL, 5*time.Second, nil, zerolog.Nop())
}
