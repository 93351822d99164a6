package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearldata/pearlctl/internal/pkg/apperrors"
)

func testClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, tokens, zerolog.Nop())
}

func TestListShapes(t *testing.T) {
	type item struct {
		ID int64 `json:"id"`
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"flat envelope", `{"success":true,"data":[{"id":1},{"id":2}]}`, 2},
		{"paginated envelope", `{"success":true,"data":{"content":[{"id":1}],"totalElements":1}}`, 1},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, 3},
		{"null data", `{"success":true,"data":null}`, 0},
		{"empty object data", `{"success":true,"data":{}}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			env, err := client.Get(context.Background(), "/things", nil)
			require.NoError(t, err)

			var items []item
			require.NoError(t, env.List(&items))
			assert.Len(t, items, tt.want)
		})
	}
}

func TestObjectFallsBackToBareBody(t *testing.T) {
	// The login response is the entity itself, not wrapped under data.
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"name":"Ada"}`))
	}, nil)

	env, err := client.Post(context.Background(), "/auth/login", map[string]string{})
	require.NoError(t, err)

	var got struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, env.Object(&got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Ada", got.Name)
}

func TestSideChannelFields(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": "Attendance saved for 2 students",
			"data": [],
			"eventStatus": "COMPLETED",
			"statusTransition": "ONGOING -> COMPLETED",
			"unreadCount": 4,
			"summary": {"ongoingCount": 1}
		}`))
	}, nil)

	env, err := client.Get(context.Background(), "/x", nil)
	require.NoError(t, err)

	assert.Equal(t, "Attendance saved for 2 students", env.Message)
	assert.Equal(t, "COMPLETED", env.EventStatus)
	assert.Equal(t, "ONGOING -> COMPLETED", env.StatusTransition)
	assert.Equal(t, 4, env.UnreadCount)

	var summary struct {
		OngoingCount int `json:"ongoingCount"`
	}
	require.NoError(t, env.DecodeSummary(&summary))
	assert.Equal(t, 1, summary.OngoingCount)
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Invalid phone number"}`, "Invalid phone number"},
		{"error field", http.StatusConflict, `{"error":"Email already registered"}`, "Email already registered"},
		{"message wins over error", http.StatusBadRequest, `{"message":"primary","error":"secondary"}`, "primary"},
		{"plain text body", http.StatusInternalServerError, `upstream exploded`, "upstream exploded"},
		{"object with neither field", http.StatusBadRequest, `{"code":42}`, "fallback text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := client.Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, ErrorMessage(err, "fallback text"))
			assert.Equal(t, tt.status, apperrors.Status(err))
		})
	}
}

func TestTransportErrorUsesFallback(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second, nil, zerolog.Nop())

	_, err := client.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch things", ErrorMessage(err, "Failed to fetch things"))
}

func TestAuthorizationHeaderPerRequest(t *testing.T) {
	token := ""
	var seen []string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}, func() (string, bool) {
		return token, token != ""
	})

	_, err := client.Get(context.Background(), "/x", nil)
	require.NoError(t, err)

	token = "abc"
	_, err = client.Get(context.Background(), "/x", nil)
	require.NoError(t, err)

	token = ""
	_, err = client.Get(context.Background(), "/x", nil)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, "", seen[0])
	assert.Equal(t, "Bearer abc", seen[1])
	assert.Equal(t, "", seen[2])
}

func TestRequestHeaders(t *testing.T) {
	var gotAccept, gotRequestID, gotContentType string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}, nil)

	_, err := client.Post(context.Background(), "/x", map[string]int{"a": 1})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotRequestID)
}

func TestQueryEncoding(t *testing.T) {
	var gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}, nil)

	q := url.Values{}
	q.Set("q", "ada lovelace")
	_, err := client.Get(context.Background(), "/search", q)
	require.NoError(t, err)
	assert.Equal(t, "q=ada+lovelace", gotQuery)
}

func TestRawPreserved(t *testing.T) {
	body := `{"success":true,"data":{"id":1}}`
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}, nil)

	env, err := client.Get(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(env.Raw()))

	var data json.RawMessage = env.Data
	assert.JSONEq(t, `{"id":1}`, string(data))
}
