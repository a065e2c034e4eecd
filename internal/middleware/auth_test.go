package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
)

type stubVerifier struct {
	user  models.User
	err   error
	calls int
}

func (s *stubVerifier) Verify(_ context.Context, username, password string) (models.User, error) {
	s.calls++
	if s.err != nil {
		return models.User{}, s.err
	}
	if username != s.user.Username || password != "secret1" {
		return models.User{}, auth.ErrInvalidCredentials
	}
	return s.user, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(user.Username))
	})
}

func TestRequireBasicAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setAuth    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid credentials",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("alice", "secret1") },
			wantStatus: http.StatusOK,
			wantBody:   "alice",
		},
		{
			name:       "wrong password",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("alice", "nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("bob", "secret1") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			setAuth:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			setAuth:    func(r *http.Request) { r.Header.Set("Authorization", "Basic !!!") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			setAuth:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer token") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			verifier := &stubVerifier{user: models.User{Username: "alice"}}
			handler := RequireBasicAuth(verifier, discardLogger())(echoUser())

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			test.setAuth(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, test.wantStatus, rec.Code)
			if test.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"incorrect username or password"}`, rec.Body.String())
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="blog-api"`)
				return
			}
			assert.Equal(t, test.wantBody, rec.Body.String())
		})
	}
}

func TestRequireBasicAuth_VerifiesEveryRequest(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{user: models.User{Username: "alice"}}
	handler := RequireBasicAuth(verifier, discardLogger())(echoUser())

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.SetBasicAuth("alice", "secret1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, verifier.calls)
}

func TestRequireBasicAuth_StoreFailure(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{err: errors.New("db down")}
	handler := RequireBasicAuth(verifier, discardLogger())(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.SetBasicAuth("alice", "secret1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	t.Run("assigns id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
		assert.Contains(t, buf.String(), "status=201")
		assert.Contains(t, buf.String(), "path=/posts")
		assert.Contains(t, buf.String(), "bytes=2")
	})

	t.Run("keeps incoming uuid", func(t *testing.T) {
		const id = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), "request_id="+id)
	})

	t.Run("replaces other ids", func(t *testing.T) {
		for _, incoming := range []string{"abc-123", strings.Repeat("x", 4096), "id\nforged=1"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, incoming)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			assert.NotEqual(t, incoming, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		}
		assert.NotContains(t, buf.String(), "abc-123")
	})
}
