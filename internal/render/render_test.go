package render

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "bad")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInternalError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)

	InternalError(rec, req, logger, "list posts", errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "db down")
	assert.Contains(t, buf.String(), "db down")
	assert.Contains(t, buf.String(), "path=/posts")
}

func TestDecodeObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		keys []string
	}{
		{"object", `{"title":"T","n":1}`, []string{"title", "n"}},
		{"empty object", `{}`, []string{}},
		{"array", `[1,2]`, nil},
		{"null", `null`, nil},
		{"string", `"x"`, nil},
		{"empty", ``, nil},
		{"oversized", `{"content":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(test.body))

			fields, err := DecodeObject(rec, req)
			if test.keys == nil {
				require.ErrorIs(t, err, ErrNotObject)
				return
			}
			require.NoError(t, err)
			assert.Len(t, fields, len(test.keys))
			for _, key := range test.keys {
				assert.Contains(t, fields, key)
			}
		})
	}
}
