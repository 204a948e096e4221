package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/identity-docstore/shared/auth"
)

func newTestHandler(t *testing.T) (http.Handler, *auth.JWTAuthenticator) {
	t.Helper()

	logger := zerolog.Nop()
	jwtAuth := auth.NewJWTAuthenticator("secret", "aud", "iss", time.Hour)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminClaimsFromContext(r.Context())
		if ok {
			_, _ = w.Write([]byte(claims.UserName))
		}
	})

	return NewJWTMiddleware(&logger, jwtAuth, []string{"/token"})(next), jwtAuth
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	h, jwtAuth := newTestHandler(t)
	token, _, err := jwtAuth.GenerateToken("id", "root")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", rec.Body.String())
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"bad token", "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/roles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestJWTMiddleware_ExemptPath(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/token", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
