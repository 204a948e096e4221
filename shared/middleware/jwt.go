package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/shared/auth"
)

type contextKey struct{}

// AdminClaimsKey is the context key under which the verified claims are
// stored.
var AdminClaimsKey = contextKey{}

// NewJWTMiddleware rejects requests without a valid bearer token. Paths in
// exemptPaths are passed through untouched.
func NewJWTMiddleware(
	logger *zerolog.Logger,
	jwtAuth *auth.JWTAuthenticator,
	exemptPaths []string,
) func(http.Handler) http.Handler {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, path := range exemptPaths {
		exempt[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := extractAndValidateJWT(r, jwtAuth)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected admin request")
				unauthorized(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaimsFromContext returns the claims placed by the middleware.
func AdminClaimsFromContext(ctx context.Context) (*auth.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminClaimsKey).(*auth.AdminClaims)
	return claims, ok
}

func extractAndValidateJWT(r *http.Request, jwtAuth *auth.JWTAuthenticator) (*auth.AdminClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, errors.New("invalid authorization header format")
	}

	return jwtAuth.ValidateToken(token)
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := "invalid or expired token"
	if !errors.Is(err, auth.ErrInvalidToken) {
		msg = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
