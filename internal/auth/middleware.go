package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type claimsKey struct{}

// FailureFunc writes the response for a rejected request.
type FailureFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates requests and stores the claims in the context.
type Middleware struct {
	verifier  *Verifier
	onFailure FailureFunc
}

// NewMiddleware creates a middleware around verifier.
func NewMiddleware(verifier *Verifier, onFailure FailureFunc) *Middleware {
	if onFailure == nil {
		onFailure = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{verifier: verifier, onFailure: onFailure}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			m.onFailure(w, r, fmt.Errorf("%w: %v", ErrUnauthenticated, err))
			return
		}

		claims, err := m.verifier.VerifyToken(token)
		if err != nil {
			m.onFailure(w, r, fmt.Errorf("%w: %v", ErrUnauthenticated, err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Authorize checks that the claims in ctx grant scope. A context without
// claims is authorized, since authentication is then disabled.
func Authorize(ctx context.Context, scope string) error {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	if !ok {
		return nil
	}
	if !claims.HasScope(scope) {
		return fmt.Errorf("%w: scope %s required", ErrForbidden, scope)
	}
	return nil
}

// WithClaims returns a context carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireAuth, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// Subject returns the authenticated subject, or "" when unauthenticated.
func Subject(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}
