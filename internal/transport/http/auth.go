package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// TokenVerifier resolves a bearer token to the caller it was issued for.
type TokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}

type callerKey struct{}

// Authenticate rejects requests without a valid bearer token and stores the
// caller identity for the handlers behind it.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "missing bearer token")
				return
			}
			caller, err := tokens.Verify(raw)
			if err != nil || caller.IsZero() {
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func callerFrom(ctx context.Context) domain.Identity {
	caller, _ := ctx.Value(callerKey{}).(domain.Identity)
	return caller
}
