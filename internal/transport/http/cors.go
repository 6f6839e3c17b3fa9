package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	corsMaxAge     = 10 * time.Minute
	allowedHeaders = "Authorization, Content-Type"
)

var allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}

// originPolicy is the parsed CORS allow-list. "*" admits every origin.
type originPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// false when origin is not admitted.
func (p originPolicy) allowOrigin(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

func methodAllowed(method string) bool {
	for _, m := range allowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// CORS adds CORS headers for a configured allow-list. Preflights from origins
// outside the list, or for methods the API does not serve, are refused with
// 403.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)
	methods := strings.Join(allowedMethods, ", ")
	maxAge := strconv.Itoa(int(corsMaxAge.Seconds()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		requested := r.Header.Get("Access-Control-Request-Method")
		preflight := r.Method == http.MethodOptions && requested != ""

		allow, ok := policy.allowOrigin(origin)
		if !ok || (preflight && !methodAllowed(requested)) {
			if preflight {
				writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", allow)
		if allow != "*" {
			w.Header().Add("Vary", "Origin")
		}
		if !preflight {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		w.Header().Set("Access-Control-Max-Age", maxAge)
		w.WriteHeader(http.StatusNoContent)
	})
}
