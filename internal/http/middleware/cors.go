package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedHeaders = "Content-Type, X-Request-Id"
	corsAllowedMethods = "GET, POST, OPTIONS"
	corsMaxAge         = "600"
)

// originPolicy is the parsed form of CORS_ALLOWED_ORIGINS.
type originPolicy struct {
	wildcard bool
	origins  map[string]struct{}
}

func newOriginPolicy(allowedOrigins []string) originPolicy {
	policy := originPolicy{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, raw := range allowedOrigins {
		switch origin := strings.TrimSpace(raw); origin {
		case "":
		case "*":
			policy.wildcard = true
		default:
			policy.origins[origin] = struct{}{}
		}
	}
	return policy
}

func (p originPolicy) enabled() bool {
	return p.wildcard || len(p.origins) > 0
}

func (p originPolicy) permits(origin string) bool {
	if origin == "" {
		return false
	}
	if p.wildcard {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}

// CORS lets the marketing site call the API from its own origin.
// "*" echoes any Origin back. An empty list disables cross-origin access.
// Responses vary on Origin whenever a policy is configured, so shared caches
// keep allowed and refused origins apart.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			if policy.enabled() {
				header.Add("Vary", "Origin")
			}
			if origin := strings.TrimSpace(r.Header.Get("Origin")); policy.permits(origin) {
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				header.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if isPreflight(r) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
