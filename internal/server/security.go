package server

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig holds the response hardening and request size limits.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers and answers preflights.
	EnableCORS bool
	// AllowedOrigins lists the origins echoed back; "*" allows any.
	AllowedOrigins []string
	AllowedMethods []string
	// MaxLimit is the largest limit accepted by /primes.
	MaxLimit uint64
	// MaxDigits is the largest operand length accepted by /arith.
	MaxDigits int
}

// DefaultSecurityConfig allows read-only cross-origin use from anywhere and
// caps sieves at ten million.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxLimit:       10_000_000,
		MaxDigits:      10_000,
	}
}

// hardeningHeaders are set on every response. The API serves JSON only, so
// nothing may be framed or loaded from it.
var hardeningHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or ""
// when origin is not allowed.
func (c SecurityConfig) allowedOrigin(origin string) string {
	if slices.Contains(c.AllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// SecurityMiddleware sets the hardening headers, applies CORS and answers
// preflight requests with 204.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range hardeningHeaders {
			h.Set(kv[0], kv[1])
		}
		if !config.EnableCORS {
			next(w, r)
			return
		}

		if allow := config.allowedOrigin(r.Header.Get("Origin")); allow != "" {
			h.Set("Access-Control-Allow-Origin", allow)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			h.Set("Access-Control-Max-Age", "86400")
			if allow != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
