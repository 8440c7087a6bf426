package server

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// SecurityHeadersMiddleware adds security headers to all responses. The
// preview route is special: it is meant to be framed by the editor page
// (and only by it), executes the author's script, and gets no same-origin
// trust from the sandbox attribute on the editor's iframe.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.URL.Path == "/preview" {
				// Framable only by the editor page on the same origin.
				w.Header().Set("Content-Security-Policy", "frame-ancestors 'self'")
			} else {
				w.Header().Set("X-Frame-Options", "DENY")
				w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits API requests with a token bucket. A single
// local client is the norm, so one shared bucket is enough; it mainly
// guards against runaway editor loops hammering the document endpoint.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	// rate.Limiter is safe for concurrent use.
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
