package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// securityHeaders are sent with every response. The API only returns JSON,
// so the content policy forbids everything.
var securityHeaders = map[string]string{
	"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "no-referrer",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Cache-Control":                "no-store",
}

// addMiddleware wraps the router. Outermost first: logging, panic
// recovery, security headers and origin checks, rate limiting, body limit.
func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	handler = s.limitBody(handler)
	if s.limiter != nil {
		handler = RateLimitMiddleware(s.limiter)(handler)
	}
	handler = s.securityMiddleware(handler)
	handler = s.recoverPanics(handler)
	return s.logRequests(handler)
}

func (s *Server) securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}

		origin := r.Header.Get("Origin")
		allowed := s.isAllowedOrigin(r)
		if origin != "" && allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Browsers attach Origin to cross-site POSTs; refuse those unless
		// configured. Clients without an Origin header are not browsers.
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !allowed {
			s.logger.Warn(r.Context(), nil, "Rejected cross-origin request",
				"origin", origin,
				"path", r.URL.Path,
				"client_ip", getClientIP(r))
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "origin not allowed", Type: "forbidden"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAllowedOrigin reports whether the request's Origin is absent, the
// server itself, or matches one of the configured host patterns.
func (s *Server) isAllowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return matchOrigin(s.config.AllowedOrigins, u.Host)
}

// matchOrigin applies path.Match patterns, the same syntax the WebSocket
// upgrader uses for OriginPatterns.
func matchOrigin(patterns []string, host string) bool {
	host = strings.ToLower(host)
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		if ok, err := path.Match(strings.ToLower(pattern), host); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error(r.Context(), fmt.Errorf("panic: %v", rec), "Handler panicked",
					"path", r.URL.Path,
					"method", r.Method)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Type: "internal"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// logRequests never records bodies or query strings; both can carry
// secrets.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrade reach the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
