package http

import (
	"net/http"
	"strconv"
	"time"

	"financas/internal/log"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// withMiddleware tags each request with an id, applies security headers and
// the write rate limit, then logs and measures the request.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	tagged := log.Middleware(s.logger)(log.RequestIDMiddleware(requestIDFrom)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			clientIP := extractClientIP(r)
			ctx := r.Context()

			setSecurityHeaders(w.Header())

			if detectSuspiciousRequest(r) {
				log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
			}

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
				log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				rw.Header().Set("Retry-After", "60")
				writeJSON(rw, http.StatusTooManyRequests, errorBody{
					Error:     "rate limit exceeded, try again later",
					RequestID: log.RequestID(ctx),
				})
			} else {
				next.ServeHTTP(rw, r)
			}

			duration := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			s.deps.Metrics.ObserveRequest(route, strconv.Itoa(rw.statusCode/100)+"xx", duration)
			s.access.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
		})))
	return tagged
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
