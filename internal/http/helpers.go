package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// parseMonth reads year and month from the query string. Missing values
// default to the current month; present but malformed values are an error.
func parseMonth(r *http.Request, now time.Time) (core.Month, error) {
	m := core.MonthOfTime(now)
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Month{}, fmt.Errorf("%w: year %q", core.ErrInvalidMonth, v)
		}
		m.Year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		mo, err := strconv.Atoi(v)
		if err != nil {
			return core.Month{}, fmt.Errorf("%w: month %q", core.ErrInvalidMonth, v)
		}
		m.Month = mo
	}
	if err := m.Validate(); err != nil {
		return core.Month{}, err
	}
	return m, nil
}

// parsePositiveInt reads an optional positive integer query parameter.
func parsePositiveInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadParam, key)
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requestIDFrom reuses a well-formed incoming X-Request-ID.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= 64 && sanitizeInput(id) == id && !strings.ContainsAny(id, " \t") {
		return id
	}
	return generateRequestID()
}
