package http

import (
	"net/http"

	"financas/internal/log"
)

const defaultRecent = 5

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.deps.Ledger.Statement(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	months, err := parsePositiveInt(r, "months", s.deps.TrendMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.deps.Ledger.Trend(r.Context(), month, months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	n, err := parsePositiveInt(r, "n", defaultRecent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recent, err := s.deps.Ledger.Recent(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": recent})
}

func (s *Server) handleHousehold(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Ledger.Household(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Household served", "members", len(h.Members))
	writeJSON(w, http.StatusOK, h)
}
