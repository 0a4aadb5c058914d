package http

import (
	"net/http"

	"financas/internal/log"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := decodeTransaction(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := decodeTransaction(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.deps.Transactions.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.deps.Transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	w.WriteHeader(http.StatusNoContent)
}

// handleTogglePaid flips settlement for the month given by year and month
// (default: current month). One-off transactions ignore the month.
func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	t, err := s.deps.Transactions.TogglePaid(r.Context(), id, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields := log.NewFields().
		WithOperation(log.OpTogglePaid).
		WithMonth(string(month.Key()))
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction settlement toggled",
		append(fields.ToSlice(), log.FieldTransactionID, id)...)
	writeJSON(w, http.StatusOK, t)
}
