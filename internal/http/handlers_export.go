package http

import (
	"fmt"
	"net/http"

	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/log"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func (s *Server) handleStatementXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveStatementFile(w, r, "xlsx", contentTypeXLSX, export.BuildStatementXLSX)
}

func (s *Server) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	s.serveStatementFile(w, r, "pdf", contentTypePDF, export.BuildStatementPDF)
}

func (s *Server) serveStatementFile(w http.ResponseWriter, r *http.Request, ext, contentType string, build func(ledger.Statement) ([]byte, error)) {
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
	data, err := build(st)
	if err != nil {
		writeError(w, r, fmt.Errorf("build %s: %w", ext, err))
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Statement exported",
		log.FieldMonthKey, month.Key(),
		log.FieldOperation, log.OpExport,
		"format", ext,
		"bytes", len(data))
	writeFile(w, contentType, fmt.Sprintf("extrato-%d-%02d.%s", month.Year, month.Month, ext), data)
}
