package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"financas/internal/core"
)

const maxBodyBytes = 64 << 10

// transactionRequest is the editable part of a transaction. Settlement state
// for fixed items is only changed through the paid toggle.
type transactionRequest struct {
	Title            string               `json:"title"`
	Amount           core.Money           `json:"amount"`
	Category         string               `json:"category"`
	Emoji            string               `json:"emoji"`
	Date             string               `json:"date"`
	SpenderID        string               `json:"spenderId"`
	Type             core.TransactionType `json:"type"`
	IsFixed          bool                 `json:"isFixed"`
	IsPaid           bool                 `json:"isPaid"`
	Installments     *core.Installments   `json:"installments"`
	RecurringGroupID string               `json:"recurringGroupId"`
}

func (req transactionRequest) toTransaction() core.Transaction {
	return core.Transaction{
		Title:            sanitizeInput(req.Title),
		Amount:           req.Amount,
		Category:         sanitizeInput(req.Category),
		Emoji:            sanitizeInput(req.Emoji),
		Date:             sanitizeInput(req.Date),
		SpenderID:        sanitizeInput(req.SpenderID),
		Type:             req.Type,
		IsFixed:          req.IsFixed,
		IsPaid:           req.IsPaid,
		Installments:     req.Installments,
		RecurringGroupID: sanitizeInput(req.RecurringGroupID),
	}
}

// decodeTransaction reads a single JSON transaction from the body. Bad
// amounts surface as core.ErrInvalidAmount; anything else unreadable is
// errMalformedBody.
func decodeTransaction(w http.ResponseWriter, r *http.Request) (core.Transaction, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req transactionRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.Transaction{}, fmt.Errorf("%w: trailing data after JSON object", errMalformedBody)
	}
	return req.toTransaction(), nil
}
