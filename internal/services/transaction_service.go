package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/metrics"
	"financas/internal/ports"

	"github.com/google/uuid"
)

// ErrInvalidInput marks errors caused by the caller's data rather than the system.
var ErrInvalidInput = errors.New("invalid input")

// ChangePublisher announces transaction changes to other processes.
type ChangePublisher interface {
	PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error
}

type transactionStore interface {
	ports.TransactionGetter
	ports.TransactionWriter
}

// TransactionService validates and persists transaction changes, then
// publishes a change notice. Publishing is best effort: the store is the source
// of truth and a failed publish never fails the request.
type TransactionService struct {
	store     transactionStore
	publisher ChangePublisher
	metrics   *metrics.Metrics
	newID     func() string
}

// NewTransactionService builds the service. publisher may be nil when no
// broker is configured.
func NewTransactionService(store transactionStore, publisher ChangePublisher, m *metrics.Metrics) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		newID:     uuid.NewString,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// normalize clears the settlement field that does not apply to the transaction's kind.
func normalize(t core.Transaction) core.Transaction {
	if t.IsFixed {
		t.IsPaid = false
	} else {
		t.PaidMonths = nil
	}
	return t
}

// Create assigns a fresh id and stores the transaction.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = s.newID()
	t.IsDeleted = false
	t = normalize(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created", "id", t.ID, "type", t.Type, "fixed", t.IsFixed)
	s.publish(ctx, t, amqp.ActionCreated, "")
	return t, nil
}

// Update replaces the editable fields of an existing transaction. A one-off's
// paid flag is editable; a fixed transaction keeps its paid months, which only
// TogglePaid changes. Moving the anchor to another month announces both months.
func (s *TransactionService) Update(ctx context.Context, id string, in core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	t := existing
	t.Title = in.Title
	t.Amount = in.Amount
	t.Category = in.Category
	t.Emoji = in.Emoji
	t.Date = in.Date
	t.SpenderID = in.SpenderID
	t.Type = in.Type
	t.IsFixed = in.IsFixed
	t.IsPaid = in.IsPaid
	t.Installments = in.Installments
	t.RecurringGroupID = in.RecurringGroupID
	t = normalize(t)

	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", t.ID)
	s.publish(ctx, t, amqp.ActionUpdated, "")
	if old, ok := anchorKey(existing); ok {
		if cur, ok := anchorKey(t); ok && cur != old {
			s.publish(ctx, t, amqp.ActionUpdated, old)
		}
	}
	return t, nil
}

// Delete soft-deletes the transaction.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, existing, amqp.ActionDeleted, "")
	return nil
}

// TogglePaid flips the settlement state of the transaction for month.
func (s *TransactionService) TogglePaid(ctx context.Context, id string, month core.Month) (core.Transaction, error) {
	if err := month.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	key := month.Key()
	t := existing.TogglePaid(key)
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.DebugContext(ctx, "Transaction settlement toggled",
		"id", t.ID,
		"month", key,
		"fixed", t.IsFixed)
	s.publish(ctx, t, amqp.ActionPaidToggled, key)
	return t, nil
}

func anchorKey(t core.Transaction) (core.MonthKey, bool) {
	anchor, err := t.Anchor()
	if err != nil {
		return "", false
	}
	return core.MonthOf(anchor).Key(), true
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction, action amqp.Action, key core.MonthKey) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping change message", "id", t.ID)
		return
	}
	if key == "" {
		k, ok := anchorKey(t)
		if !ok {
			slog.ErrorContext(ctx, "Cannot derive month for change message", "id", t.ID, "date", t.Date)
			return
		}
		key = k
	}
	msg := amqp.NewTransactionChangedMessage(t.ID, action, key)
	if err := s.publisher.PublishTransactionChanged(ctx, msg); err != nil {
		s.metrics.IncrPublishError()
		slog.ErrorContext(ctx, "Failed to publish change message",
			"id", t.ID,
			"action", action,
			"error", err)
	}
}
