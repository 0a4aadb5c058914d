package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"financas/internal/core"
)

// Action names what happened to a transaction.
type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionDeleted     Action = "deleted"
	ActionPaidToggled Action = "paid_toggled"
)

// TransactionChangedMessage is a lightweight notice that a transaction changed.
// MonthKey is the month whose statement is affected first: the toggled month for
// settlement changes, the anchor month otherwise. Consumers re-read the store.
type TransactionChangedMessage struct {
	ID        string        `json:"id"`
	Action    Action        `json:"action"`
	MonthKey  core.MonthKey `json:"monthKey"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewTransactionChangedMessage creates a message stamped with the current time.
func NewTransactionChangedMessage(id string, action Action, key core.MonthKey) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		ID:        id,
		Action:    action,
		MonthKey:  key,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Month returns the affected month.
func (m *TransactionChangedMessage) Month() (core.Month, error) {
	return core.ParseMonthKey(string(m.MonthKey))
}

// TransactionChangedMessageFromJSON parses and validates a message body.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message without transaction id")
	}
	if _, err := msg.Month(); err != nil {
		return nil, fmt.Errorf("message month: %w", err)
	}
	return &msg, nil
}
