package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"financas/internal/core"
)

// Seed is the on-disk shape of a memory store snapshot.
type Seed struct {
	Members      []core.Member      `json:"members"`
	Transactions []core.Transaction `json:"transactions"`
}

type Store struct {
	mu      sync.Mutex
	members []core.Member
	order   []string
	items   map[string]core.Transaction
}

func New(members []core.Member, txs []core.Transaction) *Store {
	s := &Store{
		members: dedupeMembers(members),
		items:   make(map[string]core.Transaction, len(txs)),
	}
	for _, t := range txs {
		s.put(t)
	}
	return s
}

// NewFromFile loads a JSON seed. A missing file yields a store with two
// default members and no transactions.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(defaultMembers(), nil), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(defaultMembers(), nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	if len(seed.Members) == 0 {
		seed.Members = defaultMembers()
	}
	return New(seed.Members, seed.Transactions), nil
}

func defaultMembers() []core.Member {
	return []core.Member{{ID: "a", Name: "Parceiro A"}, {ID: "b", Name: "Parceiro B"}}
}

// put keeps first-insertion order so reads are deterministic.
func (s *Store) put(t core.Transaction) {
	if _, ok := s.items[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.items[t.ID] = t
}

// ListTransactions returns live transactions in insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.order))
	for _, id := range s.order {
		t := s.items[id]
		if t.IsDeleted {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok || t.IsDeleted {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

// SaveTransaction stores the transaction, replacing any with the same id.
func (s *Store) SaveTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok || t.IsDeleted {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	t.IsDeleted = true
	s.items[id] = t
	return nil
}

func (s *Store) ListMembers(_ context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Member(nil), s.members...), nil
}

// UpsertMember replaces the member with the same id or appends it.
func (s *Store) UpsertMember(_ context.Context, m core.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == m.ID {
			s.members[i] = m
			return nil
		}
	}
	s.members = append(s.members, m)
	return nil
}

func dedupeMembers(in []core.Member) []core.Member {
	seen := map[string]struct{}{}
	out := make([]core.Member, 0, len(in))
	for _, m := range in {
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
