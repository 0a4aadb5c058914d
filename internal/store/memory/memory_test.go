package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"financas/internal/core"
)

func tx(id string) core.Transaction {
	return core.Transaction{
		ID:        id,
		Title:     "t",
		Amount:    core.Money{Cents: 123},
		Date:      "01/02/2024",
		SpenderID: "a",
		Type:      core.Expense,
	}
}

func TestMemoryStoreSaveListDelete(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Member{{ID: "a"}, {ID: "b"}, {ID: "a"}}, nil)

	members, err := s.ListMembers(ctx)
	if err != nil || len(members) != 2 {
		t.Fatalf("unexpected members: %v err=%v", members, err)
	}

	for _, id := range []string{"x", "y", "z"} {
		if err := s.SaveTransaction(ctx, tx(id)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	updated := tx("x")
	updated.Title = "renamed"
	if err := s.SaveTransaction(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeleteTransaction(ctx, "y"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "y"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	list, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "x" || list[1].ID != "z" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].Title != "renamed" {
		t.Errorf("update not applied: %q", list[0].Title)
	}

	if _, err := s.GetTransaction(ctx, "y"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(nil, nil)
	bad := tx("bad")
	bad.Date = "2024-02-01"
	if err := s.SaveTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidDateFormat) {
		t.Fatalf("err = %v, want ErrInvalidDateFormat", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> defaults
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	members, _ := s.ListMembers(context.Background())
	if len(members) != 2 {
		t.Fatalf("expected default members, got %v", members)
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{
  "members": [{"id": "a", "name": "Ana", "income": 3500}, {"id": "b", "name": "Bruno", "income": "2500.50"}],
  "transactions": [
    {"id": "rent", "title": "Aluguel", "amount": 1500, "category": "casa", "date": "05/01/2024",
     "spenderId": "a", "type": "expense", "isFixed": true, "paidMonths": ["2024-1"]},
    {"id": "gone", "title": "Old", "amount": 10, "category": "x", "date": "05/01/2024",
     "spenderId": "b", "type": "expense", "isDeleted": true}
  ]
}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	members, _ = s.ListMembers(context.Background())
	if len(members) != 2 || members[1].Income.Cents != 250050 {
		t.Fatalf("unexpected members: %+v", members)
	}
	list, _ := s.ListTransactions(context.Background())
	if len(list) != 1 || list[0].ID != "rent" || !list[0].PaidMonths.Has("2024-1") {
		t.Fatalf("unexpected transactions: %+v", list)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMemoryStoreUpsertMember(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Member{{ID: "a", Name: "Ana"}}, nil)

	if err := s.UpsertMember(ctx, core.Member{ID: "a", Name: "Ana", Income: core.Money{Cents: 100}}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertMember(ctx, core.Member{ID: "b", Name: "Bruno"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertMember(ctx, core.Member{ID: " "}); err == nil {
		t.Error("expected error for empty id")
	}

	members, _ := s.ListMembers(ctx)
	if len(members) != 2 || members[0].Income.Cents != 100 || members[1].ID != "b" {
		t.Errorf("members = %+v", members)
	}
}
