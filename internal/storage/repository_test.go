package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:        id,
		Title:     "Aluguel",
		Amount:    core.Money{Cents: 150000},
		Category:  "casa",
		Emoji:     "🏠",
		Date:      "05/01/2024",
		SpenderID: "a",
		Type:      core.Expense,
	}
}

func TestSQLiteRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rent := sampleTx("rent")
	rent.IsFixed = true
	rent.PaidMonths = core.NewMonthSet("2024-1", "2024-2")

	phone := sampleTx("phone")
	phone.Title = "Celular"
	phone.Installments = &core.Installments{Current: 2, Total: 10}
	phone.IsPaid = true

	salary := sampleTx("salary")
	salary.Type = core.Revenue
	salary.Date = "01/02/2024"

	for _, tx := range []core.Transaction{rent, phone, salary} {
		if err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction(%s): %v", tx.ID, err)
		}
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "rent" || list[1].ID != "phone" || list[2].ID != "salary" {
		t.Fatalf("order = %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}

	got := list[0]
	if !got.IsFixed || !got.PaidMonths.Has("2024-1") || !got.PaidMonths.Has("2024-2") || len(got.PaidMonths) != 2 {
		t.Errorf("rent round trip = %+v", got)
	}
	if got.Emoji != "🏠" || got.Amount.Cents != 150000 || got.Date != "05/01/2024" {
		t.Errorf("rent fields = %+v", got)
	}
	if list[1].Installments == nil || list[1].Installments.Label() != "2/10" || !list[1].IsPaid {
		t.Errorf("phone round trip = %+v", list[1])
	}
	if list[2].Type != core.Revenue || list[2].Installments != nil {
		t.Errorf("salary round trip = %+v", list[2])
	}
}

func TestSQLiteRepository_UpdateKeepsOrderAndReplacesPaidMonths(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := sampleTx("first")
	first.IsFixed = true
	first.PaidMonths = core.NewMonthSet("2024-1")
	if err := repo.SaveTransaction(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveTransaction(ctx, sampleTx("second")); err != nil {
		t.Fatal(err)
	}

	first.Title = "Aluguel novo"
	first.PaidMonths = core.NewMonthSet("2024-3")
	if err := repo.SaveTransaction(ctx, first); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetTransaction(ctx, "first")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Title != "Aluguel novo" || got.PaidMonths.Has("2024-1") || !got.PaidMonths.Has("2024-3") {
		t.Errorf("updated = %+v", got)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "first" {
		t.Errorf("order after update = %v", list)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.SaveTransaction(ctx, sampleTx("gone")); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteTransaction(ctx, "gone"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "gone"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetTransaction(ctx, "gone"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("deleted transaction still listed: %v", list)
	}
}

func TestSQLiteRepository_RejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	bad := sampleTx("bad")
	bad.Date = "2024-01-05"
	if err := repo.SaveTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidDateFormat) {
		t.Errorf("err = %v, want ErrInvalidDateFormat", err)
	}
}

func TestSQLiteRepository_Members(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.UpsertMember(ctx, core.Member{ID: "b", Name: "Bruno", Income: core.Money{Cents: 100}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertMember(ctx, core.Member{ID: "a", Name: "Ana", Income: core.Money{Cents: 200}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertMember(ctx, core.Member{ID: "b", Name: "Bruno", Income: core.Money{Cents: 300}}); err != nil {
		t.Fatal(err)
	}

	members, err := repo.ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 || members[0].ID != "a" || members[1].Income.Cents != 300 {
		t.Errorf("members = %+v", members)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
