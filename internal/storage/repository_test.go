package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/api"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, _, err := repo.LoadSession(ctx); !errors.Is(err, api.ErrNoSession) {
		t.Fatalf("empty LoadSession err = %v, want ErrNoSession", err)
	}

	if err := repo.SaveSession(ctx, "tok-1", "a@example.com"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := repo.SaveSession(ctx, "tok-2", "b@example.com"); err != nil {
		t.Fatalf("SaveSession overwrite: %v", err)
	}
	token, email, err := repo.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if token != "tok-2" || email != "b@example.com" {
		t.Errorf("session = %q %q", token, email)
	}

	if err := repo.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, _, err := repo.LoadSession(ctx); !errors.Is(err, api.ErrNoSession) {
		t.Errorf("after clear err = %v", err)
	}
}

func TestSessionRestoresThroughAPI(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s := api.NewSession(repo)
	if err := s.Set(ctx, "persisted", "me@example.com"); err != nil {
		t.Fatal(err)
	}

	restored := api.NewSession(repo)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Token() != "persisted" || restored.Email() != "me@example.com" {
		t.Errorf("restored = %q %q", restored.Token(), restored.Email())
	}
}

func TestLocations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	q, err := repo.LoadLocation(ctx, api.Expenses)
	if err != nil || q != "" {
		t.Fatalf("empty LoadLocation = %q, %v", q, err)
	}

	if err := repo.SaveLocation(ctx, api.Expenses, "search=cof"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveLocation(ctx, api.Expenses, "page=2&search=cof"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveLocation(ctx, api.Incomes, ""); err != nil {
		t.Fatal(err)
	}

	q, err = repo.LoadLocation(ctx, api.Expenses)
	if err != nil || q != "page=2&search=cof" {
		t.Errorf("LoadLocation = %q, %v", q, err)
	}

	locs, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations: %v", err)
	}
	if len(locs) != 2 {
		t.Errorf("locations = %+v", locs)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveLocation(ctx, api.Loans, "search=car"); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if q, _ := repo.LoadLocation(ctx, api.Loans); q != "search=car" {
		t.Errorf("after reopen = %q", q)
	}
}
