// Package repotest provides an in-memory store for tests.
package repotest

import (
	"context"
	"testing"

	"github.com/Skotchmaster/sport_academy/internal/repo"
	"github.com/Skotchmaster/sport_academy/pkg/db"
)

func NewSQLite(t testing.TB) *repo.GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	r := repo.NewGormRepo(gdb)
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = r.Close(context.Background()) })

	return r
}
