// Package test holds integration tests running the store against real
// drivers: a temporary SQLite file, or PostgreSQL when POSTGRES_TEST_DSN is set.
package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/store"
	"github.com/hrygo/agenda/store/db"
)

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	return "sqlite"
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()
	dir := t.TempDir()
	driver := getDriverFromEnv()

	p := &profile.Profile{
		Mode:     "dev",
		Data:     dir,
		Driver:   driver,
		Timezone: "America/Sao_Paulo",
	}
	switch driver {
	case "sqlite":
		p.DSN = filepath.Join(dir, "agenda_test.db")
	case "postgres":
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
		if p.DSN == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
	}
	return p
}

// NewTestingStore opens a migrated store for one test and closes it on cleanup.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	if getDriverFromEnv() == "postgres" {
		if _, err := driver.GetDB().ExecContext(ctx, "DELETE FROM event"); err != nil {
			t.Fatalf("failed to reset event table: %v", err)
		}
	}
	t.Cleanup(func() { ts.Close() })
	return ts
}
