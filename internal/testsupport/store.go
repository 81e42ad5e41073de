package testsupport

import (
	"os"
	"testing"

	"marquee/internal/config"
	"marquee/internal/store"
)

// MustOpenStore opens a run store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("create state dir: %v", err)
	}
	runs, err := store.Open(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		runs.Close()
	})
	return runs
}
