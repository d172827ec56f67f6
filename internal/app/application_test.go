package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raysh454/georisk/internal/testutil"
)

func TestOpenApplication_CreatesDatabase(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.StorageRoot = filepath.Join(t.TempDir(), "nested", "store")

	a, err := OpenApplication(cfg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("OpenApplication: %v", err)
	}

	if _, err := a.Orch.CreateSite(context.Background(), "s", "S", "", nil, nil); err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.StorageRoot, "georisk.db")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}
