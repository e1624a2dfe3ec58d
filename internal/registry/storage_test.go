package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"assetregistry/internal/infra/persistence/file"
	"assetregistry/internal/infra/persistence/memory"
	"assetregistry/internal/infra/persistence/sqlite"
)

// helper to set and restore env vars
func withEnv(t *testing.T, key, value string, fn func()) {
	t.Helper()
	orig, had := os.LookupEnv(key)
	if value == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, value)
	}
	defer func() {
		if had {
			_ = os.Setenv(key, orig)
		} else {
			_ = os.Unsetenv(key)
		}
	}()
	fn()
}

func TestOpenPersistentStore_DefaultIsFileDriver(t *testing.T) {
	dir := t.TempDir()
	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "", func() {
		withEnv(t, "ASSETREGISTRY_FILE_PATH", filepath.Join(dir, "registry.json"), func() {
			withEnv(t, "ASSETREGISTRY_ARCHIVE_DRIVER", "memory", func() {
				store, err := OpenPersistentStore(context.Background(), nil)
				if err != nil {
					t.Fatalf("open: %v", err)
				}
				if _, ok := store.(*file.Store); !ok {
					t.Fatalf("expected file store, got %T", store)
				}
			})
		})
	})
}

func TestOpenPersistentStore_Memory(t *testing.T) {
	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "memory", func() {
		store, err := OpenPersistentStore(context.Background(), nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, ok := store.(*memory.Store); !ok {
			t.Fatalf("expected memory store, got %T", store)
		}
	})
}

func TestOpenPersistentStore_SQLite(t *testing.T) {
	dir := t.TempDir()
	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "sqlite", func() {
		withEnv(t, "ASSETREGISTRY_SQLITE_PATH", filepath.Join(dir, "registry.db"), func() {
			store, err := OpenPersistentStore(context.Background(), nil)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			ss, ok := store.(*sqlite.Store)
			if !ok {
				t.Fatalf("expected sqlite store, got %T", store)
			}
			_ = ss.Close()
		})
	})
}

func TestOpenPersistentStore_UnknownDriver(t *testing.T) {
	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "bogus", func() {
		if _, err := OpenPersistentStore(context.Background(), nil); err == nil {
			t.Fatal("expected unknown driver error")
		}
	})
}
