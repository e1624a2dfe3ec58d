package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetregistry/internal/infra/archive"
	"assetregistry/internal/infra/persistence/file"
	"assetregistry/internal/registry"
	"assetregistry/pkg/domain"
)

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

func seedRegistry(t *testing.T, path string) {
	t.Helper()
	store, err := file.NewStore(path, archive.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := registry.NewService(store)
	ctx := context.Background()
	date, err := domain.ParseCalendarDate("2025-01-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if err := svc.RecordAcquisition(ctx, "ET-123", "D12345", "north", date); err != nil {
		t.Fatalf("seed acquisition: %v", err)
	}
}

func TestCLI_AssetStatusText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	seedRegistry(t, path)

	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "file", func() {
		withEnv(t, "ASSETREGISTRY_FILE_PATH", path, func() {
			withEnv(t, "ASSETREGISTRY_ARCHIVE_DRIVER", "memory", func() {
				var stdout, stderr bytes.Buffer
				code := cli([]string{"-asset", "et-123", "-date", "2025-02-15"}, &stdout, &stderr)
				if code != 0 {
					t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
				}
				out := stdout.String()
				if !strings.Contains(out, "ET-123") || !strings.Contains(out, "active") || !strings.Contains(out, "D12345") {
					t.Fatalf("unexpected output: %s", out)
				}
			})
		})
	})
}

func TestCLI_ActiveListJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	seedRegistry(t, path)

	withEnv(t, "ASSETREGISTRY_STORAGE_DRIVER", "file", func() {
		withEnv(t, "ASSETREGISTRY_FILE_PATH", path, func() {
			withEnv(t, "ASSETREGISTRY_ARCHIVE_DRIVER", "memory", func() {
				var stdout, stderr bytes.Buffer
				code := cli([]string{"-json", "-date", "2025-02-15"}, &stdout, &stderr)
				if code != 0 {
					t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
				}
				var report struct {
					Active []string `json:"active"`
				}
				if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
					t.Fatalf("decode output: %v\n%s", err, stdout.String())
				}
				if len(report.Active) != 1 || report.Active[0] != "ET-123" {
					t.Fatalf("active list = %v", report.Active)
				}
			})
		})
	})
}

func TestCLI_InvalidDate(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cli([]string{"-date", "not-a-date"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "registry-inspect:") {
		t.Fatalf("stderr missing error prefix: %s", stderr.String())
	}
}

func TestCLI_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-definitely-not-a-flag"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
}
