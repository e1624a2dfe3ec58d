package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTempFS(t *testing.T) *Filesystem {
	t.Helper()
	fs, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return fs
}

func TestFilesystem_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	fs := newTempFS(t)
	info, err := fs.Put(ctx, "20250101T000000.000000000Z_autosave.json", bytes.NewReader([]byte(`{"assets":{}}`)), PutOptions{ContentType: "application/json", Metadata: map[string]string{"reason": ReasonAutosave}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"assets":{}}`)) || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}

	// create-only: backups are never overwritten
	if _, err := fs.Put(ctx, info.Key, bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatal("expected duplicate key failure")
	}

	h, err := fs.Head(ctx, info.Key)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if h.Metadata["reason"] != ReasonAutosave {
		t.Fatalf("reason tag lost: %+v", h.Metadata)
	}

	gi, rc, err := fs.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"assets":{}}` || gi.ETag != info.ETag {
		t.Fatalf("get mismatch: %q %+v", body, gi)
	}

	infos, err := fs.List(ctx, "20250101")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %v", infos, err)
	}

	ok, err := fs.Delete(ctx, info.Key)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = fs.Delete(ctx, info.Key)
	if err != nil || ok {
		t.Fatalf("second delete should be (false, nil): %v %v", ok, err)
	}
}

func TestFilesystem_PutCleansUpWhenSidecarFails(t *testing.T) {
	ctx := context.Background()
	fs := newTempFS(t)
	const key = "20250101T000000.000000000Z_autosave.json"
	// occupy the sidecar path with a directory so writing the metadata fails
	// after the data file has been renamed into place
	if err := os.Mkdir(filepath.Join(fs.Root(), key+".meta"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := fs.Put(ctx, key, strings.NewReader(`{"assets":{}}`), PutOptions{}); err == nil {
		t.Fatal("expected put to fail when sidecar cannot be written")
	}
	if _, err := os.Stat(filepath.Join(fs.Root(), key)); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("orphaned data file left behind: %v", err)
	}
	// the key stays writable once the obstruction is gone
	if err := os.Remove(filepath.Join(fs.Root(), key+".meta")); err != nil {
		t.Fatalf("remove obstruction: %v", err)
	}
	if _, err := fs.Put(ctx, key, strings.NewReader(`{"assets":{}}`), PutOptions{}); err != nil {
		t.Fatalf("retry put: %v", err)
	}
}

func TestFilesystem_RejectsTraversalKeys(t *testing.T) {
	fs := newTempFS(t)
	for _, key := range []string{"", "  ", "../escape.json", "/abs.json", "a/../../b"} {
		if _, err := fs.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestKey_Format(t *testing.T) {
	ts := time.Date(2025, time.April, 30, 12, 30, 45, 123456789, time.UTC)
	key := Key(ts, ReasonAutosave)
	if key != "20250430T123045.123456789Z_autosave.json" {
		t.Fatalf("key format: %s", key)
	}
	if !strings.HasSuffix(Key(ts, ReasonCorrupted), "_corrupted.json") {
		t.Fatal("corrupted key tag missing")
	}
}

func TestMemory_CreateOnlyAndList(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	if _, err := mem.Put(ctx, "a.json", strings.NewReader("one"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := mem.Put(ctx, "a.json", strings.NewReader("two"), PutOptions{}); err == nil {
		t.Fatal("expected duplicate key failure")
	}
	_, rc, err := mem.Get(ctx, "a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "one" {
		t.Fatalf("unexpected body %q", body)
	}
	infos, err := mem.List(ctx, "")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %v", infos, err)
	}
	if mem.Driver() != DriverMemory {
		t.Fatalf("driver: %s", mem.Driver())
	}
}
