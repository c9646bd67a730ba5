package fsdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zoobzio/stash"
)

func TestDB_PutGetRoundTrip(t *testing.T) {
	d := New(t.TempDir(), nil)
	k, err := d.PutBlob([]byte("hello"))
	if err != nil {
		t.Fatalf("PutBlob error: %v", err)
	}
	got, err := d.GetBlob(k)
	if err != nil {
		t.Fatalf("GetBlob error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestDB_PutIsIdempotent(t *testing.T) {
	d := New(t.TempDir(), nil)
	k1, err := d.PutBlob([]byte("same"))
	if err != nil {
		t.Fatalf("PutBlob error: %v", err)
	}
	k2, err := d.PutBlob([]byte("same"))
	if err != nil {
		t.Fatalf("PutBlob error: %v", err)
	}
	if k1 != k2 {
		t.Errorf("expected identical keys, got %s and %s", k1, k2)
	}
}

func TestDB_TwoLevelLayout(t *testing.T) {
	root := t.TempDir()
	d := New(root, nil)
	k, err := d.PutBlob([]byte("layout"))
	if err != nil {
		t.Fatalf("PutBlob error: %v", err)
	}

	path := d.pathFor(k)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		t.Fatalf("Rel error: %v", err)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 {
		t.Fatalf("expected a two-level path, got %q", rel)
	}
	if len(parts[0]) != 2 {
		t.Errorf("expected a 1-byte hex directory name, got %q", parts[0])
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected blob file to exist at %s: %v", path, err)
	}
}

func TestDB_CollisionOnMismatchedContent(t *testing.T) {
	d := New(t.TempDir(), nil)
	k := stash.Blake3KeyGen{}.Digest([]byte("real"))

	path := d.pathFor(k)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	_, err := d.PutBlob([]byte("real"))
	if !errors.Is(err, stash.ErrCollision) {
		t.Errorf("error = %v, want ErrCollision", err)
	}
}

func TestDB_GetMissingIsNotFound(t *testing.T) {
	d := New(t.TempDir(), nil)
	missing := stash.Blake3KeyGen{}.Digest([]byte("nope"))
	_, err := d.GetBlob(missing)
	if !errors.Is(err, stash.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDB_LargeBlobStreamedComparison(t *testing.T) {
	d := New(t.TempDir(), nil)
	big := strings.Repeat("z", 256*1024)

	k1, err := d.PutBlob([]byte(big))
	if err != nil {
		t.Fatalf("PutBlob error: %v", err)
	}
	k2, err := d.PutBlob([]byte(big))
	if err != nil {
		t.Fatalf("second PutBlob error: %v", err)
	}
	if k1 != k2 {
		t.Errorf("expected identical keys for identical large blobs")
	}

	got, err := d.GetBlob(k1)
	if err != nil {
		t.Fatalf("GetBlob error: %v", err)
	}
	if string(got) != big {
		t.Error("round-tripped large blob did not match")
	}
}

func TestDB_StashRoundTrip(t *testing.T) {
	d := New(t.TempDir(), nil)
	v := []any{int64(1), "two", 3.5}

	key, err := stash.Dump(context.Background(), v, d)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, d)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("got %#v", got)
	}
}
