package ram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/zoobzio/stash"
)

func TestDB_PutGetRoundTrip(t *testing.T) {
	d := New(nil)
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
	d := New(nil)
	k1, _ := d.PutBlob([]byte("same"))
	k2, _ := d.PutBlob([]byte("same"))
	if k1 != k2 {
		t.Errorf("expected identical keys for identical bytes, got %s and %s", k1, k2)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestDB_GetMissingIsNotFound(t *testing.T) {
	d := New(nil)
	missing := stash.Blake3KeyGen{}.Digest([]byte("nope"))
	_, err := d.GetBlob(missing)
	if !errors.Is(err, stash.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDB_ConcurrentPuts(t *testing.T) {
	d := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := []byte{byte(i), byte(i >> 8)}
			if _, err := d.PutBlob(b); err != nil {
				t.Errorf("PutBlob error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if d.Len() == 0 {
		t.Error("expected stored blobs after concurrent puts")
	}
}

func TestDB_StashRoundTrip(t *testing.T) {
	d := New(nil)
	v := map[any]any{"a": int64(1), "b": []any{int64(2), int64(3)}}

	key, err := stash.Dump(context.Background(), v, d)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, d)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	gm, ok := got.(map[any]any)
	if !ok || len(gm) != 2 {
		t.Fatalf("got %#v", got)
	}
}
