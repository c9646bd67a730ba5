package testing

import (
	"context"
	"testing"

	"github.com/zoobzio/stash"
)

type memMapping struct {
	blobs map[stash.Key][]byte
}

func newMemMapping() *memMapping {
	return &memMapping{blobs: make(map[stash.Key][]byte)}
}

func (m *memMapping) PutBlob(b []byte) (stash.Key, error) {
	k := stash.Blake3KeyGen{}.Digest(b)
	if _, ok := m.blobs[k]; !ok {
		m.blobs[k] = append([]byte(nil), b...)
	}
	return k, nil
}

func (m *memMapping) GetBlob(k stash.Key) ([]byte, error) {
	b, ok := m.blobs[k]
	if !ok {
		return nil, stash.ErrNotFound
	}
	return b, nil
}

func TestNewFixtureRegistry_AccountRoundTrip(t *testing.T) {
	reg := NewFixtureRegistry()
	m := newMemMapping()

	key, err := stash.Dump(context.Background(), Account{ID: "a1", Balance: 500}, m, stash.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, m, stash.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	acc, ok := got.(*Account)
	if !ok || acc.ID != "a1" || acc.Balance != 500 {
		t.Errorf("got %#v, want *Account{a1 500}", got)
	}
}

func TestNewFixtureRegistry_LedgerRoundTrip(t *testing.T) {
	reg := NewFixtureRegistry()
	m := newMemMapping()

	l := &Ledger{Entries: []int64{10, -5, 3}}
	key, err := stash.Dump(context.Background(), l, m, stash.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, m, stash.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	ledger, ok := got.(*Ledger)
	if !ok || len(ledger.Entries) != 3 {
		t.Fatalf("got %#v", got)
	}
	if ledger.Entries[0] != 10 || ledger.Entries[1] != -5 || ledger.Entries[2] != 3 {
		t.Errorf("got entries %v, want [10 -5 3]", ledger.Entries)
	}
}

func TestSharedSubvalue_Dedupes(t *testing.T) {
	m := newMemMapping()
	key, err := stash.Dump(context.Background(), SharedSubvalue(), m)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}

	blob, err := m.GetBlob(key)
	if err != nil {
		t.Fatalf("GetBlob error: %v", err)
	}
	nbytes := stash.Blake3KeyGen{}.NBytes()
	want := 1 + 2*(1+nbytes)
	if len(blob) != want {
		t.Errorf("root blob length = %d, want %d (two shared references)", len(blob), want)
	}
}
