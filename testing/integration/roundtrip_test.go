package integration

import (
	"context"
	"reflect"
	"testing"

	"github.com/zoobzio/stash"
	"github.com/zoobzio/stash/bson"
	"github.com/zoobzio/stash/fsdb"
	"github.com/zoobzio/stash/json"
	"github.com/zoobzio/stash/lsm"
	"github.com/zoobzio/stash/msgpack"
	"github.com/zoobzio/stash/nildb"
	"github.com/zoobzio/stash/ram"
	stashtest "github.com/zoobzio/stash/testing"
	"github.com/zoobzio/stash/xml"
	"github.com/zoobzio/stash/yaml"
)

// --- Mapping implementations round-trip the same value graphs ---

func TestMapping_AllImplementations_ScalarRoundTrip(t *testing.T) {
	ramDB := ram.New(nil)
	fsDB := fsdb.New(t.TempDir(), nil)
	lsmDB, err := lsm.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("lsm.Open error: %v", err)
	}
	defer lsmDB.Close()

	mappings := []struct {
		name string
		m    stash.Mapping
	}{
		{"ram", ramDB},
		{"fsdb", fsDB},
		{"lsm", lsmDB},
	}

	v := []any{int64(1), "two", 3.5, []any{int64(4), int64(5)}}

	for _, tc := range mappings {
		t.Run(tc.name, func(t *testing.T) {
			key, err := stash.Dump(context.Background(), v, tc.m)
			if err != nil {
				t.Fatalf("Dump error: %v", err)
			}
			got, err := stash.Load(context.Background(), key, tc.m)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			list, ok := got.([]any)
			if !ok || len(list) != 4 {
				t.Fatalf("got %#v", got)
			}
		})
	}
}

func TestMapping_NilDB_HashOnly(t *testing.T) {
	d := nildb.New(nil)
	v := []any{int64(1), "two"}

	dk, err := stash.Dump(context.Background(), v, d)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	hk, err := stash.Hash(context.Background(), v)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if dk != hk {
		t.Errorf("nildb key %s != Hash key %s", dk, hk)
	}
}

// --- Struct and Reducible fixtures round-trip across Mapping backends ---

func TestFixtures_AccountAndLedger_AcrossBackends(t *testing.T) {
	reg := stashtest.NewFixtureRegistry()

	backends := []struct {
		name string
		m    stash.Mapping
	}{
		{"ram", ram.New(nil)},
		{"fsdb", fsdb.New(t.TempDir(), nil)},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			acc := stashtest.Account{ID: "a1", Balance: 1000}
			key, err := stash.Dump(context.Background(), acc, b.m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Dump(Account) error: %v", err)
			}
			got, err := stash.Load(context.Background(), key, b.m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Load(Account) error: %v", err)
			}
			gotAcc, ok := got.(*stashtest.Account)
			if !ok || gotAcc.ID != acc.ID || gotAcc.Balance != acc.Balance {
				t.Errorf("got %#v, want *%#v", got, acc)
			}

			ledger := &stashtest.Ledger{Entries: []int64{10, -5, 3}}
			lkey, err := stash.Dump(context.Background(), ledger, b.m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Dump(Ledger) error: %v", err)
			}
			lgot, err := stash.Load(context.Background(), lkey, b.m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Load(Ledger) error: %v", err)
			}
			gotLedger, ok := lgot.(*stashtest.Ledger)
			if !ok || !reflect.DeepEqual(gotLedger.Entries, ledger.Entries) {
				t.Errorf("got %#v, want %#v", lgot, ledger)
			}
		})
	}
}

// --- Codec-based REDUCE fallback: an opaque type with no stash mapping of
// its own round-trips by marshaling through a registered Codec. ---

type Document struct {
	Title string
	Body  string
	Tags  []string
}

func TestCodec_AllImplementations_ReduceFallback(t *testing.T) {
	codecs := []struct {
		name        string
		codec       stash.Codec
		contentType string
	}{
		{"json", json.New(), "application/json"},
		{"yaml", yaml.New(), "application/yaml"},
		{"xml", xml.New(), "application/xml"},
		{"msgpack", msgpack.New(), "application/msgpack"},
		{"bson", bson.New(), "application/bson"},
	}

	for _, tc := range codecs {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.codec.ContentType(); got != tc.contentType {
				t.Errorf("ContentType() = %q, want %q", got, tc.contentType)
			}

			reg := stash.NewRegistry()
			reg.RegisterCodec(reflect.TypeOf(Document{}), tc.codec)

			m := ram.New(nil)
			doc := Document{Title: "hello", Body: "world", Tags: []string{"a", "b"}}

			key, err := stash.Dump(context.Background(), doc, m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Dump error: %v", err)
			}
			got, err := stash.Load(context.Background(), key, m, stash.WithRegistry(reg))
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			gotDoc, ok := got.(Document)
			if !ok || gotDoc.Title != doc.Title || gotDoc.Body != doc.Body {
				t.Errorf("got %#v, want %#v", got, doc)
			}
		})
	}
}

// --- Compression wrapping is transparent to round-tripping ---

func TestCompressed_RoundTrip(t *testing.T) {
	m := stash.Compressed(ram.New(nil))
	big := make([]any, 0, 200)
	for i := 0; i < 200; i++ {
		big = append(big, "repeated-payload-text")
	}

	key, err := stash.Dump(context.Background(), big, m)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, m)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 200 {
		t.Fatalf("got %#v", got)
	}
}

// --- Sharing survives a Mapping round trip ---

func TestSharedSubvalue_RoundTripsToEqualSlices(t *testing.T) {
	m := ram.New(nil)
	key, err := stash.Dump(context.Background(), stashtest.SharedSubvalue(), m)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	got, err := stash.Load(context.Background(), key, m)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("got %#v", got)
	}
	a, aok := list[0].([]any)
	b, bok := list[1].([]any)
	if !aok || !bok || len(a) != 128 || len(b) != 128 {
		t.Fatalf("expected two 128-element slices, got %#v", list)
	}
}
