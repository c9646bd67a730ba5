// Package testing provides shared fixtures for stash's integration tests
// and benchmarks: a ready-registered Registry and a handful of sample
// values exercising REDUCE and sharing.
package testing

import (
	"math/big"

	"github.com/zoobzio/stash"
)

// Account is a plain struct with no custom Reducible, exercising stash's
// sentinel-scanned default struct encoding via RegisterStruct.
type Account struct {
	ID      string
	Balance int64
}

// Ledger holds a list of entries and implements stash.Reducible directly,
// exercising the custom-Reduce path rather than the struct default.
type Ledger struct {
	Entries []int64
}

// Reduce implements stash.Reducible.
func (l *Ledger) Reduce() (stash.ReduceResult, error) {
	return stash.ReduceResult{
		Constructor: stash.GlobalRef("stashtest:newLedger"),
		Args:        []any{l.Entries},
	}, nil
}

func newLedger(args []any) (any, error) {
	entries, _ := args[0].([]any)
	l := &Ledger{Entries: make([]int64, len(entries))}
	for i, e := range entries {
		// INT values decode as *big.Int.
		if n, ok := e.(*big.Int); ok {
			l.Entries[i] = n.Int64()
		}
	}
	return l, nil
}

// NewFixtureRegistry returns a Registry with Account and Ledger registered,
// ready to round-trip both through a Mapping.
func NewFixtureRegistry() *stash.Registry {
	reg := stash.NewRegistry()
	if err := stash.RegisterStruct[Account](reg); err != nil {
		panic(err)
	}
	reg.RegisterConstructor("stashtest:newLedger", newLedger)
	return reg
}

// SharedSubvalue returns a value graph where the same large slice appears
// twice. The slice is long enough that its encoded form crosses the
// 255-byte promotion threshold, so both occurrences resolve to one stored
// blob.
func SharedSubvalue() any {
	shared := make([]any, 0, 128)
	for i := 0; i < 128; i++ {
		shared = append(shared, int64(i))
	}
	return []any{shared, shared}
}
