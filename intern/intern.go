// Package intern interns strings into symbols that compare by identity.
//
// A Table remembers symbols weakly: a name stays interned while some Symbol
// for it is alive, and a later Intern after every holder dropped it creates a
// fresh symbol.
package intern

import (
	"sync"

	"github.com/mcheviron/weakhash"
)

// Symbol is an interned string. Two symbols from the same table are equal
// exactly when their names are.
type Symbol struct {
	p *string
}

// Name returns the symbol's name. The zero Symbol has an empty name.
func (s Symbol) Name() string {
	if s.p == nil {
		return ""
	}
	return *s.p
}

// Equal reports whether s and other are the same symbol.
func (s Symbol) Equal(other Symbol) bool {
	return s.p == other.p
}

// String returns the symbol's name.
func (s Symbol) String() string {
	return s.Name()
}

// Uninterned returns a symbol that is not equal to any other symbol, even one
// with the same name.
func Uninterned(name string) Symbol {
	return Symbol{p: &name}
}

// Table interns symbols. It is not safe for concurrent use.
type Table struct {
	set *weakhash.WeakSet[*string]
}

// NewTable returns an empty table configured by cfg.
func NewTable(cfg weakhash.Config) (*Table, error) {
	set, err := weakhash.NewWeakSet(weakhash.Pointers[string](), weakhash.Pointee[string](), cfg)
	if err != nil {
		return nil, err
	}
	return &Table{set: set}, nil
}

// Intern returns the live symbol named name, creating it if there is none.
func (t *Table) Intern(name string) Symbol {
	p, _ := t.set.LoadOrStore(&name)
	return Symbol{p: p}
}

// Lookup returns the live symbol named name without creating one.
func (t *Table) Lookup(name string) (Symbol, bool) {
	p, ok := t.set.Find(&name)
	return Symbol{p: p}, ok
}

// Len returns the number of symbols the table still holds an entry for,
// including ones whose last holder is gone but that were not purged yet.
func (t *Table) Len() int {
	return t.set.Len()
}

// Purge drops the entries of symbols nobody holds anymore.
func (t *Table) Purge() int {
	return t.set.PurgeExpired()
}

var (
	defaultMu    sync.Mutex
	defaultTable *Table
)

// Intern interns name in the process-wide table.
func Intern(name string) Symbol {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultTable == nil {
		cfg := weakhash.NewConfig()
		cfg.Name = "intern"
		t, err := NewTable(cfg)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	}
	return defaultTable.Intern(name)
}
