package ledger

import (
	"sort"
	"sync/atomic"
)

// Store is an ordered, immutable sequence of ledger rows plus canonical
// name indexes built once at load time. It is safe for unbounded concurrent
// reads; no method mutates it.
type Store struct {
	rows         []Row
	properties   []string
	tenants      []string
	inconsistent int
}

// Filter selects rows by conjunctive exact-match predicates. Zero-valued
// fields match all rows.
type Filter struct {
	Year     string
	Quarter  string
	Month    string
	Property string
	Tenant   string
	Type     Type
}

func (f Filter) matches(row Row) bool {
	if f.Year != "" && row.Year != f.Year {
		return false
	}
	if f.Quarter != "" && row.Quarter != f.Quarter {
		return false
	}
	if f.Month != "" && row.Month != f.Month {
		return false
	}
	if f.Property != "" && row.PropertyName != f.Property {
		return false
	}
	if f.Tenant != "" && row.TenantName != f.Tenant {
		return false
	}
	if f.Type != "" && row.LedgerType != f.Type {
		return false
	}
	return true
}

// Filter returns the rows matching every supplied predicate, in store order.
func (s *Store) Filter(f Filter) []Row {
	var out []Row
	for _, row := range s.rows {
		if f.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// Rows returns all rows in store order.
func (s *Store) Rows() []Row {
	return s.rows
}

// Len returns the number of rows in the store.
func (s *Store) Len() int {
	return len(s.rows)
}

// CanonicalProperties returns the sorted canonical property names.
func (s *Store) CanonicalProperties() []string {
	return s.properties
}

// CanonicalTenants returns the sorted canonical tenant names. Rows without
// tenant attribution contribute nothing.
func (s *Store) CanonicalTenants() []string {
	return s.tenants
}

// Inconsistencies returns how many rows carry a ledger type that contradicts
// the sign of their profit. The rows themselves are served verbatim.
func (s *Store) Inconsistencies() int {
	return s.inconsistent
}

// Years returns the distinct years covered by the store, ascending.
func (s *Store) Years() []string {
	seen := make(map[string]struct{})
	for _, row := range s.rows {
		seen[row.Year] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Handle is a swappable reference to the current store. Reloads build a new
// immutable Store and swap it atomically; readers always observe a fully
// constructed snapshot.
type Handle struct {
	ptr atomic.Pointer[Store]
}

// NewHandle returns a handle pointing at the given store.
func NewHandle(store *Store) *Handle {
	h := &Handle{}
	h.ptr.Store(store)
	return h
}

// Current returns the store snapshot for this request.
func (h *Handle) Current() *Store {
	return h.ptr.Load()
}

// Swap replaces the current store and returns the previous one.
func (h *Handle) Swap(store *Store) *Store {
	return h.ptr.Swap(store)
}
