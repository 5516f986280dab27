// Package ledger holds the immutable in-memory ledger dataset and exposes
// filtered reads over it. A Store is built once from a row source and is
// never mutated afterwards; hot reloads construct a new Store and swap it
// through a Handle.
package ledger

// Type classifies a ledger row as revenue or expense. The values mirror the
// dataset verbatim.
type Type string

const (
	TypeRevenue Type = "revenue"
	TypeExpense Type = "expenses"
)

// Valid reports whether the value is one of the known ledger types.
func (t Type) Valid() bool {
	return t == TypeRevenue || t == TypeExpense
}

// Row is one financial line item, attributable to a property, an optional
// tenant, and a period. Profit carries the dataset's sign convention
// (positive revenue, negative expense cost) and is never re-derived from
// LedgerType: the two can disagree on malformed rows, and that disagreement
// is surfaced as data, not corrected.
type Row struct {
	EntityName        string
	PropertyName      string
	TenantName        string
	LedgerType        Type
	LedgerGroup       string
	LedgerCategory    string
	LedgerCode        int
	LedgerDescription string
	Month             string // YYYY-M##
	Quarter           string // YYYY-Q#
	Year              string // YYYY
	Profit            float64
}
