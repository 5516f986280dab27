// Package query computes P&L summaries, breakdowns, comparisons, and
// rankings over a ledger store snapshot. All operations take already
// resolved canonical names and are pure functions of (store, arguments):
// the same store and filters always produce bit-identical results.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/propcortex/propcortex/internal/ledger"
)

// ErrConflictingPeriod is returned when a year and quarter filter cannot
// select the same rows, e.g. year=2023 with quarter=2024-Q1.
var ErrConflictingPeriod = errors.New("query: year and quarter filters conflict")

// Period is an optional time filter. Year and Quarter are mutually
// refining; when both are set the quarter must belong to the year.
type Period struct {
	Year    string
	Quarter string
}

func (p Period) validate() error {
	if p.Year != "" && p.Quarter != "" && !strings.HasPrefix(p.Quarter, p.Year+"-Q") {
		return fmt.Errorf("%w: year=%s quarter=%s", ErrConflictingPeriod, p.Year, p.Quarter)
	}
	return nil
}

func (p Period) filter() ledger.Filter {
	return ledger.Filter{Year: p.Year, Quarter: p.Quarter}
}

// Label describes the period for human-readable output.
func (p Period) Label() string {
	switch {
	case p.Quarter != "":
		return p.Quarter
	case p.Year != "":
		return "year " + p.Year
	default:
		return "all periods"
	}
}

// Engine runs aggregations against one immutable store snapshot.
type Engine struct {
	store *ledger.Store
}

// NewEngine binds an engine to a store snapshot.
func NewEngine(store *ledger.Store) *Engine {
	return &Engine{store: store}
}

// splitPnl sums profit over rows into revenue (profit > 0) and expense
// (profit < 0) totals, in store order so repeated calls accumulate in the
// same sequence. The profit sign is authoritative, never the ledger type.
func splitPnl(rows []ledger.Row) (revenue, expense float64) {
	for _, row := range rows {
		if row.Profit > 0 {
			revenue += row.Profit
		} else {
			expense += row.Profit
		}
	}
	return revenue, expense
}

// TotalPnl sums profit over the filtered store. An empty filter result
// yields an all-zero summary, not an error.
func (e *Engine) TotalPnl(p Period) (PnlSummary, error) {
	if err := p.validate(); err != nil {
		return PnlSummary{}, err
	}
	revenue, expense := splitPnl(e.store.Filter(p.filter()))
	return PnlSummary{
		Revenue:     revenue,
		Expense:     expense,
		Net:         revenue + expense,
		PeriodLabel: p.Label(),
	}, nil
}

// PnlBreakdown groups profit by ledger group, ordered by descending
// absolute amount with ties broken by group name.
func (e *Engine) PnlBreakdown(year string) (PnlBreakdown, error) {
	p := Period{Year: year}
	totals := make(map[string]float64)
	for _, row := range e.store.Filter(p.filter()) {
		totals[row.LedgerGroup] += row.Profit
	}

	groups := make([]GroupAmount, 0, len(totals))
	for group, amount := range totals {
		groups = append(groups, GroupAmount{Group: group, Amount: amount})
	}
	sort.Slice(groups, func(i, j int) bool {
		ai, aj := abs(groups[i].Amount), abs(groups[j].Amount)
		if ai != aj {
			return ai > aj
		}
		return groups[i].Group < groups[j].Group
	})
	return PnlBreakdown{Groups: groups, PeriodLabel: p.Label()}, nil
}

// PropertySummary aggregates one property's rows, optionally restricted to
// a year. TenantCount counts distinct non-empty tenant names among the
// filtered rows.
func (e *Engine) PropertySummary(name, year string) (PropertySummary, error) {
	p := Period{Year: year}
	rows := e.store.Filter(ledger.Filter{Property: name, Year: year})
	revenue, expense := splitPnl(rows)

	tenants := make(map[string]struct{})
	for _, row := range rows {
		if row.TenantName != "" {
			tenants[row.TenantName] = struct{}{}
		}
	}
	return PropertySummary{
		Name:        name,
		Revenue:     revenue,
		Expense:     expense,
		Net:         revenue + expense,
		TenantCount: len(tenants),
		PeriodLabel: p.Label(),
	}, nil
}

// CompareProperties produces two independent property summaries; no
// cross-property filtering happens.
func (e *Engine) CompareProperties(name1, name2, year string) (PropertyComparison, error) {
	left, err := e.PropertySummary(name1, year)
	if err != nil {
		return PropertyComparison{}, err
	}
	right, err := e.PropertySummary(name2, year)
	if err != nil {
		return PropertyComparison{}, err
	}
	return PropertyComparison{Left: left, Right: right}, nil
}

// TenantRevenue sums positive profit attributed to a tenant. Expenses
// attributed to a tenant are excluded: this is a revenue-only view.
func (e *Engine) TenantRevenue(name, year string) (TenantSummary, error) {
	p := Period{Year: year}
	var revenue float64
	for _, row := range e.store.Filter(ledger.Filter{Tenant: name, Year: year}) {
		if row.Profit > 0 {
			revenue += row.Profit
		}
	}
	return TenantSummary{Name: name, Revenue: revenue, PeriodLabel: p.Label()}, nil
}

// TopTenants ranks tenants by revenue-only profit, descending, ties broken
// by name ascending, truncated to n. n <= 0 yields an empty ranking.
func (e *Engine) TopTenants(n int, year string) (TenantRanking, error) {
	if n <= 0 {
		return TenantRanking{N: n}, nil
	}
	totals := make(map[string]float64)
	for _, row := range e.store.Filter(ledger.Filter{Year: year}) {
		if row.TenantName != "" && row.Profit > 0 {
			totals[row.TenantName] += row.Profit
		}
	}
	entries := make([]TenantRevenue, 0, len(totals))
	for name, revenue := range totals {
		entries = append(entries, TenantRevenue{Name: name, Revenue: revenue})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return TenantRanking{Entries: entries, N: n}, nil
}

// TopProperties ranks properties by net profit, descending, ties broken by
// name ascending, truncated to n. n <= 0 yields an empty ranking.
func (e *Engine) TopProperties(n int, year string) (PropertyRanking, error) {
	if n <= 0 {
		return PropertyRanking{N: n}, nil
	}
	totals := make(map[string]float64)
	for _, row := range e.store.Filter(ledger.Filter{Year: year}) {
		totals[row.PropertyName] += row.Profit
	}
	entries := make([]PropertyNet, 0, len(totals))
	for name, net := range totals {
		entries = append(entries, PropertyNet{Name: name, Net: net})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Net != entries[j].Net {
			return entries[i].Net > entries[j].Net
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return PropertyRanking{Entries: entries, N: n}, nil
}

// PortfolioStats summarizes the whole store.
func (e *Engine) PortfolioStats() PortfolioStats {
	revenue, expense := splitPnl(e.store.Rows())
	properties := e.store.CanonicalProperties()
	tenants := e.store.CanonicalTenants()
	return PortfolioStats{
		PropertyCount: len(properties),
		TenantCount:   len(tenants),
		Properties:    properties,
		Tenants:       tenants,
		TotalRevenue:  revenue,
		TotalExpense:  expense,
		Net:           revenue + expense,
		Years:         e.store.Years(),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
