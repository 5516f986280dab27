package query

// Kind identifies the shape of a Result so the rendering layer can handle
// every case exhaustively.
type Kind string

const (
	KindPnlSummary         Kind = "pnl_summary"
	KindPnlBreakdown       Kind = "pnl_breakdown"
	KindPropertySummary    Kind = "property_summary"
	KindPropertyComparison Kind = "property_comparison"
	KindTenantSummary      Kind = "tenant_summary"
	KindTenantRanking      Kind = "tenant_ranking"
	KindPropertyRanking    Kind = "property_ranking"
	KindPortfolioStats     Kind = "portfolio_stats"
	KindNotFound           Kind = "not_found"
	KindAmbiguous          Kind = "ambiguous"
	KindFailed             Kind = "failed"
)

// Result is the tagged union consumed by the response-formatting layer.
// Every terminal dispatch outcome is one of these variants; no fault crosses
// the boundary as a raised error.
type Result interface {
	Kind() Kind
}

// PnlSummary is the portfolio-wide profit and loss for a period.
type PnlSummary struct {
	Revenue     float64 `json:"revenue"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
	PeriodLabel string  `json:"period_label"`
}

func (PnlSummary) Kind() Kind { return KindPnlSummary }

// GroupAmount is one ledger group's total within a breakdown.
type GroupAmount struct {
	Group  string  `json:"group"`
	Amount float64 `json:"amount"`
}

// PnlBreakdown lists per-group totals ordered by descending absolute amount.
type PnlBreakdown struct {
	Groups      []GroupAmount `json:"groups"`
	PeriodLabel string        `json:"period_label"`
}

func (PnlBreakdown) Kind() Kind { return KindPnlBreakdown }

// PropertySummary is the revenue/expense/net view of a single property.
type PropertySummary struct {
	Name        string  `json:"name"`
	Revenue     float64 `json:"revenue"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
	TenantCount int     `json:"tenant_count"`
	PeriodLabel string  `json:"period_label"`
}

func (PropertySummary) Kind() Kind { return KindPropertySummary }

// PropertyComparison pairs two independent property summaries.
type PropertyComparison struct {
	Left  PropertySummary `json:"left"`
	Right PropertySummary `json:"right"`
}

func (PropertyComparison) Kind() Kind { return KindPropertyComparison }

// TenantSummary is the revenue-only view of a single tenant.
type TenantSummary struct {
	Name        string  `json:"name"`
	Revenue     float64 `json:"revenue"`
	PeriodLabel string  `json:"period_label"`
}

func (TenantSummary) Kind() Kind { return KindTenantSummary }

// TenantRevenue is one entry in a tenant ranking.
type TenantRevenue struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// TenantRanking lists tenants by revenue, descending.
type TenantRanking struct {
	Entries []TenantRevenue `json:"entries"`
	N       int             `json:"n"`
}

func (TenantRanking) Kind() Kind { return KindTenantRanking }

// PropertyNet is one entry in a property ranking.
type PropertyNet struct {
	Name string  `json:"name"`
	Net  float64 `json:"net"`
}

// PropertyRanking lists properties by net profit, descending.
type PropertyRanking struct {
	Entries []PropertyNet `json:"entries"`
	N       int           `json:"n"`
}

func (PropertyRanking) Kind() Kind { return KindPropertyRanking }

// PortfolioStats summarizes the whole dataset.
type PortfolioStats struct {
	PropertyCount int      `json:"property_count"`
	TenantCount   int      `json:"tenant_count"`
	Properties    []string `json:"properties"`
	Tenants       []string `json:"tenants"`
	TotalRevenue  float64  `json:"total_revenue"`
	TotalExpense  float64  `json:"total_expense"`
	Net           float64  `json:"net"`
	Years         []string `json:"years"`
}

func (PortfolioStats) Kind() Kind { return KindPortfolioStats }

// NotFound reports an entity reference that resolved to nothing above the
// similarity floor, with the closest canonical names as suggestions.
type NotFound struct {
	EntityKind  string   `json:"entity_kind"`
	RawQuery    string   `json:"raw_query"`
	Suggestions []string `json:"suggestions"`
}

func (NotFound) Kind() Kind { return KindNotFound }

// Ambiguous reports a request that omitted a required entity reference: the
// caller must ask a clarifying question rather than guess.
type Ambiguous struct {
	EntityKind string `json:"entity_kind"`
	Detail     string `json:"detail"`
}

func (Ambiguous) Kind() Kind { return KindAmbiguous }

// Failed is the fallback outcome for unrecognized intents and engine-level
// faults, carrying a diagnostic code instead of data.
type Failed struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (Failed) Kind() Kind { return KindFailed }
