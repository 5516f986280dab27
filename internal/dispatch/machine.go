// Package dispatch routes a classified request through entity resolution
// and query execution. The machine walks Start -> Resolving -> Executing and
// terminates in Succeeded, NotFound, Ambiguous, or Failed; every terminal
// state carries a well-typed result and no fault escapes the boundary.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/propcortex/propcortex/internal/ledger"
	"github.com/propcortex/propcortex/internal/query"
	"github.com/propcortex/propcortex/internal/resolve"
)

// Intent values recognized by the machine. Anything else falls through to
// the Failed outcome.
const (
	IntentPnlSummary      = "pnl_summary"
	IntentPnlBreakdown    = "pnl_breakdown"
	IntentPropertyDetails = "property_details"
	IntentPropertyCompare = "property_compare"
	IntentTenantDetails   = "tenant_details"
	IntentTenantRanking   = "tenant_ranking"
)

// Diagnostic codes carried by Failed outcomes.
const (
	CodeUnrecognizedIntent = "unrecognized_intent"
	CodeConflictingPeriod  = "conflicting_period"
	CodeQueryFailed        = "query_failed"
)

// DefaultRankingLimit applies when a ranking request does not say how many
// entries it wants.
const DefaultRankingLimit = 5

const suggestionLimit = 3

// Entities are the raw extracted references accompanying an intent. Values
// are user-provided substrings, possibly misspelled.
type Entities struct {
	Property  string `json:"property,omitempty"`
	Property2 string `json:"property2,omitempty"`
	Tenant    string `json:"tenant,omitempty"`
	Year      string `json:"year,omitempty"`
	Quarter   string `json:"quarter,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Fingerprint returns a stable identity string for the entities, used as a
// cache-key fragment.
func (e Entities) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d", e.Property, e.Property2, e.Tenant, e.Year, e.Quarter, e.Limit)
}

// Request is one classified question as delivered by the upstream
// classifier boundary.
type Request struct {
	Intent   string   `json:"intent"`
	Entities Entities `json:"entities"`
}

// StoreProvider hands out the current immutable store snapshot. One
// snapshot is taken per dispatch so a concurrent reload never changes
// results mid-request.
type StoreProvider interface {
	Current() *ledger.Store
}

// Machine is the orchestration core. It is stateless between requests; the
// per-request state lives on the stack of Dispatch.
type Machine struct {
	provider  StoreProvider
	threshold float64
	logger    *slog.Logger
}

// NewMachine wires the dispatcher to a store provider and a fuzzy-match
// threshold.
func NewMachine(provider StoreProvider, threshold float64, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{provider: provider, threshold: threshold, logger: logger}
}

type state int

const (
	stateStart state = iota
	stateResolving
	stateExecuting
	stateTerminal
)

// reference names one entity the intent requires before execution.
type reference struct {
	kind resolve.Kind
	raw  string
	// set receives the canonical name once resolved.
	set func(*resolved, string)
}

type resolved struct {
	property  string
	property2 string
	tenant    string
}

// Dispatch runs one classified request to a terminal outcome.
func (m *Machine) Dispatch(req Request) query.Result {
	store := m.provider.Current()
	resolver := resolve.New(store, m.threshold)
	engine := query.NewEngine(store)

	var (
		st   = stateStart
		refs []reference
		out  query.Result
		res  resolved
	)

	for st != stateTerminal {
		switch st {
		case stateStart:
			if !recognized(req.Intent) {
				m.logger.Info("unrecognized intent", slog.String("intent", req.Intent))
				out = query.Failed{Code: CodeUnrecognizedIntent, Detail: req.Intent}
				st = stateTerminal
				continue
			}
			refs = required(req)
			st = stateResolving

		case stateResolving:
			if kind, detail := missingReference(req); kind != "" {
				out = query.Ambiguous{EntityKind: kind, Detail: detail}
				st = stateTerminal
				continue
			}
			failed := false
			for _, ref := range refs {
				r := resolver.Resolve(ref.kind, ref.raw)
				if !r.Matched {
					out = query.NotFound{
						EntityKind:  string(ref.kind),
						RawQuery:    ref.raw,
						Suggestions: resolver.Suggest(ref.kind, ref.raw, suggestionLimit),
					}
					failed = true
					break
				}
				m.logger.Debug("entity resolved",
					slog.String("kind", string(ref.kind)),
					slog.String("raw", ref.raw),
					slog.String("canonical", r.CanonicalName),
					slog.Float64("confidence", r.Confidence))
				ref.set(&res, r.CanonicalName)
			}
			if failed {
				st = stateTerminal
				continue
			}
			st = stateExecuting

		case stateExecuting:
			result, err := m.execute(engine, req, res)
			if err != nil {
				out = failure(err)
				st = stateTerminal
				continue
			}
			out = result
			st = stateTerminal
		}
	}
	return out
}

func recognized(intent string) bool {
	switch intent {
	case IntentPnlSummary, IntentPnlBreakdown, IntentPropertyDetails,
		IntentPropertyCompare, IntentTenantDetails, IntentTenantRanking:
		return true
	}
	return false
}

// missingReference reports the first required entity reference absent from
// the request, or "" when all are present. Missing references are
// insufficient information, distinct from a failed resolution.
func missingReference(req Request) (kind, detail string) {
	switch req.Intent {
	case IntentPropertyDetails:
		if req.Entities.Property == "" {
			return "property", "the request does not say which property is meant"
		}
	case IntentPropertyCompare:
		if req.Entities.Property == "" || req.Entities.Property2 == "" {
			return "property", "a comparison needs two property names"
		}
	case IntentTenantDetails:
		if req.Entities.Tenant == "" {
			return "tenant", "the request does not say which tenant is meant"
		}
	}
	return "", ""
}

func required(req Request) []reference {
	switch req.Intent {
	case IntentPropertyDetails:
		return []reference{
			{kind: resolve.KindProperty, raw: req.Entities.Property, set: func(r *resolved, v string) { r.property = v }},
		}
	case IntentPropertyCompare:
		return []reference{
			{kind: resolve.KindProperty, raw: req.Entities.Property, set: func(r *resolved, v string) { r.property = v }},
			{kind: resolve.KindProperty, raw: req.Entities.Property2, set: func(r *resolved, v string) { r.property2 = v }},
		}
	case IntentTenantDetails:
		return []reference{
			{kind: resolve.KindTenant, raw: req.Entities.Tenant, set: func(r *resolved, v string) { r.tenant = v }},
		}
	}
	return nil
}

func (m *Machine) execute(engine *query.Engine, req Request, res resolved) (query.Result, error) {
	year := req.Entities.Year
	switch req.Intent {
	case IntentPnlSummary:
		out, err := engine.TotalPnl(query.Period{Year: year, Quarter: req.Entities.Quarter})
		return out, err
	case IntentPnlBreakdown:
		out, err := engine.PnlBreakdown(year)
		return out, err
	case IntentPropertyDetails:
		out, err := engine.PropertySummary(res.property, year)
		return out, err
	case IntentPropertyCompare:
		out, err := engine.CompareProperties(res.property, res.property2, year)
		return out, err
	case IntentTenantDetails:
		out, err := engine.TenantRevenue(res.tenant, year)
		return out, err
	case IntentTenantRanking:
		limit := req.Entities.Limit
		if limit == 0 {
			limit = DefaultRankingLimit
		}
		out, err := engine.TopTenants(limit, year)
		return out, err
	}
	return nil, errors.New("dispatch: unreachable intent " + req.Intent)
}

func failure(err error) query.Failed {
	if errors.Is(err, query.ErrConflictingPeriod) {
		return query.Failed{Code: CodeConflictingPeriod, Detail: err.Error()}
	}
	return query.Failed{Code: CodeQueryFailed, Detail: err.Error()}
}
