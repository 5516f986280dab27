// Package resolve maps free-text property and tenant name guesses to the
// canonical spellings in the ledger store, using exact then fuzzy matching.
package resolve

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/propcortex/propcortex/internal/ledger"
)

// DefaultThreshold is the similarity floor below which a fuzzy candidate is
// rejected. It mirrors the dataset owner's tuning and is configurable per
// resolver, never hardcoded at call sites.
const DefaultThreshold = 0.80

// Kind selects which canonical set a query resolves against.
type Kind string

const (
	KindProperty Kind = "property"
	KindTenant   Kind = "tenant"
)

// Resolved is the outcome of one resolution attempt. Confidence carries the
// top similarity score even when no candidate cleared the floor, so callers
// can rank suggestions.
type Resolved struct {
	RawQuery      string
	CanonicalName string
	Confidence    float64
	Matched       bool
}

// Resolver resolves raw name guesses against a store snapshot.
type Resolver struct {
	store     *ledger.Store
	threshold float64
	fold      cases.Caser
}

// New builds a resolver over the given store. A non-positive threshold
// falls back to DefaultThreshold.
func New(store *ledger.Store, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{store: store, threshold: threshold, fold: cases.Fold()}
}

func (r *Resolver) canonical(kind Kind) []string {
	if kind == KindTenant {
		return r.store.CanonicalTenants()
	}
	return r.store.CanonicalProperties()
}

// normalize case-folds, trims, and collapses internal whitespace.
func (r *Resolver) normalize(s string) string {
	return strings.Join(strings.Fields(r.fold.String(s)), " ")
}

type scored struct {
	name  string
	score float64
}

// rank scores every canonical name against the normalized query, descending,
// with deterministic tie-breaks: shortest canonical name first, then
// lexicographic.
func (r *Resolver) rank(kind Kind, normalized string) []scored {
	names := r.canonical(kind)
	out := make([]scored, 0, len(names))
	for _, name := range names {
		out = append(out, scored{name: name, score: similarity(normalized, r.normalize(name))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) < len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}

// Resolve maps a raw name guess to a canonical name. Exact normalized
// matches return confidence 1.0; otherwise the best fuzzy candidate wins if
// it clears the threshold. On a miss the top score is still reported.
func (r *Resolver) Resolve(kind Kind, rawQuery string) Resolved {
	normalized := r.normalize(rawQuery)
	for _, name := range r.canonical(kind) {
		if r.normalize(name) == normalized {
			return Resolved{RawQuery: rawQuery, CanonicalName: name, Confidence: 1.0, Matched: true}
		}
	}

	ranked := r.rank(kind, normalized)
	if len(ranked) == 0 {
		return Resolved{RawQuery: rawQuery}
	}
	best := ranked[0]
	if best.score >= r.threshold {
		return Resolved{RawQuery: rawQuery, CanonicalName: best.name, Confidence: best.score, Matched: true}
	}
	return Resolved{RawQuery: rawQuery, Confidence: best.score}
}

// Suggest returns up to limit canonical names ordered by similarity to the
// raw query, for populating not-found suggestions.
func (r *Resolver) Suggest(kind Kind, rawQuery string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	ranked := r.rank(kind, r.normalize(rawQuery))
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.name)
	}
	return out
}

// Threshold exposes the configured similarity floor.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}
