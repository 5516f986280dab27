// Package answer turns dispatch results into human-readable text and caches
// rendered answers in Redis.
package answer

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/propcortex/propcortex/internal/query"
)

// Renderer formats every QueryResult variant deterministically. Currency is
// always $X,XXX.XX.
type Renderer struct {
	p *message.Printer
}

// NewRenderer builds an English-locale renderer.
func NewRenderer() *Renderer {
	return &Renderer{p: message.NewPrinter(language.English)}
}

func (r *Renderer) money(v float64) string {
	if v < 0 {
		return r.p.Sprintf("-$%.2f", -v)
	}
	return r.p.Sprintf("$%.2f", v)
}

// Render produces the answer text for a result. The switch is exhaustive
// over the result union; an unknown variant falls back to a generic answer.
func (r *Renderer) Render(res query.Result) string {
	switch v := res.(type) {
	case query.PnlSummary:
		return fmt.Sprintf("P&L for %s: revenue %s, expenses %s, net %s.",
			v.PeriodLabel, r.money(v.Revenue), r.money(v.Expense), r.money(v.Net))
	case query.PnlBreakdown:
		return r.renderBreakdown(v)
	case query.PropertySummary:
		return fmt.Sprintf("%s (%s): revenue %s, expenses %s, net %s across %d tenants.",
			v.Name, v.PeriodLabel, r.money(v.Revenue), r.money(v.Expense), r.money(v.Net), v.TenantCount)
	case query.PropertyComparison:
		return r.renderComparison(v)
	case query.TenantSummary:
		return fmt.Sprintf("%s generated %s in revenue over %s.", v.Name, r.money(v.Revenue), v.PeriodLabel)
	case query.TenantRanking:
		return r.renderTenantRanking(v)
	case query.PropertyRanking:
		return r.renderPropertyRanking(v)
	case query.PortfolioStats:
		return fmt.Sprintf("The portfolio covers %d properties and %d tenants: revenue %s, expenses %s, net %s (years %s).",
			v.PropertyCount, v.TenantCount, r.money(v.TotalRevenue), r.money(v.TotalExpense), r.money(v.Net),
			strings.Join(v.Years, ", "))
	case query.NotFound:
		msg := fmt.Sprintf("I could not find a %s matching %q in the dataset.", v.EntityKind, v.RawQuery)
		if len(v.Suggestions) > 0 {
			msg += " Did you mean: " + strings.Join(v.Suggestions, ", ") + "?"
		}
		return msg
	case query.Ambiguous:
		return fmt.Sprintf("I need more information: %s. Please name the %s explicitly.", v.Detail, v.EntityKind)
	case query.Failed:
		if v.Code == "conflicting_period" {
			return "The requested year and quarter do not agree; please pick one period."
		}
		return "I can only answer questions about the property portfolio's P&L, properties, and tenants."
	default:
		return "I could not produce an answer for that request."
	}
}

func (r *Renderer) renderBreakdown(v query.PnlBreakdown) string {
	if len(v.Groups) == 0 {
		return fmt.Sprintf("No ledger activity recorded for %s.", v.PeriodLabel)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "P&L breakdown for %s:", v.PeriodLabel)
	for _, g := range v.Groups {
		fmt.Fprintf(&b, "\n- %s: %s", titleCase(g.Group), r.money(g.Amount))
	}
	return b.String()
}

func (r *Renderer) renderComparison(v query.PropertyComparison) string {
	verdict := v.Left.Name
	if v.Right.Net > v.Left.Net {
		verdict = v.Right.Name
	}
	return fmt.Sprintf("%s: net %s vs %s: net %s. %s performs better.",
		v.Left.Name, r.money(v.Left.Net), v.Right.Name, r.money(v.Right.Net), verdict)
}

func (r *Renderer) renderTenantRanking(v query.TenantRanking) string {
	if len(v.Entries) == 0 {
		return "No tenant revenue recorded for that period."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d tenants by revenue:", len(v.Entries))
	for i, e := range v.Entries {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, e.Name, r.money(e.Revenue))
	}
	return b.String()
}

func (r *Renderer) renderPropertyRanking(v query.PropertyRanking) string {
	if len(v.Entries) == 0 {
		return "No property activity recorded for that period."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Properties ranked by net P&L:")
	for i, e := range v.Entries {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, e.Name, r.money(e.Net))
	}
	return b.String()
}

// titleCase converts ledger group keys like "rental_income" to
// "Rental Income" for display.
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
