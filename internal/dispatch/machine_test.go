package dispatch

import (
	"testing"

	"github.com/propcortex/propcortex/internal/ledger"
	"github.com/propcortex/propcortex/internal/query"
	"github.com/propcortex/propcortex/internal/resolve"
	_ "github.com/propcortex/propcortex/testing"
)

func testHandle(t *testing.T) *ledger.Handle {
	t.Helper()
	rows := []ledger.Row{
		{PropertyName: "Building 120", TenantName: "Tenant 1", LedgerType: ledger.TypeRevenue, LedgerGroup: "rental_income", Month: "2024-M01", Quarter: "2024-Q1", Year: "2024", Profit: 700},
		{PropertyName: "Building 180", TenantName: "Tenant 8", LedgerType: ledger.TypeRevenue, LedgerGroup: "rental_income", Month: "2024-M01", Quarter: "2024-Q1", Year: "2024", Profit: 1000},
		{PropertyName: "Building 180", TenantName: "", LedgerType: ledger.TypeExpense, LedgerGroup: "maintenance", Month: "2024-M02", Quarter: "2024-Q1", Year: "2024", Profit: -400},
	}
	store, err := ledger.Load(rows)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return ledger.NewHandle(store)
}

func testMachine(t *testing.T) *Machine {
	t.Helper()
	return NewMachine(testHandle(t), resolve.DefaultThreshold, nil)
}

func TestDispatchPnlSummary(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPnlSummary, Entities: Entities{Year: "2024"}})
	summary, ok := out.(query.PnlSummary)
	if !ok {
		t.Fatalf("expected PnlSummary, got %T", out)
	}
	if summary.Net != 1300 {
		t.Fatalf("unexpected net: %+v", summary)
	}
}

func TestDispatchResolvesFuzzyProperty(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPropertyDetails, Entities: Entities{Property: "bldg 180"}})
	summary, ok := out.(query.PropertySummary)
	if !ok {
		t.Fatalf("expected PropertySummary, got %T: %+v", out, out)
	}
	if summary.Name != "Building 180" || summary.Net != 600 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestDispatchNotFound(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPropertyDetails, Entities: Entities{Property: "Building 999"}})
	nf, ok := out.(query.NotFound)
	if !ok {
		t.Fatalf("expected NotFound, got %T: %+v", out, out)
	}
	if nf.EntityKind != "property" || nf.RawQuery != "Building 999" {
		t.Fatalf("unexpected not-found detail: %+v", nf)
	}
	if len(nf.Suggestions) == 0 {
		t.Fatalf("not-found outcome should carry suggestions: %+v", nf)
	}
}

func TestDispatchAmbiguousWithoutSecondProperty(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPropertyCompare, Entities: Entities{Property: "Building 180"}})
	amb, ok := out.(query.Ambiguous)
	if !ok {
		t.Fatalf("expected Ambiguous, got %T: %+v", out, out)
	}
	if amb.EntityKind != "property" {
		t.Fatalf("unexpected ambiguous detail: %+v", amb)
	}
}

func TestDispatchAmbiguousWithoutTenant(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentTenantDetails})
	if _, ok := out.(query.Ambiguous); !ok {
		t.Fatalf("expected Ambiguous, got %T: %+v", out, out)
	}
}

func TestDispatchUnrecognizedIntent(t *testing.T) {
	m := testMachine(t)
	for _, intent := range []string{"fallback", "unknown_intent", ""} {
		out := m.Dispatch(Request{Intent: intent})
		failed, ok := out.(query.Failed)
		if !ok {
			t.Fatalf("intent %q: expected Failed, got %T", intent, out)
		}
		if failed.Code != CodeUnrecognizedIntent {
			t.Fatalf("intent %q: unexpected code %q", intent, failed.Code)
		}
	}
}

func TestDispatchConflictingPeriod(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPnlSummary, Entities: Entities{Year: "2023", Quarter: "2024-Q1"}})
	failed, ok := out.(query.Failed)
	if !ok {
		t.Fatalf("expected Failed, got %T: %+v", out, out)
	}
	if failed.Code != CodeConflictingPeriod {
		t.Fatalf("unexpected code: %+v", failed)
	}
}

func TestDispatchCompare(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentPropertyCompare, Entities: Entities{Property: "building 180", Property2: "building 120"}})
	cmp, ok := out.(query.PropertyComparison)
	if !ok {
		t.Fatalf("expected PropertyComparison, got %T: %+v", out, out)
	}
	if cmp.Left.Name != "Building 180" || cmp.Right.Name != "Building 120" {
		t.Fatalf("unexpected comparison: %+v", cmp)
	}
}

func TestDispatchRankingDefaultLimit(t *testing.T) {
	m := testMachine(t)
	out := m.Dispatch(Request{Intent: IntentTenantRanking})
	ranking, ok := out.(query.TenantRanking)
	if !ok {
		t.Fatalf("expected TenantRanking, got %T: %+v", out, out)
	}
	if ranking.N != DefaultRankingLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultRankingLimit, ranking.N)
	}
	if len(ranking.Entries) != 2 || ranking.Entries[0].Name != "Tenant 8" {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
}

func TestDispatchSnapshotsStorePerRequest(t *testing.T) {
	handle := testHandle(t)
	m := NewMachine(handle, resolve.DefaultThreshold, nil)

	before := m.Dispatch(Request{Intent: IntentPnlSummary})
	if before.(query.PnlSummary).Net != 1300 {
		t.Fatalf("unexpected pre-swap net: %+v", before)
	}

	replacement, err := ledger.Load([]ledger.Row{{
		PropertyName: "Building 120", LedgerType: ledger.TypeRevenue,
		LedgerGroup: "rental_income", Month: "2025-M01", Quarter: "2025-Q1",
		Year: "2025", Profit: 50,
	}})
	if err != nil {
		t.Fatalf("load replacement: %v", err)
	}
	handle.Swap(replacement)

	after := m.Dispatch(Request{Intent: IntentPnlSummary})
	if after.(query.PnlSummary).Net != 50 {
		t.Fatalf("post-swap dispatch should see the new store: %+v", after)
	}
}
