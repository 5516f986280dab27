package resolve

import (
	"testing"

	"github.com/propcortex/propcortex/internal/ledger"
	_ "github.com/propcortex/propcortex/testing"
)

func testStore(t *testing.T) *ledger.Store {
	t.Helper()
	var rows []ledger.Row
	for _, p := range []struct {
		property string
		tenant   string
	}{
		{"Building 120", "Tenant 1"},
		{"Building 140", "Tenant 2"},
		{"Building 160", "Tenant 8"},
		{"Building 17", "Tenant 12"},
		{"Building 180", ""},
	} {
		rows = append(rows, ledger.Row{
			PropertyName: p.property,
			TenantName:   p.tenant,
			LedgerType:   ledger.TypeRevenue,
			Month:        "2024-M01",
			Quarter:      "2024-Q1",
			Year:         "2024",
			Profit:       100,
		})
	}
	store, err := ledger.Load(rows)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return store
}

func TestResolveExactMatch(t *testing.T) {
	r := New(testStore(t), 0)
	for _, name := range testStore(t).CanonicalProperties() {
		got := r.Resolve(KindProperty, name)
		if !got.Matched || got.Confidence != 1.0 || got.CanonicalName != name {
			t.Fatalf("exact resolve of %q: %+v", name, got)
		}
	}
}

func TestResolveIsCaseAndWhitespaceInsensitive(t *testing.T) {
	r := New(testStore(t), 0)
	got := r.Resolve(KindProperty, "  BUILDING   180 ")
	if !got.Matched || got.Confidence != 1.0 || got.CanonicalName != "Building 180" {
		t.Fatalf("normalized exact resolve: %+v", got)
	}
}

func TestResolveAbbreviation(t *testing.T) {
	r := New(testStore(t), 0)
	got := r.Resolve(KindProperty, "bldg 180")
	if !got.Matched {
		t.Fatalf("expected fuzzy match for 'bldg 180', got %+v", got)
	}
	if got.CanonicalName != "Building 180" {
		t.Fatalf("expected Building 180, got %q", got.CanonicalName)
	}
	if got.Confidence < 0.80 || got.Confidence >= 1.0 {
		t.Fatalf("confidence outside fuzzy range: %v", got.Confidence)
	}
}

func TestResolveTokenOrder(t *testing.T) {
	r := New(testStore(t), 0)
	got := r.Resolve(KindProperty, "180 building")
	if !got.Matched || got.CanonicalName != "Building 180" {
		t.Fatalf("token-order resolve: %+v", got)
	}
}

func TestResolveBelowFloor(t *testing.T) {
	r := New(testStore(t), 0)
	got := r.Resolve(KindProperty, "Warehouse Nine")
	if got.Matched {
		t.Fatalf("expected no match, got %+v", got)
	}
	if got.CanonicalName != "" {
		t.Fatalf("unmatched resolution must not carry a canonical name: %+v", got)
	}
	if got.Confidence <= 0 || got.Confidence >= 0.80 {
		t.Fatalf("top score should be reported below the floor: %v", got.Confidence)
	}
	suggestions := r.Suggest(KindProperty, "Warehouse Nine", 3)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %v", suggestions)
	}
}

func TestResolveTenants(t *testing.T) {
	r := New(testStore(t), 0)
	got := r.Resolve(KindTenant, "tenant8")
	if !got.Matched || got.CanonicalName != "Tenant 8" {
		t.Fatalf("tenant resolve: %+v", got)
	}
}

func TestResolveEmptyCanonicalSet(t *testing.T) {
	rows := []ledger.Row{{
		PropertyName: "Building 1", LedgerType: ledger.TypeRevenue,
		Month: "2024-M01", Quarter: "2024-Q1", Year: "2024", Profit: 1,
	}}
	store, err := ledger.Load(rows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := New(store, 0)
	got := r.Resolve(KindTenant, "Tenant 8")
	if got.Matched || got.Confidence != 0 {
		t.Fatalf("resolution against empty set: %+v", got)
	}
	if s := r.Suggest(KindTenant, "Tenant 8", 3); len(s) != 0 {
		t.Fatalf("no suggestions possible, got %v", s)
	}
}

func TestSuggestOrderingIsDeterministic(t *testing.T) {
	r := New(testStore(t), 0)
	first := r.Suggest(KindProperty, "building", 5)
	for i := 0; i < 10; i++ {
		again := r.Suggest(KindProperty, "building", 5)
		if len(again) != len(first) {
			t.Fatalf("suggestion count changed: %v vs %v", first, again)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("suggestion order changed: %v vs %v", first, again)
			}
		}
	}
	// "Building 17" scores highest (shortest name, same common subsequence);
	// the equal-scoring 12-character names then tie-break lexicographically.
	want := []string{"Building 17", "Building 120", "Building 140", "Building 160", "Building 180"}
	for i, name := range want {
		if first[i] != name {
			t.Fatalf("unexpected suggestion order: got %v want %v", first, want)
		}
	}
}

func TestThresholdIsConfigurable(t *testing.T) {
	strict := New(testStore(t), 0.95)
	if got := strict.Resolve(KindProperty, "bldg 180"); got.Matched {
		t.Fatalf("0.95 floor should reject 'bldg 180', got %+v", got)
	}
	loose := New(testStore(t), 0.50)
	if got := loose.Resolve(KindProperty, "bldg 180"); !got.Matched {
		t.Fatalf("0.50 floor should accept 'bldg 180', got %+v", got)
	}
}
