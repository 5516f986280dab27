package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/propcortex/propcortex/testing"
)

func TestNormalizeMapsKnownKeys(t *testing.T) {
	req := Normalize(Payload{
		Intent: " property_details ",
		Entities: map[string]any{
			"property": "Building 180",
			"year":     "2024",
			"quarter":  "2024-Q1",
			"limit":    float64(3),
		},
	})
	assert.Equal(t, "property_details", req.Intent)
	assert.Equal(t, "Building 180", req.Entities.Property)
	assert.Equal(t, "2024", req.Entities.Year)
	assert.Equal(t, "2024-Q1", req.Entities.Quarter)
	assert.Equal(t, 3, req.Entities.Limit)
}

func TestNormalizeAcceptsLegacyKeys(t *testing.T) {
	req := Normalize(Payload{
		Intent: "tenant_details",
		Entities: map[string]any{
			"property_name": "Building 17",
			"tenant_name":   "Tenant 8",
		},
	})
	assert.Equal(t, "Building 17", req.Entities.Property)
	assert.Equal(t, "Tenant 8", req.Entities.Tenant)
}

func TestNormalizeComparisonPair(t *testing.T) {
	req := Normalize(Payload{
		Intent: "property_compare",
		Entities: map[string]any{
			"comparison_properties": []any{"Building 180", "Building 120"},
		},
	})
	assert.Equal(t, "Building 180", req.Entities.Property)
	assert.Equal(t, "Building 120", req.Entities.Property2)
}

func TestNormalizeComparisonDoesNotOverride(t *testing.T) {
	req := Normalize(Payload{
		Intent: "property_compare",
		Entities: map[string]any{
			"property":              "Building 140",
			"comparison_properties": []any{"Building 180", "Building 120"},
		},
	})
	assert.Equal(t, "Building 140", req.Entities.Property)
	assert.Equal(t, "Building 120", req.Entities.Property2)
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	req := Normalize(Payload{
		Intent: "pnl_summary",
		Entities: map[string]any{
			"mystery_field": "ignore me",
			"year":          "2023",
		},
	})
	assert.Equal(t, "2023", req.Entities.Year)
	assert.Empty(t, req.Entities.Property)
	assert.Empty(t, req.Entities.Tenant)
}

func TestNormalizeCoercesLimit(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  int
	}{
		{"json number", float64(7), 7},
		{"native int", 4, 4},
		{"numeric string", " 10 ", 10},
		{"garbage string", "ten", 0},
		{"missing", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entities := map[string]any{}
			if tc.value != nil {
				entities["limit"] = tc.value
			}
			req := Normalize(Payload{Intent: "tenant_ranking", Entities: entities})
			assert.Equal(t, tc.want, req.Entities.Limit)
		})
	}
}

func TestNormalizeIntentPassesThrough(t *testing.T) {
	req := Normalize(Payload{Intent: "made_up_intent"})
	assert.Equal(t, "made_up_intent", req.Intent)
}
