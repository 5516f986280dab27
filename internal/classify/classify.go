// Package classify covers the upstream classifier boundary: it normalizes
// the free-form classifier payload into the fixed intent-plus-entities shape
// the dispatcher accepts, and provides an OpenAI-backed router client.
package classify

import (
	"strconv"
	"strings"

	"github.com/propcortex/propcortex/internal/dispatch"
)

// Payload is the dynamically shaped output of the external classifier. Only
// known keys survive normalization; arbitrary new keys are dropped, never
// interpreted.
type Payload struct {
	Intent   string         `json:"intent"`
	Entities map[string]any `json:"entities"`
}

// Normalize converts a classifier payload into a dispatch request. Entity
// keys are accepted under both this service's names and the classifier's
// legacy names (property_name, tenant_name, comparison_properties). The
// intent string passes through untouched: the dispatcher owns the decision
// of what counts as recognized.
func Normalize(p Payload) dispatch.Request {
	req := dispatch.Request{Intent: strings.TrimSpace(p.Intent)}

	req.Entities.Property = stringValue(p.Entities, "property", "property_name")
	req.Entities.Property2 = stringValue(p.Entities, "property2")
	req.Entities.Tenant = stringValue(p.Entities, "tenant", "tenant_name")
	req.Entities.Year = stringValue(p.Entities, "year")
	req.Entities.Quarter = stringValue(p.Entities, "quarter")
	req.Entities.Limit = intValue(p.Entities, "limit")

	if pair, ok := p.Entities["comparison_properties"].([]any); ok {
		if len(pair) > 0 && req.Entities.Property == "" {
			req.Entities.Property, _ = pair[0].(string)
		}
		if len(pair) > 1 && req.Entities.Property2 == "" {
			req.Entities.Property2, _ = pair[1].(string)
		}
	}
	return req
}

func stringValue(entities map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := entities[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intValue(entities map[string]any, key string) int {
	switch v := entities[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
