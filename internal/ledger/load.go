package ledger

import (
	"fmt"
	"regexp"
)

// SchemaError is fatal at load time: a required column is missing or a value
// has the wrong semantic type. A store that fails its schema check must not
// serve queries.
type SchemaError struct {
	Field  string
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("ledger: schema error: %s", e.Detail)
	}
	return fmt.Sprintf("ledger: schema error on %q: %s", e.Field, e.Detail)
}

var (
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	monthPattern   = regexp.MustCompile(`^\d{4}-M\d{2}$`)
	quarterPattern = regexp.MustCompile(`^\d{4}-Q[1-4]$`)
)

// Load validates rows and builds an immutable Store. It fails with a
// *SchemaError when a row violates the fixed ledger schema. Rows whose
// ledger type disagrees with the sign of profit are counted but kept
// verbatim; see Store.Inconsistencies.
func Load(rows []Row) (*Store, error) {
	properties := make(map[string]struct{})
	tenants := make(map[string]struct{})
	inconsistent := 0

	for i, row := range rows {
		if row.PropertyName == "" {
			return nil, &SchemaError{Field: "property_name", Detail: fmt.Sprintf("row %d: empty", i)}
		}
		if !row.LedgerType.Valid() {
			return nil, &SchemaError{Field: "ledger_type", Detail: fmt.Sprintf("row %d: unknown value %q", i, row.LedgerType)}
		}
		if !yearPattern.MatchString(row.Year) {
			return nil, &SchemaError{Field: "year", Detail: fmt.Sprintf("row %d: %q is not a 4-digit year", i, row.Year)}
		}
		if !monthPattern.MatchString(row.Month) {
			return nil, &SchemaError{Field: "month", Detail: fmt.Sprintf("row %d: %q does not match YYYY-M##", i, row.Month)}
		}
		if !quarterPattern.MatchString(row.Quarter) {
			return nil, &SchemaError{Field: "quarter", Detail: fmt.Sprintf("row %d: %q does not match YYYY-Q#", i, row.Quarter)}
		}
		properties[row.PropertyName] = struct{}{}
		if row.TenantName != "" {
			tenants[row.TenantName] = struct{}{}
		}
		if signDisagrees(row) {
			inconsistent++
		}
	}

	store := &Store{
		rows:         append([]Row(nil), rows...),
		properties:   sortedKeys(properties),
		tenants:      sortedKeys(tenants),
		inconsistent: inconsistent,
	}
	return store, nil
}

// signDisagrees reports whether the row's ledger type contradicts the sign
// of its profit. Zero-profit rows are never flagged.
func signDisagrees(row Row) bool {
	switch {
	case row.Profit > 0:
		return row.LedgerType == TypeExpense
	case row.Profit < 0:
		return row.LedgerType == TypeRevenue
	default:
		return false
	}
}
