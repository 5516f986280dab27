package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var requiredColumns = []string{
	"entity_name",
	"property_name",
	"tenant_name",
	"ledger_type",
	"ledger_group",
	"ledger_category",
	"ledger_code",
	"ledger_description",
	"month",
	"quarter",
	"year",
	"profit",
}

// ReadCSV parses ledger rows from a CSV export of the dataset. The header
// row must contain every required column; extra columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("read header: %v", err)}
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Field: col, Detail: "column missing"}
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SchemaError{Detail: fmt.Sprintf("line %d: %v", line, err)}
		}
		field := func(col string) string { return record[index[col]] }

		code, err := strconv.ParseFloat(field("ledger_code"), 64)
		if err != nil {
			return nil, &SchemaError{Field: "ledger_code", Detail: fmt.Sprintf("line %d: %q is not numeric", line, field("ledger_code"))}
		}
		profit, err := strconv.ParseFloat(field("profit"), 64)
		if err != nil {
			return nil, &SchemaError{Field: "profit", Detail: fmt.Sprintf("line %d: %q is not numeric", line, field("profit"))}
		}

		rows = append(rows, Row{
			EntityName:        field("entity_name"),
			PropertyName:      field("property_name"),
			TenantName:        field("tenant_name"),
			LedgerType:        Type(field("ledger_type")),
			LedgerGroup:       field("ledger_group"),
			LedgerCategory:    field("ledger_category"),
			LedgerCode:        int(code),
			LedgerDescription: field("ledger_description"),
			Month:             field("month"),
			Quarter:           field("quarter"),
			Year:              field("year"),
			Profit:            profit,
		})
	}
	return rows, nil
}

// LoadCSVFile reads, validates, and indexes a CSV dataset in one step.
func LoadCSVFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return Load(rows)
}
