package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes that indicate the ledger relation does not match the
// expected schema.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// PGSource reads ledger rows from a Postgres table for deployments that keep
// the dataset in a database instead of a file export.
type PGSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewPGSource wires a connection pool to a ledger table.
func NewPGSource(pool *pgxpool.Pool, table string) *PGSource {
	if table == "" {
		table = "ledger_rows"
	}
	return &PGSource{pool: pool, table: table}
}

// Rows fetches every ledger row in insertion order. Missing relations or
// columns are reported as schema errors so startup refuses to serve.
func (s *PGSource) Rows(ctx context.Context) ([]Row, error) {
	query := fmt.Sprintf(`SELECT entity_name, property_name, COALESCE(tenant_name, ''),
		ledger_type, ledger_group, ledger_category, ledger_code, ledger_description,
		month, quarter, year, profit FROM %s ORDER BY id`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgUndefinedTable || pgErr.Code == pgUndefinedColumn) {
			return nil, &SchemaError{Field: s.table, Detail: pgErr.Message}
		}
		return nil, fmt.Errorf("ledger: query %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var typ string
		if err := rows.Scan(
			&row.EntityName, &row.PropertyName, &row.TenantName,
			&typ, &row.LedgerGroup, &row.LedgerCategory, &row.LedgerCode,
			&row.LedgerDescription, &row.Month, &row.Quarter, &row.Year, &row.Profit,
		); err != nil {
			return nil, fmt.Errorf("ledger: scan row: %w", err)
		}
		row.LedgerType = Type(typ)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read rows: %w", err)
	}
	return out, nil
}

// Load reads, validates, and indexes the Postgres dataset in one step.
func (s *PGSource) Load(ctx context.Context) (*Store, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return Load(rows)
}
