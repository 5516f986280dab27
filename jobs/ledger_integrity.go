package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/propcortex/propcortex/internal/ledger"
)

const defaultDetailRows = 20

// IntegrityScanner logs ledger rows whose ledger_type contradicts the sign
// of profit. The rows stay in the dataset untouched; the scan only makes
// the disagreement visible.
type IntegrityScanner struct {
	handle *ledger.Handle
	logger *slog.Logger
}

// NewIntegrityScanner wires the scanner to the live store handle.
func NewIntegrityScanner(handle *ledger.Handle, logger *slog.Logger) *IntegrityScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityScanner{handle: handle, logger: logger}
}

// Handle processes a TaskLedgerIntegrity task.
func (s *IntegrityScanner) Handle(ctx context.Context, task *asynq.Task) error {
	var payload IntegrityPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
	}
	maxDetail := payload.MaxDetailRows
	if maxDetail <= 0 {
		maxDetail = defaultDetailRows
	}

	store := s.handle.Current()
	logged := 0
	for i, row := range store.Rows() {
		if !typeDisagrees(row) {
			continue
		}
		if logged < maxDetail {
			s.logger.Warn("ledger type disagrees with profit sign",
				slog.Int("row", i),
				slog.String("property", row.PropertyName),
				slog.String("ledger_type", string(row.LedgerType)),
				slog.String("month", row.Month),
				slog.Float64("profit", row.Profit))
		}
		logged++
	}
	s.logger.Info("ledger integrity scan finished",
		slog.Int("rows", store.Len()),
		slog.Int("disagreeing_rows", logged))
	return nil
}

func typeDisagrees(row ledger.Row) bool {
	switch {
	case row.Profit > 0:
		return row.LedgerType == ledger.TypeExpense
	case row.Profit < 0:
		return row.LedgerType == ledger.TypeRevenue
	default:
		return false
	}
}
