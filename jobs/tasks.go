// Package jobs wires the background worker: a periodic ledger integrity
// scan and an answer-cache warmup for the common portfolio questions.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans the store for rows whose ledger type
	// contradicts the sign of profit.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskAnswerWarmup primes the answer cache with portfolio-wide queries.
	TaskAnswerWarmup = "answer:warmup"
)

// IntegrityPayload bounds how many disagreeing rows the scan logs in detail.
type IntegrityPayload struct {
	MaxDetailRows int `json:"max_detail_rows"`
}

// NewLedgerIntegrityTask builds the integrity-scan task.
func NewLedgerIntegrityTask(payload IntegrityPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, body, asynq.Queue(QueueDefault)), nil
}

// WarmupPayload lists the years to pre-render, in addition to the all-time
// summary.
type WarmupPayload struct {
	Years []string `json:"years"`
}

// NewAnswerWarmupTask builds the cache-warmup task.
func NewAnswerWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnswerWarmup, body, asynq.Queue(QueueDefault)), nil
}
