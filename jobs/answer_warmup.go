package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/propcortex/propcortex/internal/answer"
	"github.com/propcortex/propcortex/internal/dispatch"
	"github.com/propcortex/propcortex/internal/ledger"
)

// AnswerWarmup pre-renders the portfolio-wide answers users ask most, so
// the first request after a reload hits a warm cache.
type AnswerWarmup struct {
	handle   *ledger.Handle
	machine  *dispatch.Machine
	renderer *answer.Renderer
	cache    *answer.Cache
	logger   *slog.Logger
}

// NewAnswerWarmup wires the warmup job.
func NewAnswerWarmup(handle *ledger.Handle, machine *dispatch.Machine, renderer *answer.Renderer, cache *answer.Cache, logger *slog.Logger) *AnswerWarmup {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerWarmup{handle: handle, machine: machine, renderer: renderer, cache: cache, logger: logger}
}

// Handle processes a TaskAnswerWarmup task.
func (j *AnswerWarmup) Handle(ctx context.Context, task *asynq.Task) error {
	var payload WarmupPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
	}
	years := payload.Years
	if len(years) == 0 {
		years = j.handle.Current().Years()
	}

	requests := []dispatch.Request{
		{Intent: dispatch.IntentPnlSummary},
		{Intent: dispatch.IntentPnlBreakdown},
		{Intent: dispatch.IntentTenantRanking},
	}
	for _, year := range years {
		requests = append(requests,
			dispatch.Request{Intent: dispatch.IntentPnlSummary, Entities: dispatch.Entities{Year: year}},
			dispatch.Request{Intent: dispatch.IntentPnlBreakdown, Entities: dispatch.Entities{Year: year}},
		)
	}

	warmed := 0
	for _, req := range requests {
		result := j.machine.Dispatch(req)
		key, err := j.cache.Key(ctx, req.Intent, req.Entities.Fingerprint())
		if err != nil {
			return err
		}
		if _, err := j.cache.Fetch(ctx, key, func() (string, error) {
			return j.renderer.Render(result), nil
		}); err != nil {
			return err
		}
		warmed++
	}
	j.logger.Info("answer cache warmed", slog.Int("entries", warmed))
	return nil
}
