package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/propcortex/propcortex/internal/dispatch"
)

const routerSystemPrompt = `You classify questions about a real-estate ledger portfolio.

Classify the question into exactly one intent:
- pnl_summary: total P&L for a period
- pnl_breakdown: revenue/expense breakdown by category
- property_details: a specific property's performance
- property_compare: compare two properties
- tenant_details: a specific tenant's revenue
- tenant_ranking: top/best tenants
- fallback: unclear or off-topic

Extract entities when present:
- property: property name (e.g. "Building 180")
- property2: second property for comparisons
- tenant: tenant name (e.g. "Tenant 8")
- year: 4-digit year (e.g. "2024")
- quarter: quarter label (e.g. "2024-Q1")
- limit: result count for rankings (e.g. 5 for "top 5")

Respond with JSON only: {"intent": "...", "entities": {...}}.
Use only the intents listed above; when unsure, use "fallback".`

// Router classifies natural-language questions through an OpenAI chat model.
// It is the concrete client for the external text-understanding collaborator
// and never returns a raw model fault: classification problems degrade to
// the fallback intent.
type Router struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewRouter builds a classifier client. Model defaults to gpt-4o-mini.
func NewRouter(apiKey, model string, logger *slog.Logger) *Router {
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{client: openai.NewClient(apiKey), model: model, logger: logger}
}

// Classify maps a question to a dispatch request. Transport errors are
// returned to the caller; malformed model output is relabeled as fallback.
func (r *Router) Classify(ctx context.Context, question string) (dispatch.Request, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: routerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Question: %s\nClassify and extract entities. JSON only.", question)},
		},
	})
	if err != nil {
		return dispatch.Request{}, fmt.Errorf("classify: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return dispatch.Request{Intent: "fallback"}, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")

	var payload Payload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		r.logger.Warn("classifier returned non-JSON payload", slog.Any("error", err))
		return dispatch.Request{Intent: "fallback"}, nil
	}
	return Normalize(payload), nil
}
