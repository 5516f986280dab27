// Package assisthttp exposes the ledger Q&A core over HTTP: natural-language
// questions, pre-classified queries, portfolio reads, and the admin reload.
package assisthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/propcortex/propcortex/internal/answer"
	"github.com/propcortex/propcortex/internal/classify"
	"github.com/propcortex/propcortex/internal/dispatch"
	"github.com/propcortex/propcortex/internal/ledger"
	"github.com/propcortex/propcortex/internal/platform/httpx"
	"github.com/propcortex/propcortex/internal/query"
)

// Classifier is the upstream text-understanding collaborator.
type Classifier interface {
	Classify(ctx context.Context, question string) (dispatch.Request, error)
}

// Loader rebuilds a store from the configured row source for hot reloads.
type Loader func(ctx context.Context) (*ledger.Store, error)

// Handler serves the assist API.
type Handler struct {
	logger     *slog.Logger
	machine    *dispatch.Machine
	handle     *ledger.Handle
	classifier Classifier
	renderer   *answer.Renderer
	cache      *answer.Cache
	loader     Loader
	validate   *validator.Validate
}

// HandlerParams groups the handler dependencies.
type HandlerParams struct {
	Logger     *slog.Logger
	Machine    *dispatch.Machine
	Handle     *ledger.Handle
	Classifier Classifier // nil when no classifier is configured
	Renderer   *answer.Renderer
	Cache      *answer.Cache
	Loader     Loader
}

// NewHandler wires the assist endpoints.
func NewHandler(params HandlerParams) *Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		machine:    params.Machine,
		handle:     params.Handle,
		classifier: params.Classifier,
		renderer:   params.Renderer,
		cache:      params.Cache,
		loader:     params.Loader,
		validate:   validator.New(),
	}
}

type askRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
}

type answerResponse struct {
	Answer string       `json:"answer"`
	Intent string       `json:"intent"`
	Kind   query.Kind   `json:"kind"`
	Result query.Result `json:"result"`
}

// Ask classifies a natural-language question, dispatches it, and renders
// the answer. Dispatch-level misses (not found, ambiguous, fallback) are
// still HTTP 200: the question was answered, just not with data.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.classifier == nil {
		httpx.RespondError(w, fmt.Errorf("%w: no classifier configured", httpx.ErrUnavailable))
		return
	}
	var req askRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadPayload, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	classified, err := h.classifier.Classify(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("classification failed", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: classifier unreachable", httpx.ErrUnavailable))
		return
	}
	h.respond(r.Context(), w, classified)
}

type queryRequest struct {
	Intent   string         `json:"intent" validate:"required"`
	Entities map[string]any `json:"entities"`
}

// Query accepts an already classified request, the raw upstream boundary
// shape, and dispatches it directly.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadPayload, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	h.respond(r.Context(), w, classify.Normalize(classify.Payload{Intent: req.Intent, Entities: req.Entities}))
}

// respond dispatches and renders, caching the rendered answer.
func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, req dispatch.Request) {
	result := h.machine.Dispatch(req)

	key, err := h.cache.Key(ctx, req.Intent, req.Entities.Fingerprint())
	if err != nil {
		h.logger.Warn("cache key", slog.Any("error", err))
	}
	text, err := h.cache.Fetch(ctx, key, func() (string, error) {
		return h.renderer.Render(result), nil
	})
	if err != nil {
		h.logger.Warn("answer cache", slog.Any("error", err))
		text = h.renderer.Render(result)
	}

	httpx.JSON(w, http.StatusOK, answerResponse{
		Answer: text,
		Intent: req.Intent,
		Kind:   result.Kind(),
		Result: result,
	})
}

// Portfolio returns whole-dataset statistics.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	engine := query.NewEngine(h.handle.Current())
	httpx.JSON(w, http.StatusOK, engine.PortfolioStats())
}

// Properties returns properties ranked by net P&L. Optional n and year
// query parameters bound and filter the ranking.
func (h *Handler) Properties(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: n must be an integer", httpx.ErrValidation))
			return
		}
		n = parsed
	}
	engine := query.NewEngine(h.handle.Current())
	ranking, err := engine.TopProperties(n, r.URL.Query().Get("year"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ranking)
}

// Reload rebuilds the store from the row source and swaps it in atomically,
// then invalidates cached answers. Readers in flight keep their snapshot.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		httpx.RespondError(w, fmt.Errorf("%w: no loader configured", httpx.ErrUnavailable))
		return
	}
	store, err := h.loader(r.Context())
	if err != nil {
		h.logger.Error("reload failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Reload Failed", err.Error())
		return
	}
	h.handle.Swap(store)
	if err := h.cache.Bump(r.Context()); err != nil {
		h.logger.Warn("cache bump", slog.Any("error", err))
	}
	h.logger.Info("store reloaded",
		slog.Int("rows", store.Len()),
		slog.Int("inconsistent_rows", store.Inconsistencies()))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":              store.Len(),
		"inconsistent_rows": store.Inconsistencies(),
	})
}
