package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	assisthttp "github.com/propcortex/propcortex/internal/assist/http"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	AssistHandler *assisthttp.Handler
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(AskRateLimiter(params.Config)).Post("/ask", params.AssistHandler.Ask)
		r.Post("/query", params.AssistHandler.Query)
		r.Get("/portfolio", params.AssistHandler.Portfolio)
		r.Get("/properties", params.AssistHandler.Properties)
	})

	r.Post("/admin/reload", params.AssistHandler.Reload)

	return r
}
