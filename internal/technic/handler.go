package technic

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"net/http"
	"time"
)

// Handler serves operational endpoints: health, metrics and the log level.
type Handler struct {
	ctx     context.Context
	logger  *zap.Logger
	atom    zap.AtomicLevel
	reg     *prometheus.Registry
	started time.Time
}

func NewHandler(ctx context.Context, logger *zap.Logger, atom zap.AtomicLevel, reg *prometheus.Registry) *Handler {
	return &Handler{ctx: ctx, logger: logger, atom: atom, reg: reg, started: time.Now()}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.health)
	// GET reports the level, PUT {"level":"debug"} changes it.
	r.Handle("/log-level", h.atom)
	r.Handle("/metrics", promhttp.HandlerFor(h.reg, promhttp.HandlerOpts{}))

	return r
}

func (h *Handler) health(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")

	status := "ok"
	if h.ctx.Err() != nil {
		status = "stopping"
		writer.WriteHeader(http.StatusServiceUnavailable)
	}

	err := json.NewEncoder(writer).Encode(map[string]string{
		"status": status,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
	if err != nil {
		h.logger.Error("health encode failed", zap.Error(err))
	}
}
