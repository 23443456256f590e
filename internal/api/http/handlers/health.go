package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/lottery"
	"drawstats/internal/service"
	"drawstats/pkg/httputil"
)

type Handler struct {
	Log     logger.Logger
	Agg     *service.AggregatorService
	Lottery *lottery.Service
}

func NewHandler(log logger.Logger, agg *service.AggregatorService, lot *lottery.Service) *Handler {
	if agg == nil || lot == nil {
		panic("aggregator and lottery services cannot be nil")
	}
	return &Handler{Log: log, Agg: agg, Lottery: lot}
}

// Liveness probe for the process itself, no dependency checks.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	if err := httputil.JSON(w, http.StatusOK, httputil.Envelope{"status": "ok"}, nil); err != nil {
		h.Log.Errorf("Healthz handler error: %s", err.Error())
	}
}

// Dashboard-facing health endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	body := httputil.Envelope{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := httputil.JSON(w, http.StatusOK, body, nil); err != nil {
		h.Log.Errorf("Health handler error: %s", err.Error())
	}
}

// refreshParam reads the optional refresh flag; anything unparseable
// counts as false.
func refreshParam(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}
