package handlers

import (
	"net/http"
	"time"

	"drawstats/pkg/httputil"
)

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	report, cached := h.Agg.Report(r.Context(), refreshParam(r))

	resp := httputil.Envelope{
		"success":   true,
		"data":      report.Snapshots,
		"cached":    cached,
		"liveCount": report.LiveCount,
		"scrapedAt": report.ScrapedAt.UTC().Format(time.RFC3339),
	}
	if err := httputil.JSON(w, http.StatusOK, resp, nil); err != nil {
		h.Log.Errorf("Revenue handler error: %s", err.Error())
	}
}
