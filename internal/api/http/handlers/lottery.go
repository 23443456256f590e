package handlers

import (
	"net/http"

	"drawstats/internal/domain"
	"drawstats/pkg/httputil"
)

func (h *Handler) NGR(w http.ResponseWriter, r *http.Request) {
	draws, rejected, err := domain.ParseDrawList(r.URL.Query().Get("draws"))
	if err != nil {
		if err := httputil.Error(w, r, http.StatusBadRequest, "bad_request", err.Error(), rejected); err != nil {
			h.Log.Errorf("NGR handler error: %s", err.Error())
		}
		return
	}
	if len(rejected) > 0 {
		h.Log.Warnf("ngr request skipped invalid draw values: %v", rejected)
	}

	results := h.Lottery.NGR(r.Context(), draws, refreshParam(r))

	resp := httputil.Envelope{
		"success": true,
		"results": results,
	}
	if len(rejected) > 0 {
		resp["skipped"] = rejected
	}
	if err := httputil.JSON(w, http.StatusOK, resp, nil); err != nil {
		h.Log.Errorf("NGR handler error: %s", err.Error())
	}
}

func (h *Handler) Prizes(w http.ResponseWriter, r *http.Request) {
	draw, err := domain.ParseDraw(r.URL.Query().Get("draw"))
	if err != nil {
		if err := httputil.Error(w, r, http.StatusBadRequest, "bad_request", err.Error(), nil); err != nil {
			h.Log.Errorf("Prizes handler error: %s", err.Error())
		}
		return
	}

	snap, cached, err := h.Lottery.Prizes(r.Context(), draw, refreshParam(r))
	if err != nil {
		if err := httputil.Error(w, r, http.StatusBadGateway, "resolve_failed", err.Error(), nil); err != nil {
			h.Log.Errorf("Prizes handler error: %s", err.Error())
		}
		return
	}

	resp := httputil.Envelope{
		"success": true,
		"cached":  cached,
		"data":    snap,
	}
	if err := httputil.JSON(w, http.StatusOK, resp, nil); err != nil {
		h.Log.Errorf("Prizes handler error: %s", err.Error())
	}
}
