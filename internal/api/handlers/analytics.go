package handlers

import (
	"context"
	"net/http"

	"github.com/flightdeck-ai/flightdeck/internal/api"
	"github.com/flightdeck-ai/flightdeck/internal/service"
)

type AnalyticsService interface {
	Stats(ctx context.Context) (*service.Stats, error)
}

type AnalyticsHandler struct {
	svc AnalyticsService
}

func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, stats)
}
