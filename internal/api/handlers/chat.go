package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/flightdeck-ai/flightdeck/internal/api"
	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/service"
)

type QueryService interface {
	Query(ctx context.Context, input service.QueryInput) (*service.QueryResult, error)
}

type ChatHandler struct {
	svc QueryService
}

func NewChatHandler(svc QueryService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type QueryRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type QueryResponse struct {
	Response       string           `json:"response"`
	ConversationID string           `json:"conversationId"`
	Sources        []service.Source `json:"sources"`
}

func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Query(r.Context(), service.QueryInput{
		UserID:         middleware.GetUserID(r.Context()),
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, QueryResponse{
		Response:       result.Answer,
		ConversationID: result.ConversationID,
		Sources:        result.Sources,
	})
}
