package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/api"
	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ConversationService interface {
	List(ctx context.Context, userID string) ([]*domain.Conversation, error)
	Messages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error)
}

type ConversationHandler struct {
	svc ConversationService
}

func NewConversationHandler(svc ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ConversationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.svc.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		resp = append(resp, &ConversationResponse{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	api.JSON(w, http.StatusOK, resp)
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Messages(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, &MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	api.JSON(w, http.StatusOK, resp)
}
