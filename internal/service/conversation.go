package service

import (
	"context"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
)

// ConversationService exposes a user's chat history. Conversations are
// created by the query pipeline, never directly.
type ConversationService struct {
	convRepo ConversationRepositoryInterface
}

func NewConversationService(convRepo ConversationRepositoryInterface) *ConversationService {
	return &ConversationService{convRepo: convRepo}
}

// List returns the user's conversations, newest first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	return s.convRepo.ListByUser(ctx, userID)
}

// Messages returns every message of one of the user's conversations in
// chronological order. A conversation owned by someone else is reported
// as not found rather than forbidden.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	conversation, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.UserID != userID {
		return nil, domain.ErrConversationNotFound
	}
	return s.convRepo.ListMessages(ctx, conversationID)
}
