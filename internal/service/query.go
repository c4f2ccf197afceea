package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/openai"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
)

const (
	// retrievalLimit is how many chunks are pulled into the prompt.
	retrievalLimit = 5
	// historyLimit caps how many prior messages are replayed into the
	// prompt, counted from the start of the conversation.
	historyLimit = 10
)

const systemPromptFormat = `You are Cockpit Assistant, a technical assistant for Boeing 787 flight crews. Answer questions using ONLY the manual excerpts provided below.

Rules:
- Base every statement on the excerpts. Never invent procedures, limitations, or numbers.
- If the excerpts do not contain the answer, say that the available documentation does not cover it.
- Cite the manual a statement comes from when possible.
- Be precise and concise; crews may read your answer under workload.

Manual excerpts:
%s`

// CompletionClient defines the interface for chat completions
type CompletionClient interface {
	CreateCompletion(ctx context.Context, messages []openai.ChatMessage) (string, error)
}

// ConversationRepositoryInterface defines the repository interface for conversation persistence
type ConversationRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)
	ListEarliestMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error)
	AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg *domain.Message) error
}

// QueryCounterRepository bumps per-document usage counters.
type QueryCounterRepository interface {
	IncrementQueryCounts(ctx context.Context, ids []string) error
}

// QueryUserRepository is the slice of user persistence the query
// pipeline needs.
type QueryUserRepository interface {
	IncrementQueryCount(ctx context.Context, id string) error
}

// QueryService runs the retrieval-augmented chat pipeline: embed the
// question, fetch the nearest chunks, assemble the prompt with prior
// history, complete, and record the exchange.
type QueryService struct {
	embedder  EmbeddingClient
	completer CompletionClient
	chunkRepo ChunkRepositoryInterface
	convRepo  ConversationRepositoryInterface
	docRepo   QueryCounterRepository
	userRepo  QueryUserRepository
	uuidGen   UUIDGenerator
	now       func() time.Time
}

func NewQueryService(
	embedder EmbeddingClient,
	completer CompletionClient,
	chunkRepo ChunkRepositoryInterface,
	convRepo ConversationRepositoryInterface,
	docRepo QueryCounterRepository,
	userRepo QueryUserRepository,
) *QueryService {
	return &QueryService{
		embedder:  embedder,
		completer: completer,
		chunkRepo: chunkRepo,
		convRepo:  convRepo,
		docRepo:   docRepo,
		userRepo:  userRepo,
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

// QueryInput is one chat turn from a user. An empty ConversationID
// starts a new conversation.
type QueryInput struct {
	UserID         string
	Message        string
	ConversationID string
}

// Source names the document behind one retrieved excerpt. One entry is
// returned per retrieved chunk, so a document retrieved twice appears
// twice.
type Source struct {
	Document string `json:"document"`
	Type     string `json:"type"`
	Aircraft string `json:"aircraft,omitempty"`
}

// QueryResult is the answer to one chat turn.
type QueryResult struct {
	Answer         string
	ConversationID string
	Sources        []Source
}

// Query answers a question against the indexed manuals.
func (s *QueryService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Query", telemetry.SpanAttributes{
		UserID:         input.UserID,
		ConversationID: input.ConversationID,
		Operation:      "chat_query",
	})
	defer span.End()

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "message is required")
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, message)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrQueryFailed.WithCause(err)
	}

	chunks, err := s.chunkRepo.SearchNearest(ctx, embedding, retrievalLimit)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "retrieval failed", err)
	}

	var conversation *domain.Conversation
	var history []*domain.Message
	if input.ConversationID != "" {
		conversation, err = s.loadOwnConversation(ctx, input.UserID, input.ConversationID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		history, err = s.convRepo.ListEarliestMessages(ctx, conversation.ID, historyLimit)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	messages := buildPrompt(chunks, history, message)

	answer, err := s.completer.CreateCompletion(ctx, messages)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrQueryFailed.WithCause(err)
	}

	// A new conversation is only created once the gateway has answered,
	// so a completion failure never leaves an empty conversation behind.
	if conversation == nil {
		conversation, err = s.createConversation(ctx, input.UserID, message)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	if err := s.recordExchange(ctx, conversation.ID, message, answer); err != nil {
		span.SetError(err)
		return nil, err
	}

	s.bumpCounters(ctx, input.UserID, chunks)

	return &QueryResult{
		Answer:         answer,
		ConversationID: conversation.ID,
		Sources:        collectSources(chunks),
	}, nil
}

// loadOwnConversation fetches a conversation and enforces ownership. A
// foreign conversation reads as not found.
func (s *QueryService) loadOwnConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	conversation, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.UserID != userID {
		return nil, domain.ErrConversationNotFound
	}
	return conversation, nil
}

// createConversation starts a thread titled after its first message.
func (s *QueryService) createConversation(ctx context.Context, userID, message string) (*domain.Conversation, error) {
	conversation := &domain.Conversation{
		ID:        s.uuidGen.NewString(),
		UserID:    userID,
		Title:     domain.ConversationTitle(message),
		CreatedAt: s.now().UTC(),
	}
	if err := s.convRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// recordExchange appends the question and answer as an atomic pair. The
// assistant timestamp is nudged past the user's so ascending order by
// creation time always replays the pair correctly.
func (s *QueryService) recordExchange(ctx context.Context, conversationID, question, answer string) error {
	now := s.now().UTC()
	userMsg := &domain.Message{
		ID:             s.uuidGen.NewString(),
		ConversationID: conversationID,
		Role:           domain.MessageRoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	assistantMsg := &domain.Message{
		ID:             s.uuidGen.NewString(),
		ConversationID: conversationID,
		Role:           domain.MessageRoleAssistant,
		Content:        answer,
		CreatedAt:      now.Add(time.Millisecond),
	}
	return s.convRepo.AppendExchange(ctx, conversationID, userMsg, assistantMsg)
}

// bumpCounters increments usage counters. Each document counts once per
// query regardless of how many of its chunks were retrieved. Counter
// failures do not fail the query.
func (s *QueryService) bumpCounters(ctx context.Context, userID string, chunks []*domain.RetrievedChunk) {
	ids := make([]string, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if !seen[c.DocumentID] {
			seen[c.DocumentID] = true
			ids = append(ids, c.DocumentID)
		}
	}
	if err := s.docRepo.IncrementQueryCounts(ctx, ids); err != nil {
		telemetry.CaptureError(ctx, err)
	}
	if err := s.userRepo.IncrementQueryCount(ctx, userID); err != nil {
		telemetry.CaptureError(ctx, err)
	}
}

// buildPrompt assembles the completion request: system prompt carrying
// the retrieved excerpts, the history window, then the new question.
func buildPrompt(chunks []*domain.RetrievedChunk, history []*domain.Message, question string) []openai.ChatMessage {
	messages := make([]openai.ChatMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptFormat, formatContext(chunks)),
	})
	for _, m := range history {
		messages = append(messages, openai.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatMessage{
		Role:    "user",
		Content: question,
	})
	return messages
}

// formatContext renders retrieved chunks as labelled excerpts.
func formatContext(chunks []*domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "(no relevant excerpts found)"
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[%s - %s]\n%s", c.DocumentName, c.DocumentType, c.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// collectSources names the document behind each retrieved chunk, in
// retrieval order. Only the counters deduplicate; the source list does
// not.
func collectSources(chunks []*domain.RetrievedChunk) []Source {
	sources := make([]Source, len(chunks))
	for i, c := range chunks {
		sources[i] = Source{
			Document: c.DocumentName,
			Type:     string(c.DocumentType),
			Aircraft: c.AircraftType,
		}
	}
	return sources
}
