package repository

import (
	"context"
	"errors"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository persists conversations and their append-only
// message logs.
type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at)
		 VALUES ($1, $2, $3, $4)`,
		c.ID, c.UserID, c.Title, c.CreatedAt,
	)
	return err
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByUser returns a user's conversations, newest first.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, created_at FROM conversations
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

// ListMessages returns every message of a conversation, oldest first.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	return r.listMessages(ctx, conversationID, 0)
}

// ListEarliestMessages returns up to limit messages of a conversation,
// oldest first. This is the history window fed into the prompt.
func (r *ConversationRepository) ListEarliestMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	return r.listMessages(ctx, conversationID, limit)
}

func (r *ConversationRepository) listMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	query := `SELECT id, conversation_id, role, content, created_at FROM messages
		 WHERE conversation_id = $1 ORDER BY created_at ASC`
	args := []any{conversationID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// AppendExchange appends a user/assistant message pair atomically. A
// per-conversation advisory lock serializes concurrent appends to the
// same conversation so pairs never interleave.
func (r *ConversationRepository) AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		conversationID,
	); err != nil {
		return err
	}

	for _, m := range []*domain.Message{userMsg, assistantMsg} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO messages (id, conversation_id, role, content, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.ConversationID, m.Role, m.Content, m.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
