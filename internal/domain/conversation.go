package domain

import "time"

// MessageRole is the author of one conversation turn.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Conversation is a named chat thread owned by exactly one user. It is
// created lazily on the first query that does not reference an existing
// conversation.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
}

// Message is one turn in a conversation. Messages are append-only and
// ordered by creation time ascending.
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}

// ConversationTitle derives a conversation title from its first message.
func ConversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= 50 {
		return message
	}
	return string(runes[:50])
}
