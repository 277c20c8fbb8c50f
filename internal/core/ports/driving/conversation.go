package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// ConversationService manages chat transcripts.
type ConversationService interface {
	// Start creates a new empty conversation.
	Start(ctx context.Context, title string) (*domain.Conversation, error)

	// Append records a message in a conversation.
	Append(ctx context.Context, msg *domain.Message) error

	// List returns all conversations, most recently active first.
	List(ctx context.Context) ([]domain.Conversation, error)

	// Get returns a conversation with its messages, oldest first.
	Get(ctx context.Context, id int64) (*domain.Conversation, []domain.Message, error)

	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, id int64) error
}
