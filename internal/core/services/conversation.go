package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// DefaultConversationTitle names conversations started without a title.
const DefaultConversationTitle = "New conversation"

// ConversationService manages chat transcripts.
type ConversationService struct {
	store driven.ConversationStore
}

// NewConversationService creates a new conversation service.
func NewConversationService(store driven.ConversationStore) *ConversationService {
	return &ConversationService{store: store}
}

// Start creates a new empty conversation.
func (s *ConversationService) Start(ctx context.Context, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultConversationTitle
	}

	conv := &domain.Conversation{Title: title}
	if _, err := s.store.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// Append records a message in a conversation.
// Messages need content or an image.
func (s *ConversationService) Append(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if msg.ConversationID == 0 {
		return fmt.Errorf("%w: conversation id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(msg.Content) == "" && !msg.HasImage() {
		return fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}

	if _, err := s.store.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// List returns all conversations, most recently active first.
func (s *ConversationService) List(ctx context.Context) ([]domain.Conversation, error) {
	return s.store.List(ctx, domain.OrderByUpdated)
}

// Get returns a conversation with its messages, oldest first.
func (s *ConversationService) Get(ctx context.Context, id int64) (*domain.Conversation, []domain.Message, error) {
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}
	return conv, msgs, nil
}

// Delete removes a conversation and its messages.
func (s *ConversationService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
