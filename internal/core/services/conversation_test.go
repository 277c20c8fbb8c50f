package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestConversationService_Start(t *testing.T) {
	svc := NewConversationService(newMockConversationStore())

	conv, err := svc.Start(context.Background(), "  Trip planning  ")
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, "Trip planning", conv.Title)

	untitled, err := svc.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConversationTitle, untitled.Title)
}

func TestConversationService_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newMockConversationStore())

	conv, err := svc.Start(ctx, "chat")
	require.NoError(t, err)

	require.NoError(t, svc.Append(ctx, &domain.Message{ConversationID: conv.ID, Content: "hi", IsUser: true}))
	require.NoError(t, svc.Append(ctx, &domain.Message{ConversationID: conv.ID, Content: "hello"}))

	got, msgs, err := svc.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MessageCount)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.True(t, msgs[0].IsUser)
}

func TestConversationService_AppendImageOnly(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newMockConversationStore())
	conv, err := svc.Start(ctx, "chat")
	require.NoError(t, err)

	err = svc.Append(ctx, &domain.Message{ConversationID: conv.ID, ImageData: []byte{0x89, 0x50}})
	assert.NoError(t, err)
}

func TestConversationService_AppendValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newMockConversationStore())

	tests := []struct {
		name string
		msg  *domain.Message
	}{
		{name: "nil message", msg: nil},
		{name: "missing conversation", msg: &domain.Message{Content: "hi"}},
		{name: "empty content", msg: &domain.Message{ConversationID: 1, Content: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Append(ctx, tt.msg), domain.ErrInvalidInput)
		})
	}
}

func TestConversationService_AppendUnknownConversation(t *testing.T) {
	svc := NewConversationService(newMockConversationStore())

	err := svc.Append(context.Background(), &domain.Message{ConversationID: 42, Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newMockConversationStore())

	first, err := svc.Start(ctx, "first")
	require.NoError(t, err)
	_, err = svc.Start(ctx, "second")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), domain.ErrNotFound)

	_, _, err = svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
