package domain

import "time"

// Conversation is a chat transcript header.
type Conversation struct {
	// ID is the row identifier. Zero until first saved.
	ID int64

	// Title is the display title.
	Title string

	CreatedAt time.Time

	// UpdatedAt advances to the CreatedAt of every inserted message.
	UpdatedAt time.Time

	// MessageCount is derived when listing; it is not stored.
	MessageCount int
}

// Message is one turn of a conversation. Messages are never updated.
type Message struct {
	// ID is the row identifier. Zero until first saved.
	ID int64

	// ConversationID references the owning conversation.
	ConversationID int64

	// Content is the message text.
	Content string

	// IsUser is true for user turns and false for assistant turns.
	IsUser bool

	// ReasoningContent holds model reasoning output when the model returns it.
	ReasoningContent *string

	CreatedAt time.Time

	// ImageData is an optional attached image.
	ImageData []byte

	// ImageContentType is the MIME type of ImageData.
	ImageContentType *string
}

// HasImage reports whether an image is attached.
func (m Message) HasImage() bool {
	return len(m.ImageData) > 0
}

// ConversationOrder selects the sort order of conversation listings.
type ConversationOrder string

// Available conversation orders.
const (
	// OrderByUpdated lists the most recently active conversation first.
	OrderByUpdated ConversationOrder = "updated"

	// OrderByCreated lists conversations in creation order.
	OrderByCreated ConversationOrder = "created"
)

// IsValid returns true if the order is recognised.
func (o ConversationOrder) IsValid() bool {
	return o == OrderByUpdated || o == OrderByCreated
}
