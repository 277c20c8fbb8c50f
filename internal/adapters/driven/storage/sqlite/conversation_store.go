package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

// Verify interface compliance.
var _ driven.ConversationStore = (*conversationStore)(nil)

const conversationColumns = `c.Id, c.Title, c.CreatedAt, c.UpdatedAt,
	(SELECT COUNT(*) FROM Messages m WHERE m.ConversationId = c.Id)`

const messageColumns = `Id, ConversationId, Content, IsUser, ReasoningContent, CreatedAt,
	ImageData, ImageContentType`

// Create inserts a new conversation.
func (s *conversationStore) Create(ctx context.Context, conv *domain.Conversation) (int64, error) {
	if conv == nil {
		return 0, fmt.Errorf("%w: conversation is nil", domain.ErrInvalidInput)
	}
	if conv.ID != 0 {
		return 0, fmt.Errorf("%w: conversation %d is already persisted", domain.ErrAlreadyExists, conv.ID)
	}

	now := s.store.clock()
	createdAt := now
	if !conv.CreatedAt.IsZero() {
		createdAt = conv.CreatedAt.UTC().Round(0)
	}

	var id int64
	err := s.store.write(ctx, "creating conversation", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			`INSERT INTO Conversations (Title, CreatedAt, UpdatedAt) VALUES (?, ?, ?)`,
			conv.Title, formatTime(createdAt), formatTime(createdAt))
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	conv.ID = id
	conv.CreatedAt = createdAt
	conv.UpdatedAt = createdAt
	conv.MessageCount = 0
	return id, nil
}

// Get retrieves a conversation by ID.
func (s *conversationStore) Get(ctx context.Context, id int64) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := s.store.read(ctx, "getting conversation", func(db *sql.DB) error {
		row := db.QueryRowContext(ctx,
			`SELECT `+conversationColumns+` FROM Conversations c WHERE c.Id = ?`, id)
		var err error
		conv, err = scanConversation(row)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// List returns every conversation, most recently active first for
// OrderByUpdated and oldest first for OrderByCreated.
func (s *conversationStore) List(ctx context.Context, order domain.ConversationOrder) ([]domain.Conversation, error) {
	var orderBy string
	switch order {
	case domain.OrderByUpdated, "":
		orderBy = "c.UpdatedAt DESC, c.Id DESC"
	case domain.OrderByCreated:
		orderBy = "c.CreatedAt, c.Id"
	default:
		return nil, fmt.Errorf("%w: unknown order %q", domain.ErrInvalidInput, order)
	}

	var convs []domain.Conversation //nolint:prealloc
	err := s.store.read(ctx, "listing conversations", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+conversationColumns+` FROM Conversations c ORDER BY `+orderBy)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			conv, err := scanConversation(rows)
			if err != nil {
				return err
			}
			convs = append(convs, *conv)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// Rename changes the title and advances UpdatedAt.
func (s *conversationStore) Rename(ctx context.Context, id int64, title string) error {
	now := s.store.clock()
	return s.store.write(ctx, "renaming conversation", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			`UPDATE Conversations SET Title = ?, UpdatedAt = ? WHERE Id = ?`,
			title, formatTime(now), id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// Delete removes the conversation and its messages in one transaction.
// On any failure neither is removed.
func (s *conversationStore) Delete(ctx context.Context, id int64) error {
	return s.store.writeTx(ctx, "deleting conversation", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM Messages WHERE ConversationId = ?`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM Conversations WHERE Id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// SaveMessage inserts msg and moves the parent conversation's UpdatedAt to
// the message timestamp, both in one transaction.
func (s *conversationStore) SaveMessage(ctx context.Context, msg *domain.Message) (int64, error) {
	if msg == nil {
		return 0, fmt.Errorf("%w: message is nil", domain.ErrInvalidInput)
	}
	if msg.ID != 0 {
		return 0, fmt.Errorf("%w: message %d is already persisted", domain.ErrAlreadyExists, msg.ID)
	}

	createdAt := s.store.clock()
	if !msg.CreatedAt.IsZero() {
		createdAt = msg.CreatedAt.UTC().Round(0)
	}
	stamp := formatTime(createdAt)

	var id int64
	err := s.store.writeTx(ctx, "saving message", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE Conversations SET UpdatedAt = ? WHERE Id = ?`, stamp, msg.ConversationID)
		if err != nil {
			return err
		}
		if err := requireAffected(result); err != nil {
			return fmt.Errorf("conversation %d: %w", msg.ConversationID, err)
		}

		result, err = tx.ExecContext(ctx, `
			INSERT INTO Messages (ConversationId, Content, IsUser, ReasoningContent, CreatedAt,
				ImageData, ImageContentType)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, msg.ConversationID, msg.Content, msg.IsUser, nullString(msg.ReasoningContent), stamp,
			nullBytes(msg.ImageData), nullString(msg.ImageContentType))
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	msg.ID = id
	msg.CreatedAt = createdAt
	return id, nil
}

// ListMessages returns a conversation's messages, oldest first.
func (s *conversationStore) ListMessages(ctx context.Context, conversationID int64) ([]domain.Message, error) {
	var msgs []domain.Message //nolint:prealloc
	err := s.store.read(ctx, "listing messages", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+messageColumns+` FROM Messages WHERE ConversationId = ? ORDER BY CreatedAt, Id`,
			conversationID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			msg, err := scanMessage(rows)
			if err != nil {
				return err
			}
			msgs = append(msgs, *msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// CountMessages returns the number of messages in a conversation.
func (s *conversationStore) CountMessages(ctx context.Context, conversationID int64) (int, error) {
	var count int
	err := s.store.read(ctx, "counting messages", func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM Messages WHERE ConversationId = ?`, conversationID).Scan(&count)
	})
	return count, err
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var (
		conv                 domain.Conversation
		createdAt, updatedAt string
	)
	if err := row.Scan(&conv.ID, &conv.Title, &createdAt, &updatedAt, &conv.MessageCount); err != nil {
		return nil, err
	}
	var err error
	if conv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &conv, nil
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var (
		msg              domain.Message
		reasoning        sql.NullString
		createdAt        string
		imageData        []byte
		imageContentType sql.NullString
	)
	err := row.Scan(&msg.ID, &msg.ConversationID, &msg.Content, &msg.IsUser, &reasoning,
		&createdAt, &imageData, &imageContentType)
	if err != nil {
		return nil, err
	}
	if msg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	msg.ReasoningContent = stringPtr(reasoning)
	msg.ImageContentType = stringPtr(imageContentType)
	if len(imageData) > 0 {
		msg.ImageData = imageData
	}
	return &msg, nil
}
