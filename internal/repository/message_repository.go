package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/portal-api/internal/models"
)

// MessageRepository provides persistence for conversations and messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateConversation stores a conversation and its participant rows.
func (r *MessageRepository) CreateConversation(ctx context.Context, conversation *models.Conversation, participantIDs []string) error {
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	conversation.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create conversation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO conversations (id, subject, created_by, created_at, updated_at) VALUES (:id, :subject, :created_by, :created_at, :updated_at)`, conversation); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	for _, userID := range participantIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO conversation_participants (conversation_id, user_id, joined_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, conversation.ID, userID, now); err != nil {
			return fmt.Errorf("add conversation participant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create conversation: %w", err)
	}
	return nil
}

// ListConversations returns the conversations a user participates in, newest
// activity first, with a preview of the latest message.
func (r *MessageRepository) ListConversations(ctx context.Context, userID string) ([]models.ConversationDetail, error) {
	const query = `SELECT c.id, c.subject, c.created_by, c.created_at, c.updated_at,
	(SELECT m.body FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1) AS last_message,
	(SELECT m.created_at FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1) AS last_message_at
FROM conversations c
JOIN conversation_participants p ON p.conversation_id = c.id
WHERE p.user_id = $1
ORDER BY c.updated_at DESC`
	var conversations []models.ConversationDetail
	if err := r.db.SelectContext(ctx, &conversations, query, userID); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// IsParticipant reports whether a user belongs to a conversation.
func (r *MessageRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2`, conversationID, userID); err != nil {
		return false, fmt.Errorf("check conversation participant: %w", err)
	}
	return count > 0, nil
}

// ParticipantIDs returns the user ids participating in a conversation.
func (r *MessageRepository) ParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM conversation_participants WHERE conversation_id = $1`, conversationID); err != nil {
		return nil, fmt.Errorf("list conversation participants: %w", err)
	}
	return ids, nil
}

// CreateMessage appends a message and bumps the conversation's activity time.
func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create message: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO messages (id, conversation_id, sender_id, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.ConversationID, message.SenderID, message.Body, message.CreatedAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET updated_at = $1 WHERE id = $2`, message.CreatedAt, message.ConversationID); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create message: %w", err)
	}
	return nil
}

// ListMessages returns a page of conversation messages, oldest first.
func (r *MessageRepository) ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT m.id, m.conversation_id, m.sender_id, u.full_name AS sender_name, m.body, m.created_at FROM messages m JOIN users u ON u.id = m.sender_id WHERE m.conversation_id = $1 ORDER BY m.created_at ASC LIMIT %d OFFSET %d`, size, offset)
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, filter.ConversationID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
