package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/linkup/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `m.id, m.conversation_id, m.sender_id, m.content, m.type, m.file_url,
	m.seq, m.read_by, m.is_favorite, m.created_at, u.username, u.avatar_url`

// Append inserts the message and advances the conversation pointer in one
// transaction: either both land or neither does. The pointer update is
// guarded on last_message_seq so a racing earlier append can never
// overwrite a later one's pointer.
func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO messages (id, conversation_id, sender_id, content, type, file_url,
			read_by, is_favorite, client_nonce, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err = tx.QueryRow(ctx, insert,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type, msg.FileURL,
		msg.ReadBy, msg.IsFavorite, msg.ClientNonce, msg.CreatedAt,
	).Scan(&msg.Seq)
	if err != nil {
		return mapDuplicate(err)
	}

	advance := `
		UPDATE conversations
		SET last_message_id = $1, last_message_seq = $2, updated_at = $3
		WHERE id = $4 AND last_message_seq < $2`
	if _, err := tx.Exec(ctx, advance, msg.ID, msg.Seq, msg.CreatedAt, msg.ConversationID); err != nil {
		return fmt.Errorf("advancing last message pointer: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	return r.scanMessage(ctx, query, id)
}

func (r *MessageRepo) GetByNonce(ctx context.Context, conversationID, senderID uuid.UUID, nonce string) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1 AND m.sender_id = $2 AND m.client_nonce = $3`
	return r.scanMessage(ctx, query, conversationID, senderID, nonce)
}

// ListByConversation returns messages oldest first. The before cursor, when
// set, pages backwards through history.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	var query string
	var args []any

	if before != nil {
		query = fmt.Sprintf(`
			SELECT `+messageColumns+`
			FROM messages m
			JOIN users u ON m.sender_id = u.id
			WHERE m.conversation_id = $1
				AND m.seq < (SELECT seq FROM messages WHERE id = $2)
			ORDER BY m.seq DESC
			LIMIT %d`, limit)
		args = []any{conversationID, *before}
	} else {
		query = fmt.Sprintf(`
			SELECT `+messageColumns+`
			FROM messages m
			JOIN users u ON m.sender_id = u.id
			WHERE m.conversation_id = $1
			ORDER BY m.seq DESC
			LIMIT %d`, limit)
		args = []any{conversationID}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Type, &msg.FileURL,
			&msg.Seq, &msg.ReadBy, &msg.IsFavorite, &msg.CreatedAt,
			&msg.SenderUsername, &msg.SenderAvatarURL,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	// Reverse to chronological order (query returns DESC)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, rows.Err()
}

// MarkRead appends userID to read_by unless already present, then returns
// the current row. Re-marking is a no-op, not an error.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	update := `
		UPDATE messages
		SET read_by = array_append(read_by, $2)
		WHERE id = $1 AND NOT (read_by @> ARRAY[$2]::uuid[])`
	if _, err := r.pool.Exec(ctx, update, messageID, userID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, messageID)
}

// ToggleFavorite flips the shared favorite flag. Last write wins.
func (r *MessageRepo) ToggleFavorite(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	if _, err := r.pool.Exec(ctx, `UPDATE messages SET is_favorite = NOT is_favorite WHERE id = $1`, messageID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, messageID)
}

func (r *MessageRepo) scanMessage(ctx context.Context, query string, args ...any) (*domain.Message, error) {
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Type, &msg.FileURL,
		&msg.Seq, &msg.ReadBy, &msg.IsFavorite, &msg.CreatedAt,
		&msg.SenderUsername, &msg.SenderAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}
