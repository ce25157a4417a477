package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/linkup/internal/domain"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, user1_id, user2_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, conv.ID, conv.User1ID, conv.User2ID, conv.CreatedAt, conv.UpdatedAt)
	return mapDuplicate(err)
}

func (r *ConversationRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user1_id, user2_id, last_message_id, last_message_seq, created_at, updated_at
		FROM conversations
		WHERE user1_id = $1 AND user2_id = $2`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, user1ID, user2ID).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.LastMessageID, &conv.LastMessageSeq,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user1_id, user2_id, last_message_id, last_message_seq, created_at, updated_at
		FROM conversations
		WHERE id = $1`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.LastMessageID, &conv.LastMessageSeq,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.last_message_id, c.last_message_seq,
			c.created_at, c.updated_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.username ELSE u1.username END AS other_username,
			CASE WHEN c.user1_id = $1 THEN u2.avatar_url ELSE u1.avatar_url END AS other_avatar_url,
			CASE WHEN c.user1_id = $1 THEN u2.last_seen ELSE u1.last_seen END AS other_last_seen,
			m.id, m.sender_id, m.content, m.type, m.file_url, m.seq, m.read_by, m.is_favorite, m.created_at
		FROM conversations c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		LEFT JOIN messages m ON c.last_message_id = m.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var last struct {
			id         *uuid.UUID
			senderID   *uuid.UUID
			content    *string
			msgType    *string
			fileURL    *string
			seq        *int64
			readBy     []uuid.UUID
			isFavorite *bool
			createdAt  *time.Time
		}
		if err := rows.Scan(
			&conv.ID, &conv.User1ID, &conv.User2ID, &conv.LastMessageID, &conv.LastMessageSeq,
			&conv.CreatedAt, &conv.UpdatedAt,
			&conv.OtherUserID, &conv.OtherUsername, &conv.OtherAvatarURL, &conv.OtherLastSeen,
			&last.id, &last.senderID, &last.content, &last.msgType, &last.fileURL,
			&last.seq, &last.readBy, &last.isFavorite, &last.createdAt,
		); err != nil {
			return nil, err
		}
		if last.id != nil {
			conv.LastMessagePreview = &domain.Message{
				ID:             *last.id,
				ConversationID: conv.ID,
				SenderID:       *last.senderID,
				Content:        *last.content,
				Type:           *last.msgType,
				FileURL:        last.fileURL,
				Seq:            *last.seq,
				ReadBy:         last.readBy,
				IsFavorite:     *last.isFavorite,
				CreatedAt:      *last.createdAt,
			}
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (r *ConversationRepo) UnreadCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	// Counted directly off the ledger so the result can never drift from
	// read-state.
	query := `
		SELECT m.conversation_id, COUNT(*)
		FROM messages m
		JOIN conversations c ON m.conversation_id = c.id
		WHERE (c.user1_id = $1 OR c.user2_id = $1)
			AND m.sender_id <> $1
			AND NOT (m.read_by @> ARRAY[$1]::uuid[])
		GROUP BY m.conversation_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var convID uuid.UUID
		var count int
		if err := rows.Scan(&convID, &count); err != nil {
			return nil, err
		}
		counts[convID] = count
	}
	return counts, rows.Err()
}
