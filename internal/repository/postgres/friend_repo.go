package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/linkup/internal/domain"
)

type FriendRepo struct {
	pool *pgxpool.Pool
}

func NewFriendRepo(pool *pgxpool.Pool) *FriendRepo {
	return &FriendRepo{pool: pool}
}

const friendRequestColumns = `r.id, r.sender_id, r.receiver_id, r.status, r.created_at,
	s.username, s.avatar_url, rc.username, rc.avatar_url`

func (r *FriendRepo) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, req.ID, req.SenderID, req.ReceiverID, req.Status, req.CreatedAt)
	return mapDuplicate(err)
}

func (r *FriendRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests r
		JOIN users s ON r.sender_id = s.id
		JOIN users rc ON r.receiver_id = rc.id
		WHERE r.id = $1`
	return r.scanRequest(ctx, query, id)
}

func (r *FriendRepo) GetPendingByUsers(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests r
		JOIN users s ON r.sender_id = s.id
		JOIN users rc ON r.receiver_id = rc.id
		WHERE r.sender_id = $1 AND r.receiver_id = $2 AND r.status = 'pending'`
	return r.scanRequest(ctx, query, senderID, receiverID)
}

func (r *FriendRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.FriendRequest, error) {
	if _, err := r.pool.Exec(ctx, `UPDATE friend_requests SET status = $1 WHERE id = $2`, status, id); err != nil {
		return nil, err
	}
	return r.GetRequestByID(ctx, id)
}

func (r *FriendRepo) ListIncomingPending(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests r
		JOIN users s ON r.sender_id = s.id
		JOIN users rc ON r.receiver_id = rc.id
		WHERE r.receiver_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.FriendRequest
	for rows.Next() {
		var req domain.FriendRequest
		if err := rows.Scan(
			&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt,
			&req.SenderUsername, &req.SenderAvatarURL,
			&req.ReceiverUsername, &req.ReceiverAvatarURL,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *FriendRepo) scanRequest(ctx context.Context, query string, args ...any) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt,
		&req.SenderUsername, &req.SenderAvatarURL,
		&req.ReceiverUsername, &req.ReceiverAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}
