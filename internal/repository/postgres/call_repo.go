package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/linkup/internal/domain"
)

type CallRepo struct {
	pool *pgxpool.Pool
}

func NewCallRepo(pool *pgxpool.Pool) *CallRepo {
	return &CallRepo{pool: pool}
}

const callColumns = `c.id, c.caller_id, c.receiver_id, c.type, c.status,
	c.started_at, c.ended_at, c.duration,
	cu.username, cu.avatar_url, ru.username, ru.avatar_url`

func (r *CallRepo) Create(ctx context.Context, call *domain.Call) error {
	query := `
		INSERT INTO calls (id, caller_id, receiver_id, type, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		call.ID, call.CallerID, call.ReceiverID, call.Type, call.Status, call.StartedAt,
	)
	return err
}

func (r *CallRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls c
		JOIN users cu ON c.caller_id = cu.id
		JOIN users ru ON c.receiver_id = ru.id
		WHERE c.id = $1`
	var call domain.Call
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&call.ID, &call.CallerID, &call.ReceiverID, &call.Type, &call.Status,
		&call.StartedAt, &call.EndedAt, &call.Duration,
		&call.CallerUsername, &call.CallerAvatarURL,
		&call.ReceiverUsername, &call.ReceiverAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &call, err
}

func (r *CallRepo) Update(ctx context.Context, call *domain.Call) error {
	query := `UPDATE calls SET status = $1, ended_at = $2, duration = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, call.Status, call.EndedAt, call.Duration, call.ID)
	return err
}

func (r *CallRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls c
		JOIN users cu ON c.caller_id = cu.id
		JOIN users ru ON c.receiver_id = ru.id
		WHERE c.caller_id = $1 OR c.receiver_id = $1
		ORDER BY c.started_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []domain.Call
	for rows.Next() {
		var call domain.Call
		if err := rows.Scan(
			&call.ID, &call.CallerID, &call.ReceiverID, &call.Type, &call.Status,
			&call.StartedAt, &call.EndedAt, &call.Duration,
			&call.CallerUsername, &call.CallerAvatarURL,
			&call.ReceiverUsername, &call.ReceiverAvatarURL,
		); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}
