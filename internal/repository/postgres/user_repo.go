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

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, username, password_hash, avatar_url, last_seen,
	message_notifications, call_notifications, friend_request_notifications,
	created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, avatar_url, last_seen,
			message_notifications, call_notifications, friend_request_notifications,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.AvatarURL, user.LastSeen,
		user.Notifications.MessageNotifications, user.Notifications.CallNotifications,
		user.Notifications.FriendRequestNotifications,
		user.CreatedAt, user.UpdatedAt,
	)
	return mapDuplicate(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, avatar_url = $4,
			message_notifications = $5, call_notifications = $6,
			friend_request_notifications = $7, updated_at = $8
		WHERE id = $9`
	_, err := r.pool.Exec(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.AvatarURL,
		user.Notifications.MessageNotifications, user.Notifications.CallNotifications,
		user.Notifications.FriendRequestNotifications, time.Now(), user.ID,
	)
	return mapDuplicate(err)
}

func (r *UserRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_seen = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.AvatarURL, &user.LastSeen,
		&user.Notifications.MessageNotifications, &user.Notifications.CallNotifications,
		&user.Notifications.FriendRequestNotifications,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &user, err
}
