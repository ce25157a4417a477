package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vedran77/linkup/pkg/logger"
)

const onlineTTL = 5 * time.Minute

// Store keeps online flags and last-seen timestamps in Redis. It is a
// best-effort layer: if Redis is unreachable the store degrades to
// "everyone offline" instead of failing requests.
type Store struct {
	client *redis.Client
}

func Connect(redisURL string) *Store {
	client := redis.NewClient(&redis.Options{Addr: redisURL})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, presence disabled")
		return &Store{}
	}

	return &Store{client: client}
}

// SetOnline marks a user online. Refreshed by the hub while at least one
// connection is open.
func (s *Store) SetOnline(ctx context.Context, userID uuid.UUID) {
	if s.client == nil {
		return
	}
	if err := s.client.Set(ctx, onlineKey(userID), "1", onlineTTL).Err(); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("presence: set online failed")
	}
}

// SetOffline clears the online flag and records the last-seen timestamp.
func (s *Store) SetOffline(ctx context.Context, userID uuid.UUID, lastSeen time.Time) {
	if s.client == nil {
		return
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, onlineKey(userID))
	pipe.Set(ctx, lastSeenKey(userID), strconv.FormatInt(lastSeen.Unix(), 10), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("presence: set offline failed")
	}
}

// IsOnline reports whether a user currently has an open connection.
func (s *Store) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	if s.client == nil {
		return false
	}
	n, err := s.client.Exists(ctx, onlineKey(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// LastSeen returns the recorded last-seen time, if any.
func (s *Store) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool) {
	if s.client == nil {
		return time.Time{}, false
	}
	val, err := s.client.Get(ctx, lastSeenKey(userID)).Result()
	if err != nil {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func onlineKey(userID uuid.UUID) string {
	return "presence:online:" + userID.String()
}

func lastSeenKey(userID uuid.UUID) string {
	return "presence:last_seen:" + userID.String()
}
