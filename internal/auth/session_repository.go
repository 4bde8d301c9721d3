package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository handles login session persistence in Redis
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func getSessionKey(tokenHash string) string {
	return fmt.Sprintf("session:%s", tokenHash)
}

func getUserSessionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_sessions:%s", userID.String())
}

// StoreSession stores a session in Redis with TTL
func (r *RedisSessionRepository) StoreSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	tokenHash := hashToken(token)
	sessionKey := getSessionKey(tokenHash)
	userSessionsKey := getUserSessionsKey(userID)

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session expiration time is in the past")
	}

	// The user's session index lives as long as its longest session
	currentTTL, err := r.client.TTL(ctx, userSessionsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read session index TTL: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey, map[string]any{
		"user_id":    userID.String(),
		"expires_at": expiresAt.Unix(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, sessionKey, ttl)
	pipe.SAdd(ctx, userSessionsKey, tokenHash)
	if currentTTL < ttl {
		pipe.Expire(ctx, userSessionsKey, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its cookie token
func (r *RedisSessionRepository) GetSession(ctx context.Context, token string) (*Session, error) {
	tokenHash := hashToken(token)

	data, err := r.client.HGetAll(ctx, getSessionKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, ErrSessionNotFound
	}

	expiresAtUnix, _ := strconv.ParseInt(data["expires_at"], 10, 64)
	expiresAt := time.Unix(expiresAtUnix, 0)
	if time.Now().After(expiresAt) {
		return nil, ErrSessionNotFound
	}

	createdAtUnix, _ := strconv.ParseInt(data["created_at"], 10, 64)

	return &Session{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

// DeleteSession removes a single session. Deleting a missing session is not an error.
func (r *RedisSessionRepository) DeleteSession(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	sessionKey := getSessionKey(tokenHash)

	userIDStr, err := r.client.HGet(ctx, sessionKey, "user_id").Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey)
	if userID, err := uuid.Parse(userIDStr); err == nil {
		pipe.SRem(ctx, getUserSessionsKey(userID), tokenHash)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteUserSessions removes every session belonging to a user
func (r *RedisSessionRepository) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	userSessionsKey := getUserSessionsKey(userID)

	tokenHashes, err := r.client.SMembers(ctx, userSessionsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokenHashes)+1)
	for _, tokenHash := range tokenHashes {
		keys = append(keys, getSessionKey(tokenHash))
	}
	keys = append(keys, userSessionsKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}
