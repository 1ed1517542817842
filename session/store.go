package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edusphere/backend/models"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound means no session exists for the account id. Logout and store
// eviction produce it; it is an expected outcome, not a transport failure.
var ErrNotFound = errors.New("session not found")

// Store holds at most one session record per account id, the serialized
// account snapshot that marks "currently logged in". Last writer wins.
type Store interface {
	Put(ctx context.Context, userID string, user *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Put(ctx context.Context, userID string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// No TTL: sessions live until logout deletes them.
	if err := s.client.Set(ctx, userID, data, 0).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, userID string) (*models.User, error) {
	data, err := s.client.Get(ctx, userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &user, nil
}

func (s *redisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
