package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/redisstore"
	"github.com/foodcart/core/internal/ports"
)

// RedisUserRepository keeps credentials in one hash (username to password)
// and registration order in a list beside it.
type RedisUserRepository struct {
	client *redisstore.Client
}

// NewRedisUserRepository creates a new redis-backed user repository
func NewRedisUserRepository(client *redisstore.Client) ports.UserRepository {
	return &RedisUserRepository{client: client}
}

func (r *RedisUserRepository) usersKey() string { return r.client.Key("users") }
func (r *RedisUserRepository) orderKey() string { return r.client.Key("users", "order") }

func (r *RedisUserRepository) Create(ctx context.Context, user *entities.User) error {
	created, err := r.client.HSetNX(ctx, r.usersKey(), user.Username, user.Password).Result()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if !created {
		return fmt.Errorf("create user: %w", entities.ErrUsernameTaken)
	}

	// Only the caller that won HSETNX appends, so the order list has no
	// duplicates.
	if err := r.client.RPush(ctx, r.orderKey(), user.Username).Err(); err != nil {
		return fmt.Errorf("create user: record order: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	password, err := r.client.HGet(ctx, r.usersKey(), username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &entities.User{Username: username, Password: password}, nil
}

func (r *RedisUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	names, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(names) == 0 {
		return []*entities.User{}, nil
	}

	passwords, err := r.client.HMGet(ctx, r.usersKey(), names...).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*entities.User, 0, len(names))
	for i, name := range names {
		password, ok := passwords[i].(string)
		if !ok {
			continue
		}
		users = append(users, &entities.User{Username: name, Password: password})
	}
	return users, nil
}
