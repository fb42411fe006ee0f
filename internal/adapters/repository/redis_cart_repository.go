package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/redisstore"
	"github.com/foodcart/core/internal/ports"
)

// RedisCartRepository stores each cart as a hash of item to quantity.
// Mutations run inside MULTI/EXEC together with the read of the result.
type RedisCartRepository struct {
	client *redisstore.Client
}

// NewRedisCartRepository creates a new redis-backed cart repository
func NewRedisCartRepository(client *redisstore.Client) ports.CartRepository {
	return &RedisCartRepository{client: client}
}

func (r *RedisCartRepository) cartKey(username string) string {
	return r.client.Key("cart", username)
}

func (r *RedisCartRepository) Get(ctx context.Context, username string) (entities.Cart, error) {
	fields, err := r.client.HGetAll(ctx, r.cartKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return parseCart(username, fields)
}

func (r *RedisCartRepository) SetItem(ctx context.Context, username, item string, quantity int) (entities.Cart, error) {
	key := r.cartKey(username)

	var all *redis.StringStringMapCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if quantity > 0 {
			pipe.HSet(ctx, key, item, quantity)
		} else {
			pipe.HDel(ctx, key, item)
		}
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set cart item: %w", err)
	}
	return parseCart(username, all.Val())
}

func (r *RedisCartRepository) Replace(ctx context.Context, username string, cart entities.Cart) (entities.Cart, error) {
	key := r.cartKey(username)
	replacement := cart.Normalized()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(replacement) > 0 {
			values := make(map[string]interface{}, len(replacement))
			for item, qty := range replacement {
				values[item] = qty
			}
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	return replacement.Clone(), nil
}

func (r *RedisCartRepository) Clear(ctx context.Context, username string) (entities.Cart, error) {
	key := r.cartKey(username)

	var previous *redis.StringStringMapCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		previous = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return parseCart(username, previous.Val())
}

func parseCart(username string, fields map[string]string) (entities.Cart, error) {
	cart := make(entities.Cart, len(fields))
	for item, raw := range fields {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: cart %s item %q: %v", entities.ErrCorruptDocument, username, item, err)
		}
		cart.SetQuantity(item, qty)
	}
	return cart, nil
}
