package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	sessionKeyPrefix  = "session:"
	cartKeySuffix     = ":cart"
	flashKeySuffix    = ":flash"
	DefaultSessionTTL = 24 * time.Hour
)

var popCartScript = redis.NewScript(`
local fields = redis.call('HGETALL', KEYS[1])
redis.call('DEL', KEYS[1])
return fields
`)

// RedisAdapter stores session carts as hashes of item id to quantity and the
// pending status message as a plain string.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + cartKeySuffix
}

func flashKey(sessionID string) string {
	return sessionKeyPrefix + sessionID + flashKeySuffix
}

func (r *RedisAdapter) LoadCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeCart(sessionID, fields), nil
}

func (r *RedisAdapter) SaveCart(ctx context.Context, sessionID string, cart domain.Cart) error {
	key := cartKey(sessionID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if cart.IsEmpty() {
			return nil
		}
		values := make(map[string]any, len(cart))
		for id, qty := range cart {
			values[strconv.FormatInt(id, 10)] = qty
		}
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisAdapter) PopCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := popCartScript.Run(ctx, r.client, []string{cartKey(sessionID)}).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("pop cart: %w", err)
	}

	fields := make(map[string]string, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		fields[raw[i]] = raw[i+1]
	}
	return decodeCart(sessionID, fields), nil
}

func (r *RedisAdapter) SetFlash(ctx context.Context, sessionID, message string) error {
	return r.client.Set(ctx, flashKey(sessionID), message, r.ttl).Err()
}

func (r *RedisAdapter) PopFlash(ctx context.Context, sessionID string) (string, error) {
	msg, err := r.client.GetDel(ctx, flashKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("pop flash: %w", err)
	}
	return msg, nil
}

// decodeCart skips entries that are not a positive integer id mapped to a
// positive quantity.
func decodeCart(sessionID string, fields map[string]string) domain.Cart {
	cart := make(domain.Cart, len(fields))
	for field, value := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil || id < 1 {
			slog.Warn("skipping malformed cart entry", "session", sessionID, "field", field)
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 1 {
			slog.Warn("skipping malformed cart quantity", "session", sessionID, "item_id", id, "value", value)
			continue
		}
		cart[id] = qty
	}
	return cart
}
