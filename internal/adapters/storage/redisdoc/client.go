// Package redisdoc guarda bebés, esquemas y diario como documentos JSON en Redis.
package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
)

// kv es el subconjunto de comandos que usan los repos; *redis.Client lo cumple.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

var errMissing = errors.New("redisdoc: key not found")

var writeStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    100 * time.Millisecond,
	Backoff:  2,
}

// Connect abre el cliente y espera a que responda PING (con reintentos).
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := retry.DoContext(ctx, retry.Strategy{Attempts: 5, Delay: time.Second, Backoff: 2}, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

func getJSON(ctx context.Context, c kv, key string, dst any) error {
	var data []byte
	err := retry.DoContext(ctx, writeStrategy, func() error {
		b, err := c.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			data = nil
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if data == nil {
		return errMissing
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(ctx context.Context, c kv, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = retry.DoContext(ctx, writeStrategy, func() error {
		return c.Set(ctx, key, data, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func addMember(ctx context.Context, c kv, key, member string) error {
	err := retry.DoContext(ctx, writeStrategy, func() error {
		return c.SAdd(ctx, key, member).Err()
	})
	if err != nil {
		return fmt.Errorf("sadd %s: %w", key, err)
	}
	return nil
}

func members(ctx context.Context, c kv, key string) ([]string, error) {
	ids, err := c.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	return ids, nil
}
