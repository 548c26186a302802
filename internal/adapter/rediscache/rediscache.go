// Package rediscache adapts a Redis instance to the core's CacheStore
// port: cart snapshots and presence counters with TTLs, plus the
// pub/sub channel carrying presence updates.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/sampaiobrenner/bookstore/pkg/retry"
)

var _ port.CacheStore = (*Cache)(nil)

const (
	txMaxAttempts = 5
	txRetryDelay  = 5 * time.Millisecond

	scanPageSize = 100
)

type Cache struct {
	cl *redis.Client
}

func New(ctx context.Context, addr string) (Cache, error) {
	const op = "rediscache.New"
	log := slog.With("op", op)

	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(ctx).Err(); err != nil {
		return Cache{}, fmt.Errorf("%s: cache is unavailable: %w", op, err)
	}
	log.Info("cache is available")
	return Cache{cl}, nil
}

func (c Cache) Close() {
	const op = "Cache.Close"
	log := slog.With("op", op)

	log.Info("closing cache client...")
	if err := c.cl.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("cache client is closed")
}

func (c Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "Cache.Get"

	b, err := c.cl.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return b, true, nil
}

func (c Cache) Set(
	ctx context.Context, key string, value []byte, ttl time.Duration,
) error {
	const op = "Cache.Set"

	if err := c.cl.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c Cache) SetNX(
	ctx context.Context, key string, value []byte, ttl time.Duration,
) (bool, error) {
	const op = "Cache.SetNX"

	created, err := c.cl.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update runs fn inside a WATCH transaction: the write is discarded
// and retried when another instance touched the key in between.
func (c Cache) Update(
	ctx context.Context, key string, ttl time.Duration, fn port.UpdateFunc,
) error {
	const op = "Cache.Update"

	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, key).Bytes()
		exists := true
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				return err
			}
			old, exists = nil, false
		}

		next, err := fn(old, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}

	cfg := retry.Config{
		MaxAttempts: txMaxAttempts,
		Backoff:     retry.LinearBackoff(txRetryDelay),
		ShouldRetry: func(err error) bool {
			return errors.Is(err, redis.TxFailedErr)
		},
	}
	err := retry.Do(ctx, cfg, func() error {
		return c.cl.Watch(ctx, txf, key)
	})
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%s: concurrent update conflict: %w", op, err)
		}
		return err
	}
	return nil
}

func (c Cache) Delete(ctx context.Context, key string) (bool, error) {
	const op = "Cache.Delete"

	n, err := c.cl.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

func (c Cache) IncrBy(
	ctx context.Context, key string, delta int64,
) (int64, error) {
	const op = "Cache.IncrBy"

	n, err := c.cl.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// Keys walks the keyspace with SCAN so the sweep never blocks the
// instance the way KEYS would.
func (c Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	const op = "Cache.Keys"

	var keys []string
	iter := c.cl.Scan(ctx, 0, pattern, scanPageSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

func (c Cache) Publish(
	ctx context.Context, channel string, payload []byte,
) error {
	const op = "Cache.Publish"

	if err := c.cl.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Subscribe streams channel payloads until ctx is done. The returned
// channel is closed when the subscription ends.
func (c Cache) Subscribe(
	ctx context.Context, channel string,
) (<-chan []byte, error) {
	const op = "Cache.Subscribe"
	log := slog.With("op", op, "channel", channel)

	ps := c.cl.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	msgs := ps.Channel()
	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer func() {
			if err := ps.Close(); err != nil {
				log.Error("failed to close subscription", "err", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
