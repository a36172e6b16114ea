package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is the production transport: one Redis list per queue
// name, LPUSH at the head, BRPOP from the tail. The client holds a
// connection pool for the process lifetime.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue connects using a redis:// URL.
func NewRedisQueue(url string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisQueue{client: redis.NewClient(opts)}, nil
}

func (q *RedisQueue) Push(ctx context.Context, queue string, payload []byte) error {
	if err := q.client.LPush(ctx, queue, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", queue, err)
	}
	return nil
}

func (q *RedisQueue) BlockingPop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	res, err := q.client.BRPop(ctx, timeout, queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // timeout, back to idle
		}
		return nil, false, fmt.Errorf("brpop %s: %w", queue, err)
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, false, fmt.Errorf("brpop %s: unexpected reply length %d", queue, len(res))
	}
	return []byte(res[1]), true, nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
