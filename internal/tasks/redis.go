package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue stores tasks as JSON in a Redis list: LPUSH to enqueue, BRPOP to
// dequeue, so tasks come out in FIFO order and any number of workers may share
// the list.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a queue on the given list key. Key may be empty.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "guestbook:tasks"
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", t.Kind, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// res is [key, value]
	var t Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &t, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
