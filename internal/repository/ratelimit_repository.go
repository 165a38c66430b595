package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/limbo/zenjournal/pkg/cleanup"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

type RateLimitRepository struct {
	client redis.Cmdable
}

func NewRateLimitRepo(redisURI string) *RateLimitRepository {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		log.Fatal("parsing redis uri error: " + err.Error())
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		log.Fatal("error while pinging redis: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing redis client",
		F: func(context.Context) error {
			return client.Close()
		},
	})
	return &RateLimitRepository{
		client: client,
	}
}

func NewRateLimitRepoWithClient(client redis.Cmdable) *RateLimitRepository {
	return &RateLimitRepository{
		client: client,
	}
}

// Hit increments the counter and sets its expiry in one transaction. The expiry is
// only set when the key has none, so later hits don't extend the window and a key
// that lost its TTL gets one back on the next hit.
func (rr *RateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = rateLimitKeyPrefix + key
	var incr *redis.IntCmd
	_, err := rr.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, errors.New("redis rate limit hit error: " + err.Error())
	}
	return incr.Val(), nil
}
