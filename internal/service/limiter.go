package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/limbo/zenjournal/internal/repository"
)

// RequestLimiter allows at most limit hits per key inside a fixed window.
type RequestLimiter struct {
	repo   repository.RateLimitRepositoryI
	limit  int64
	window time.Duration
}

func NewRequestLimiter(repo repository.RateLimitRepositoryI, limit int64, window time.Duration) *RequestLimiter {
	if repo == nil {
		log.Fatal("nil repository passed to request limiter")
	}
	return &RequestLimiter{
		repo:   repo,
		limit:  limit,
		window: window,
	}
}

// Allow fails open: a store error lets the request through and is returned
// for logging.
func (rl *RequestLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := rl.repo.Hit(ctx, key, rl.window)
	if err != nil {
		return true, errors.New("repository rate limit error: " + err.Error())
	}
	return n <= rl.limit, nil
}
