package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := repository.NewRateLimitRepoWithClient(client)
	ctx := context.Background()
	window := time.Hour
	key := "ratelimit:insights:42"

	expectHit := func(n int64, expireSet bool) {
		mock.ExpectTxPipeline()
		mock.ExpectIncr(key).SetVal(n)
		mock.ExpectExpireNX(key, window).SetVal(expireSet)
		mock.ExpectTxPipelineExec()
	}

	t.Run("first hit starts window", func(t *testing.T) {
		expectHit(1, true)
		n, err := repo.Hit(ctx, "insights:42", window)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
	t.Run("next hit keeps the window", func(t *testing.T) {
		expectHit(2, false)
		n, err := repo.Hit(ctx, "insights:42", window)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
	t.Run("incr error", func(t *testing.T) {
		mock.ExpectTxPipeline()
		mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
		_, err := repo.Hit(ctx, "insights:42", window)
		assert.Error(t, err)
	})
	t.Run("failed expiry is set again on the next hit", func(t *testing.T) {
		mock.ExpectTxPipeline()
		mock.ExpectIncr(key).SetVal(3)
		mock.ExpectExpireNX(key, window).SetErr(errors.New("timeout"))
		_, err := repo.Hit(ctx, "insights:42", window)
		assert.Error(t, err)

		expectHit(4, true)
		n, err := repo.Hit(ctx, "insights:42", window)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
