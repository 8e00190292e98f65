package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialite/pkg/redis"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		t.Parallel()
		client, err := redis.Open(ctx, redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
		require.Nil(t, client)
	})

	for _, url := range []string{"http://localhost:6379", "localhost:6379", "postgresql://localhost:6379"} {
		t.Run("invalid scheme "+url, func(t *testing.T) {
			t.Parallel()
			client, err := redis.Open(ctx, redis.Config{URL: url})
			require.ErrorIs(t, err, redis.ErrFailedToParseURL)
			require.Nil(t, client)
		})
	}

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()
		client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/notadb"})
		require.ErrorIs(t, err, redis.ErrFailedToParseURL)
		require.Nil(t, client)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()
		client, err := redis.Open(ctx, redis.Config{
			URL:           "redis://127.0.0.1:1/0",
			Attempts:      2,
			RetryInterval: 10 * time.Millisecond,
			DialTimeout:   100 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
		require.Nil(t, client)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		client, err := redis.Open(cctx, redis.Config{URL: "redis://127.0.0.1:1/0", Attempts: 3})
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
		require.Nil(t, client)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrHealthcheckFailed)
}
