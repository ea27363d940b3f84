package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(3)
	defer rl.Stop()

	ctx := context.Background()
	for range 3 {
		require.NoError(t, rl.Wait(ctx))
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(50)
	defer rl.Stop()

	ctx := context.Background()
	for range 50 {
		require.NoError(t, rl.Wait(ctx))
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, rl.Wait(ctx))
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.Stop()
	rl.Stop()
	assert.NoError(t, rl.Wait(context.Background()))
}
