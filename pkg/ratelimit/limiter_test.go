package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instascraper/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RateLimitConfig
		want    Limiter
		wantErr bool
	}{
		{"disabled", config.RateLimitConfig{}, nil, false},
		{"default strategy", config.RateLimitConfig{RequestsPerMinute: 30}, &TokenBucket{}, false},
		{"sliding window", config.RateLimitConfig{RequestsPerMinute: 30, Strategy: StrategySlidingWindow}, &SlidingWindow{}, false},
		{"unknown strategy", config.RateLimitConfig{RequestsPerMinute: 30, Strategy: "leaky"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, l)
				return
			}
			assert.IsType(t, tt.want, l)
		})
	}
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be exhausted")

	// one token comes back every 200ms
	time.Sleep(250 * time.Millisecond)
	assert.True(t, tb.Allow())

	tb.Reset()
	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available after reset", i+1)
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, tb.Wait(ctx))

	start := time.Now()
	require.NoError(t, tb.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenBucketWaitCanceled(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, tb.Wait(ctx))
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, sw.Allow(), "limit should be reached")

	time.Sleep(250 * time.Millisecond)
	assert.True(t, sw.Allow(), "window should have slid")

	sw.Reset()
	assert.Empty(t, sw.requests)
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, sw.Wait(ctx))

	start := time.Now()
	require.NoError(t, sw.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSlidingWindowWaitCanceled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	require.True(t, sw.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sw.Wait(ctx), context.Canceled)
}
