package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

// memoryBucket refills nothing: each key gets burst tokens in total.
type memoryBucket struct {
	spent map[string]int
	keys  []string
	err   error
}

func (b *memoryBucket) Allow(_ context.Context, key string, rate float64, burst int) (*Result, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := validateBucket(key, rate, burst); err != nil {
		return nil, err
	}
	b.keys = append(b.keys, key)
	remaining := float64(burst - b.spent[key])
	if remaining < 1 {
		return newResult(false, remaining, rate, burst), nil
	}
	b.spent[key]++
	return newResult(true, remaining-1, rate, burst), nil
}

func TestLimiter_Disabled(t *testing.T) {
	var l *Limiter
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), ScopeSessionOpen, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	got, err := NewLimiter(fxtest.NewLifecycle(t), config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewLimiter_Validation(t *testing.T) {
	_, err := NewLimiter(fxtest.NewLifecycle(t), config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true},
	}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewLimiter(fxtest.NewLifecycle(t), config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, RedisAddr: "localhost:6379", SessionOpenRate: 1, SessionOpenBurst: 1},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	bucket := &memoryBucket{spent: map[string]int{}}
	l := NewLimiterWithBucket(bucket, map[Scope]Rule{
		ScopeSessionOpen: {Rate: 0.5, Burst: 2},
	})

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, ScopeSessionOpen, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := l.Allow(ctx, ScopeSessionOpen, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 2*time.Second, res.RetryAfter)

	other, err := l.Allow(ctx, ScopeSessionOpen, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	unruled, err := l.Allow(ctx, ScopeTaxQuote, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, unruled.Allowed)

	assert.Equal(t, "gymdesk:ratelimit:session_open:10.0.0.1", bucket.keys[0])
}

func TestLimiter_BucketError(t *testing.T) {
	l := NewLimiterWithBucket(&memoryBucket{err: errors.New("redis down")}, map[Scope]Rule{
		ScopeTaxQuote: {Rate: 1, Burst: 1},
	})
	_, err := l.Allow(context.Background(), ScopeTaxQuote, "")
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 10))
	assert.Equal(t, 20*time.Second, defaultBucketTTL(1, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(3), castToInt("3"))
	assert.Equal(t, int64(0), castToInt(nil))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
}
