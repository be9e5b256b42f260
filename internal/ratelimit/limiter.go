package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gymdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scope names a throttled operation.
type Scope string

const (
	ScopeSessionOpen Scope = "session_open"
	ScopeTaxQuote    Scope = "tax_quote"
)

const keyFormat = "gymdesk:ratelimit:%s:%s"

// Rule is a token bucket refilling Rate tokens per second up to Burst.
type Rule struct {
	Rate  float64
	Burst int
}

// Limiter throttles billing operations per client. A nil Limiter allows
// everything.
type Limiter struct {
	bucket Bucket
	rules  map[Scope]Rule
}

func NewLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*Limiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	rules := map[Scope]Rule{
		ScopeSessionOpen: {Rate: limitCfg.SessionOpenRate, Burst: limitCfg.SessionOpenBurst},
		ScopeTaxQuote:    {Rate: limitCfg.QuoteRate, Burst: limitCfg.QuoteBurst},
	}
	for scope, rule := range rules {
		if rule.Rate <= 0 || rule.Burst <= 0 {
			return nil, fmt.Errorf("%s rate limit must be positive", scope)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("rate limit redis unreachable", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewLimiterWithBucket(NewTokenBucket(client), rules), nil
}

// NewLimiterWithBucket builds a Limiter over an arbitrary bucket store.
func NewLimiterWithBucket(bucket Bucket, rules map[Scope]Rule) *Limiter {
	return &Limiter{bucket: bucket, rules: rules}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow spends one token of clientKey's budget for scope. Scopes without a
// rule are never throttled.
func (l *Limiter) Allow(ctx context.Context, scope Scope, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	rule, ok := l.rules[scope]
	if !ok {
		return &Result{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyFormat, scope, clientKey), rule.Rate, rule.Burst)
}
