package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/config"
	redis "github.com/redis/go-redis/v9"
)

// Rule defines a rate limiting policy for a single client and endpoint.
type Rule struct {
	Limit  int
	Burst  int
	Window time.Duration
}

// Result captures the outcome of a rate limiting decision.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
	ResetAfter time.Duration
}

// Limiter implements a Redis-backed token bucket rate limiter.
type Limiter struct {
	client redis.Scripter
	cfg    config.RateLimitConfig
	script *redis.Script
	now    func() time.Time
}

// tokenBucketScript refills the bucket for the elapsed time, takes one token
// if available and returns {allowed, tokens_left, retry_after_ms}.
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local refillRate = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call("HMGET", key, "tokens", "timestamp")
local tokens = tonumber(data[1])
local timestamp = tonumber(data[2])

if tokens == nil then
    tokens = capacity
elseif timestamp ~= nil and now > timestamp then
    tokens = math.min(capacity, tokens + ((now - timestamp) * refillRate))
end

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call("HSET", key, "tokens", tokens, "timestamp", now)
redis.call("PEXPIRE", key, ttl)

local retryAfter = 0
if allowed == 0 then
    retryAfter = math.ceil((1 - tokens) / refillRate)
end

return {allowed, math.floor(tokens), retryAfter}
`

// NewLimiter creates a new Limiter instance.
func NewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// RuleFor determines the effective rule for the provided endpoint.
func (l *Limiter) RuleFor(endpoint string) Rule {
	rule := Rule{
		Limit:  l.cfg.AnonymousLimit,
		Burst:  l.cfg.AnonymousBurst,
		Window: l.cfg.Window(),
	}

	if override, ok := l.cfg.EndpointOverrides[endpoint]; ok {
		if override.WindowSeconds > 0 {
			rule.Window = time.Duration(override.WindowSeconds) * time.Second
		}
		if override.Limit > 0 {
			rule.Limit = override.Limit
		}
		if override.Burst >= 0 {
			rule.Burst = override.Burst
		}
	}

	if rule.Burst < 0 {
		rule.Burst = 0
	}
	return rule
}

// Allow takes one token from the bucket identified by endpoint and client.
func (l *Limiter) Allow(ctx context.Context, endpoint, client string, rule Rule) (Result, error) {
	if !l.cfg.Enabled || rule.Limit <= 0 {
		return Result{Allowed: true, Remaining: rule.Limit, Limit: rule.Limit}, nil
	}

	windowMillis := rule.Window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = time.Minute.Milliseconds()
	}

	refillRate := float64(rule.Limit) / float64(windowMillis)
	capacity := float64(rule.Limit + rule.Burst)

	raw, err := l.script.Run(ctx, l.client,
		[]string{l.Key(endpoint, client)},
		l.now().UnixMilli(), formatFloat(refillRate), formatFloat(capacity), windowMillis*2,
	).Result()
	if err != nil {
		return Result{}, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Result{}, errors.New("unexpected script response")
	}

	allowed := toInt(values[0]) == 1
	remaining := toInt(values[1])
	retryAfter := time.Duration(toInt(values[2])) * time.Millisecond

	result := Result{
		Allowed:    allowed,
		Remaining:  max(remaining, 0),
		Limit:      rule.Limit,
		RetryAfter: retryAfter,
		ResetAfter: retryAfter,
	}

	if allowed {
		missing := math.Max(capacity-float64(remaining), 0)
		result.ResetAfter = time.Duration(math.Ceil(missing/refillRate)) * time.Millisecond
		result.RetryAfter = 0
	}

	return result, nil
}

// Key returns the Redis key holding the bucket for endpoint and client.
func (l *Limiter) Key(endpoint, client string) string {
	return fmt.Sprintf("%s:%s:%s", l.cfg.RedisPrefix, endpoint, client)
}

// WithNow overrides the time source (useful for tests).
func (l *Limiter) WithNow(now func() time.Time) {
	l.now = now
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case string:
		i, _ := strconv.Atoi(v)
		return i
	default:
		return 0
	}
}
