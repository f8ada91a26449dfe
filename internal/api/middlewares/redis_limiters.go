package middlewares

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Both scripts read the clock with TIME so every API instance agrees on it.

// KEYS[1] bucket hash {tokens, at_ms}; ARGV rate/s, capacity.
// Returns {allowed, remaining, retry_ms}.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local cap  = tonumber(ARGV[2])
local now  = redis.call('TIME')
local ms   = tonumber(now[1]) * 1000 + math.floor(tonumber(now[2]) / 1000)

local st = redis.call('HMGET', KEYS[1], 'tokens', 'at_ms')
local tokens = tonumber(st[1]) or cap
local at = tonumber(st[2]) or ms
if ms > at then
  tokens = math.min(cap, tokens + (ms - at) * rate / 1000)
end

local ok, wait = 0, 0
if tokens >= 1 then
  tokens = tokens - 1
  ok = 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'at_ms', ms)
redis.call('PEXPIRE', KEYS[1], math.ceil(cap * 1000 / rate) + 1000)
return {ok, math.floor(tokens), wait}
`)

// KEYS[1] zset of request stamps; ARGV window_ms, limit, member.
// Rejected requests are not recorded. Returns {allowed, remaining, retry_ms}.
var slidingWindowScript = redis.NewScript(`
local window = tonumber(ARGV[1])
local limit  = tonumber(ARGV[2])
local now    = redis.call('TIME')
local ms     = tonumber(now[1]) * 1000 + math.floor(tonumber(now[2]) / 1000)

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ms - window)
local used = redis.call('ZCARD', KEYS[1])
if used < limit then
  redis.call('ZADD', KEYS[1], ms, ARGV[3])
  redis.call('PEXPIRE', KEYS[1], window + 1000)
  return {1, limit - used - 1, 0}
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local wait = 1000
if oldest[2] then
  wait = math.max(tonumber(oldest[2]) + window - ms, 1)
end
return {0, 0, wait}
`)

func runLimitScript(ctx context.Context, rdb redis.UniversalClient, s *redis.Script, key string, limit int, args ...any) (Decision, error) {
	res, err := s.Run(ctx, rdb, []string{key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("limiter script: unexpected reply %v", res)
	}
	return Decision{
		Allowed:    res[0] == 1,
		Limit:      limit,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// RedisTokenBucket allows burst requests at once and refills at rate per
// second, shared by every instance on the same Redis.
type RedisTokenBucket struct {
	rdb   redis.UniversalClient
	rate  float64
	burst int
}

func NewRedisTokenBucket(rdb redis.UniversalClient, ratePerSecond float64, burst int) *RedisTokenBucket {
	return &RedisTokenBucket{rdb: rdb, rate: ratePerSecond, burst: burst}
}

func (tb *RedisTokenBucket) Policy() string { return "token-bucket" }

func (tb *RedisTokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	return runLimitScript(ctx, tb.rdb, tokenBucketScript, key, tb.burst,
		strconv.FormatFloat(tb.rate, 'f', -1, 64), tb.burst)
}

// RedisSlidingWindow allows at most limit requests in any trailing window.
type RedisSlidingWindow struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
}

func NewRedisSlidingWindow(rdb redis.UniversalClient, limit int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{rdb: rdb, limit: limit, window: window}
}

func (sw *RedisSlidingWindow) Policy() string { return "sliding-window" }

func (sw *RedisSlidingWindow) Allow(ctx context.Context, key string) (Decision, error) {
	return runLimitScript(ctx, sw.rdb, slidingWindowScript, key, sw.limit,
		sw.window.Milliseconds(), sw.limit, uuid.NewString())
}
