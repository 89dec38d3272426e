package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hexsyn/intake/internal/database"
)

// slidingWindow trims the window, counts it and records the request if the
// budget allows. Returns {allowed, count, oldest score in ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisLimiter keeps one sorted set of request timestamps per key, shared
// by every instance pointing at the same Redis.
type RedisLimiter struct {
	rdb    *database.Redis
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a RedisLimiter
func NewRedisLimiter(rdb *database.Redis) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: "ratelimit:", now: time.Now}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	now := l.now()
	res, err := slidingWindow.Run(ctx, l.rdb.Client, []string{l.prefix + key},
		now.UnixMilli(),
		rule.Window.Milliseconds(),
		rule.Limit,
		fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("sliding window for %s: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("sliding window for %s: unexpected reply %v", key, res)
	}

	return decide(res[0] == 1, int(res[1]), time.UnixMilli(res[2]), now, rule), nil
}
