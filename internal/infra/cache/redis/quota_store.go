package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
)

const quotaPrefix = "tp:quota:"

// consumeScript charges ARGV[1] tokens against KEYS[1] unless that would pass
// the limit ARGV[2]. The window ARGV[3] (ms) starts on first use.
// Returns {allowed, used, pttl}.
var consumeScript = goredis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local tokens = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if used + tokens > limit then
  return {0, used, redis.call('PTTL', KEYS[1])}
end
used = redis.call('INCRBY', KEYS[1], tokens)
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return {1, used, redis.call('PTTL', KEYS[1])}
`)

// QuotaStore shares budgets between instances. The script runs atomically
// on the server.
type QuotaStore struct {
	rdb *goredis.Client
}

func NewQuotaStore(rdb *goredis.Client) *QuotaStore { return &QuotaStore{rdb: rdb} }

func (s *QuotaStore) Consume(ctx context.Context, key string, tokens, limit int64, window time.Duration) (quota.Decision, error) {
	res, err := consumeScript.Run(ctx, s.rdb, []string{quotaPrefix + key}, tokens, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return quota.Decision{}, fmt.Errorf("quota script: %w", err)
	}
	if len(res) != 3 {
		return quota.Decision{}, fmt.Errorf("quota script: unexpected reply %v", res)
	}
	return decisionFromReply(res, limit, window, time.Now()), nil
}

func decisionFromReply(res []int64, limit int64, window time.Duration, now time.Time) quota.Decision {
	used, pttl := res[1], res[2]
	ttl := window
	if pttl > 0 {
		ttl = time.Duration(pttl) * time.Millisecond
	}
	return quota.Decision{
		Allowed:   res[0] == 1,
		Used:      used,
		Remaining: max(0, limit-used),
		ResetAt:   now.Add(ttl),
	}
}
