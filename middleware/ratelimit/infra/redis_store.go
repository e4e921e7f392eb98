package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"application-portal/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript avalia a janela de forma atômica no Redis.
//
// KEYS[1] = sorted set da chave; ARGV = now(ms), janela(ms), max, member.
// Retorna {admitido(0|1), quantidade na janela, score da mais antiga}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local score = 0
  if oldest[2] then
    score = tonumber(oldest[2])
  end
  return {0, count, score}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisStore mantém a janela deslizante num sorted set por chave, permitindo
// que várias instâncias compartilhem o mesmo limite.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
	rule   domain.Window
}

type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisStore(rdb redis.Scripter, max int, window time.Duration, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "portal:ratelimit",
		rule:   domain.Window{Max: max, Size: window},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Rule() domain.Window { return s.rule }

// Get implementa domain.LimiterStore.
func (s *RedisStore) Get(key domain.Key) domain.Limiter {
	return redisWindow{store: s, key: s.prefix + ":" + string(key)}
}

type redisWindow struct {
	store *RedisStore
	key   string
}

func (w redisWindow) Admit(ctx context.Context, now time.Time) (domain.Decision, error) {
	rule := w.store.rule
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, w.store.rdb, []string{w.key},
		nowMs, rule.Size.Milliseconds(), rule.Max, member,
	).Int64Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("redis sliding window %q: %w", w.key, err)
	}
	if len(res) != 3 {
		return domain.Decision{}, fmt.Errorf("redis sliding window %q: unexpected reply %v", w.key, res)
	}

	if res[0] == 1 {
		return domain.Decision{Allowed: true, Remaining: rule.Max - int(res[1])}, nil
	}

	retry := time.Duration(0)
	if res[2] > 0 {
		retry = time.UnixMilli(res[2]).Add(rule.Size).Sub(now)
	}
	return domain.Decision{Allowed: false, RetryAfter: retry}, nil
}
