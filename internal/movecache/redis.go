package movecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "chess:bestmove:"

// RedisStore shares the cache across processes. Backend failures never break
// move selection: a failed lookup counts as a miss, a failed insert is
// dropped, both with a log line.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

func (s *RedisStore) Lookup(ctx context.Context, fen string) (string, bool) {
	val, err := s.rdb.Get(ctx, cacheKey(fen)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.logger.Warn("move cache lookup failed", zap.Error(err))
		return "", false
	}
	return val, true
}

func (s *RedisStore) Insert(ctx context.Context, fen string, moveUCI string) {
	if err := s.rdb.Set(ctx, cacheKey(fen), moveUCI, s.ttl).Err(); err != nil {
		s.logger.Warn("move cache insert failed", zap.Error(err))
	}
}

// cacheKey hashes the FEN so keys stay fixed-length and free of spaces.
func cacheKey(fen string) string {
	sum := sha256.Sum256([]byte(fen))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// ParseRedisURL turns a redis:// URL into client options.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
