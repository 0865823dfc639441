package movecache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, time.Minute, nil)
}

func TestRedisStoreInsertLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	if _, ok := s.Lookup(ctx, "fenA"); ok {
		t.Fatalf("empty cache must miss")
	}
	s.Insert(ctx, "fenA", "e2e4")
	if mv, ok := s.Lookup(ctx, "fenA"); !ok || mv != "e2e4" {
		t.Fatalf("lookup after insert: %q ok=%v", mv, ok)
	}
	if _, ok := s.Lookup(ctx, "fenB"); ok {
		t.Fatalf("different key must miss")
	}
}

func TestRedisStoreKeysAreHashed(t *testing.T) {
	// two different FENs must never collide even with exotic characters
	a := cacheKey("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	b := cacheKey("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if a == b {
		t.Fatalf("keys collide")
	}
	if len(a) != len(keyPrefix)+64 {
		t.Fatalf("unexpected key shape: %s", a)
	}
}

func TestRedisStoreBackendFailureIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, time.Minute, nil)
	s.Insert(ctx, "fenA", "e2e4")
	mr.Close()

	if _, ok := s.Lookup(ctx, "fenA"); ok {
		t.Fatalf("dead backend must read as a miss")
	}
	// insert against a dead backend must not panic
	s.Insert(ctx, "fenB", "d2d4")
}

func TestParseRedisURL(t *testing.T) {
	opts, err := ParseRedisURL("redis://:secret@localhost:6390/2")
	if err != nil {
		t.Fatalf("ParseRedisURL: %v", err)
	}
	if opts.Addr != "localhost:6390" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if _, err := ParseRedisURL("http://localhost"); err == nil {
		t.Fatalf("non-redis scheme must be rejected")
	}
}
