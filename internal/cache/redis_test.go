package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/content-assistant/internal/config"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:"), mr
}

func TestRedis_SetGet(t *testing.T) {
	store, mr := newTestRedis(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte(`{"success":true}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatal("expected prefixed key in redis")
	}

	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(val) != `{"success":true}` {
		t.Errorf("unexpected value %q", val)
	}
}

func TestRedis_MissIsNotAnError(t *testing.T) {
	store, _ := newTestRedis(t)
	_, ok, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestRedis_ExpiresAfterTTL(t *testing.T) {
	store, mr := newTestRedis(t)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Hour)

	mr.FastForward(59 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("entry should survive before ttl")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("entry should expire after ttl")
	}
}

func TestRedis_Unavailable(t *testing.T) {
	store, mr := newTestRedis(t)
	mr.Close()

	if err := store.Set(context.Background(), "k", []byte("v"), time.Hour); err == nil {
		t.Error("expected Set to fail when redis is down")
	}
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Error("expected Get to fail when redis is down")
	}
}

func TestFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tests := []struct {
		backend string
		rdb     *redis.Client
		want    string
	}{
		{config.CacheBackendAuto, rdb, "redis"},
		{config.CacheBackendAuto, nil, "memory"},
		{config.CacheBackendRedis, rdb, "redis"},
		{config.CacheBackendRedis, nil, "none"},
		{config.CacheBackendMemory, rdb, "memory"},
		{config.CacheBackendNone, rdb, "none"},
	}

	for _, tt := range tests {
		_, name := FromConfig(config.CacheConfig{Backend: tt.backend, MaxEntries: 10}, tt.rdb)
		if name != tt.want {
			t.Errorf("FromConfig(%s, redis=%v) = %s, want %s", tt.backend, tt.rdb != nil, name, tt.want)
		}
	}
}
