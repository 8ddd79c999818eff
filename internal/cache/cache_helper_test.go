package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*miniredis.Miniredis, *CacheHelper) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewCacheHelper(client, prefix)
}

type cachedCourse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	_, helper := newTestHelper(t, "course:")

	want := cachedCourse{ID: 7, Title: "Options Basics"}
	if err := helper.Set(ctx, "id:7", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got cachedCourse
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if err := helper.Get(ctx, "id:8", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() missing key error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	mr, helper := newTestHelper(t, "progress:")

	if err := helper.Set(ctx, "user:u1:course:1", cachedCourse{ID: 1}, 2*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(3 * time.Minute)

	var got cachedCourse
	if err := helper.Get(ctx, "user:u1:course:1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	ctx := context.Background()
	_, helper := newTestHelper(t, "course:")

	_ = helper.Set(ctx, "id:1", cachedCourse{ID: 1}, time.Minute)
	_ = helper.Set(ctx, "id:2", cachedCourse{ID: 2}, time.Minute)

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got cachedCourse
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	_, helper := newTestHelper(t, "lesson:")

	for i := 1; i <= 5; i++ {
		_ = helper.Set(ctx, fmt.Sprintf("course:1:%d", i), cachedCourse{ID: uint(i)}, time.Minute)
	}
	_ = helper.Set(ctx, "course:2:1", cachedCourse{ID: 99}, time.Minute)

	if err := helper.InvalidatePattern(ctx, "course:1:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	var got cachedCourse
	for i := 1; i <= 5; i++ {
		if err := helper.Get(ctx, fmt.Sprintf("course:1:%d", i), &got); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("key course:1:%d survived invalidation", i)
		}
	}
	if err := helper.Get(ctx, "course:2:1", &got); err != nil {
		t.Errorf("unrelated key was invalidated: %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	_, helper := newTestHelper(t, "course:")

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &cachedCourse{ID: 3, Title: "Fetched"}, nil
	}

	var got cachedCourse
	if err := helper.CacheOrExecute(ctx, "id:3", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
	if got.Title != "Fetched" {
		t.Errorf("got %+v", got)
	}

	// The async set has to land before the second read can hit the cache.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if exists, _ := helper.Exists(ctx, "id:3"); exists {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedCourse
	if err := helper.CacheOrExecute(ctx, "id:3", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() second call error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times after warm cache, want 1", calls)
	}
}

func TestCacheHelper_GracefulDegradation(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "course:")

	if err := helper.Set(ctx, "id:1", cachedCourse{ID: 1}, time.Minute); err != nil {
		t.Errorf("Set() without client error = %v, want nil", err)
	}

	var got cachedCourse
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() without client error = %v, want ErrCacheNotAvailable", err)
	}

	calls := 0
	err := helper.CacheOrExecute(ctx, "id:1", &got, time.Minute, func() (interface{}, error) {
		calls++
		return &cachedCourse{ID: 1, Title: "Direct"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute() without client error = %v", err)
	}
	if calls != 1 || got.Title != "Direct" {
		t.Errorf("fetch fallback failed: calls=%d got=%+v", calls, got)
	}
}
