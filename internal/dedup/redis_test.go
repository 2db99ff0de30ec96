package dedup

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/abhisek/calcmaster/internal/questiongen"
)

func TestRedisKey(t *testing.T) {
	if got := redisKey(42); got != "calcmaster:fp:42" {
		t.Errorf("redisKey(42) = %q", got)
	}
}

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestNewRedisStore_PingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisStore(context.Background(), addr, time.Minute); err == nil {
		t.Fatal("expected ping error for a stopped server")
	}
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_AddChecksAndInserts(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	added, err := s.Add(ctx, 1, "fp-a")
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v; want true, nil", added, err)
	}
	added, err = s.Add(ctx, 1, "fp-a")
	if err != nil || added {
		t.Fatalf("repeat Add = %v, %v; want false, nil", added, err)
	}
	if added, _ := s.Add(ctx, 2, "fp-a"); !added {
		t.Error("another user's set should not contain fp-a")
	}

	members, err := mr.SMembers(redisKey(1))
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	if !slices.Equal(members, []string{"fp-a"}) {
		t.Errorf("members = %v, want [fp-a]", members)
	}
	if ttl := mr.TTL(redisKey(1)); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}
}

func TestRedisStore_TTLRefreshedAndExpires(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	s.Add(ctx, 1, "fp-a")
	mr.FastForward(40 * time.Second)
	s.Add(ctx, 1, "fp-b")
	if ttl := mr.TTL(redisKey(1)); ttl != time.Minute {
		t.Errorf("TTL after insert = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists(redisKey(1)) {
		t.Fatal("idle user set should have expired")
	}
	if added, _ := s.Add(ctx, 1, "fp-a"); !added {
		t.Error("fp-a should be new after expiry")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	s.Add(ctx, 1, "fp-a")
	s.Add(ctx, 2, "fp-a")
	if err := s.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if mr.Exists(redisKey(1)) {
		t.Error("user 1 set still exists")
	}
	if !mr.Exists(redisKey(2)) {
		t.Error("user 2 set was removed")
	}
	if added, _ := s.Add(ctx, 1, "fp-a"); !added {
		t.Error("fp-a should be new after Clear")
	}
}

func TestRedisStore_ErrorAfterServerStops(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	mr.Close()
	if _, err := s.Add(context.Background(), 1, "fp-a"); err == nil {
		t.Error("expected Add error")
	}
	if err := s.Clear(context.Background(), 1); err == nil {
		t.Error("expected Clear error")
	}
}

func TestFilter_WithRedisStore(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	f := NewFilter(s, nil, nil)
	ctx := context.Background()

	batch := func() []questiongen.Question {
		return []questiongen.Question{question("What is 1?"), question("What is 2?")}
	}
	first := f.Filter(ctx, batch(), 9)
	if len(first) != 2 {
		t.Fatalf("first pass kept %d, want 2", len(first))
	}
	if again := f.Filter(ctx, batch(), 9); len(again) != 0 {
		t.Errorf("second pass kept %v", texts(again))
	}
	if err := f.Clear(ctx, 9); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if after := f.Filter(ctx, batch(), 9); len(after) != 2 {
		t.Errorf("after Clear kept %d, want 2", len(after))
	}
}
