package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "review_compare/internal/adapters/redis"
)

type payload struct {
	Product string         `json:"product"`
	Scores  map[string]int `json:"scores"`
}

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_GetSetRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got payload
	ok, err := c.Get(ctx, "compare:a|b", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := payload{Product: "a", Scores: map[string]int{"Camera": 80}}
	if err := c.Set(ctx, "compare:a|b", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("compare:a|b"); ttl <= 0 {
		t.Fatalf("expected ttl, got %v", ttl)
	}

	ok, err = c.Get(ctx, "compare:a|b", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Product != "a" || got.Scores["Camera"] != 80 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestCache_DelMatch(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	for _, k := range []string{"compare:a|b", "compare:b|c", "other:x"} {
		if err := c.Set(ctx, k, payload{Product: k}, 60); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if err := c.DelMatch(ctx, "compare:*"); err != nil {
		t.Fatalf("delmatch: %v", err)
	}
	if mr.Exists("compare:a|b") || mr.Exists("compare:b|c") {
		t.Fatal("compare keys should be gone")
	}
	if !mr.Exists("other:x") {
		t.Fatal("unrelated key removed")
	}
}
