package http

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "login:1.2.3.4"); !ok {
			t.Fatalf("hit %d rejected", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "login:1.2.3.4"); ok {
		t.Fatal("4th hit in window allowed")
	}
	if ok, _ := l.Allow(ctx, "login:5.6.7.8"); !ok {
		t.Fatal("other client rejected")
	}

	// rejected hits do not extend the window
	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "login:1.2.3.4"); !ok {
		t.Fatal("new window rejected")
	}
}

func TestMemoryLimiter_SweepsExpiredWindows(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Second)
	l.now = func() time.Time { return now }

	l.windows["stale"] = &window{hits: 1, start: now.Add(-time.Hour)}
	l.windows["live"] = &window{hits: 1, start: now}
	l.sweep(now)

	if _, ok := l.windows["stale"]; ok {
		t.Fatal("expired window kept")
	}
	if _, ok := l.windows["live"]; !ok {
		t.Fatal("live window dropped")
	}
}
