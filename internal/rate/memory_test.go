package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/prepmood/internal/rate"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l := rate.NewMemoryLimiter(3, time.Hour)

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "ip:1.2.3.4")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i)
		}
		if res.CurrentHits != int64(i) {
			t.Errorf("hit %d: CurrentHits = %d", i, res.CurrentHits)
		}
		if res.Remaining != int64(3-i) {
			t.Errorf("hit %d: Remaining = %d, want %d", i, res.Remaining, 3-i)
		}
	}

	res, err := l.Allow(ctx, "ip:1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("4th hit should be denied")
	}
	if res.Remaining != 0 {
		t.Errorf("denied: Remaining = %d, want 0", res.Remaining)
	}
	if res.RetryAfter <= 0 {
		t.Errorf("denied: RetryAfter = %v, want > 0", res.RetryAfter)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := rate.NewMemoryLimiter(1, time.Hour)

	if res, _ := l.Allow(ctx, "ip:a"); !res.Allowed {
		t.Fatal("first hit on key a should pass")
	}
	if res, _ := l.Allow(ctx, "ip:a"); res.Allowed {
		t.Fatal("second hit on key a should be denied")
	}
	if res, _ := l.Allow(ctx, "ip:b"); !res.Allowed {
		t.Fatal("key b has its own window")
	}
}
