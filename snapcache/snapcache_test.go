package snapcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meenmo/bondrv/curve"
)

func testCurve(t *testing.T) *curve.YieldCurve {
	t.Helper()
	c, err := curve.New("Germany", curve.KindPar, curve.UnitPercent, []curve.Point{
		{Tenor: 2, Rate: 2.95},
		{Tenor: 10, Rate: 2.50},
	})
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	return c
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	if _, err := m.Get(ctx, "Germany"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty cache error = %v, want ErrNotFound", err)
	}

	want := testCurve(t)
	if err := m.Put(ctx, "Germany", want, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get(ctx, "Germany")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Issuer() != "Germany" || got.Len() != 2 {
		t.Fatalf("Get returned %q with %d points", got.Issuer(), got.Len())
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	clock := time.Now()
	m.now = func() time.Time { return clock }

	if err := m.Put(ctx, "Germany", testCurve(t), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := m.Get(ctx, "Germany"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "Germany"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemoryHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	if err := m.Put(ctx, "k", testCurve(t), 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put with cancelled context error = %v, want context.Canceled", err)
	}
}
