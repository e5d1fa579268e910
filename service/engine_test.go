package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/bondrv/config"
	"github.com/meenmo/bondrv/marketdata"
	"github.com/meenmo/bondrv/rv"
	"github.com/meenmo/bondrv/service"
	"github.com/meenmo/bondrv/snapcache"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Countries = []string{"Germany", "France", "Italy", "United States"}
	return cfg
}

func TestEngineComputeEndToEnd(t *testing.T) {
	t.Parallel()

	cache := snapcache.NewMemory()
	eng := service.NewEngine(testConfig(), marketdata.NewStaticProvider(), cache, nil)
	snap, err := eng.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if snap.Reference != "Germany" {
		t.Fatalf("reference = %q, want Germany", snap.Reference)
	}
	if len(snap.Countries) != 4 {
		t.Fatalf("snapshot has %d markets, want 4", len(snap.Countries))
	}
	for _, ccy := range []string{"EUR", "USD"} {
		if _, ok := snap.SwapZeros[ccy]; !ok {
			t.Fatalf("missing %s swap zero curve", ccy)
		}
	}

	fr := snap.Countries["France"]
	if fr == nil || fr.Par == nil || fr.Zero == nil {
		t.Fatalf("France market incomplete: %+v", fr)
	}
	for _, mode := range []string{"gov-vs-ref", "asw", "irs-vs-eur"} {
		if _, ok := fr.Spreads[mode]; !ok {
			t.Fatalf("France missing %s spread", mode)
		}
	}
	if len(fr.Shape) == 0 || len(fr.Flies) != 2 || len(fr.CarryRoll) == 0 {
		t.Fatalf("France analytics incomplete: shape=%d flies=%d carryroll=%d",
			len(fr.Shape), len(fr.Flies), len(fr.CarryRoll))
	}

	// France trades above Germany at 10Y in the bundled tables: 2.95 vs
	// 2.50 → +45bp par spread.
	var got float64
	found := false
	for _, p := range fr.Spreads["gov-vs-ref"].Points {
		if math.Abs(p.Tenor-10) < 1e-9 {
			got, found = p.SpreadBP, true
		}
	}
	if !found || math.Abs(got-45) > 1e-9 {
		t.Fatalf("France 10Y spread = %v (found=%v), want 45bp", got, found)
	}

	// Reference self-spread is exactly zero.
	de := snap.Countries["Germany"]
	for _, p := range de.Spreads["gov-vs-ref"].Points {
		if p.SpreadBP != 0 {
			t.Fatalf("Germany self-spread at %vY = %v, want exact 0", p.Tenor, p.SpreadBP)
		}
	}
	// EUR-vs-EUR swap identity is exactly zero too.
	for _, p := range de.Spreads["irs-vs-eur"].Points {
		if p.SpreadBP != 0 {
			t.Fatalf("EUR IRS self-spread at %vY = %v, want exact 0", p.Tenor, p.SpreadBP)
		}
	}

	if len(snap.Matrix.Rows) != 4 || len(snap.Matrix.Tenors) != 4 {
		t.Fatalf("matrix is %dx%d, want 4 markets x 4 tenors", len(snap.Matrix.Rows), len(snap.Matrix.Tenors))
	}

	// Zero curves landed in the cache.
	if _, err := cache.Get(context.Background(), "zero:France"); err != nil {
		t.Fatalf("cached zero curve missing: %v", err)
	}
	if _, err := cache.Get(context.Background(), "swap:EUR"); err != nil {
		t.Fatalf("cached swap curve missing: %v", err)
	}
}

func TestEngineDegradesOnMissingReference(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Countries = []string{"France", "Italy"}
	cfg.ReferenceCountry = "France"
	eng := service.NewEngine(cfg, missingCountryProvider{skip: "France"}, nil, nil)
	snap, err := eng.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Italy keeps every analytic that does not need the reference market.
	it := snap.Countries["Italy"]
	if it == nil || it.Par == nil || it.Zero == nil {
		t.Fatalf("Italy market incomplete: %+v", it)
	}
	for _, mode := range []string{"asw", "irs-vs-eur"} {
		if _, ok := it.Spreads[mode]; !ok {
			t.Fatalf("Italy missing %s spread without a reference market", mode)
		}
	}
	if len(it.Shape) == 0 || len(it.Flies) == 0 || len(it.CarryRoll) == 0 {
		t.Fatalf("Italy analytics incomplete: shape=%d flies=%d carryroll=%d",
			len(it.Shape), len(it.Flies), len(it.CarryRoll))
	}

	// The reference-relative mode and the matrix are the only casualties.
	if _, ok := it.Spreads["gov-vs-ref"]; ok {
		t.Fatal("gov-vs-ref spread computed without a reference curve")
	}
	if len(snap.Matrix.Rows) != 0 {
		t.Fatalf("matrix has %d rows without a reference market, want 0", len(snap.Matrix.Rows))
	}
	found := false
	for _, om := range snap.Omissions {
		if om.Issuer == "France" && om.Mode == rv.ModeGovVsRef.String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing reference left no omission trail: %+v", snap.Omissions)
	}
}

func TestEngineDegradesOnUnmappedCurrency(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Countries = []string{"Germany", "Australia"}
	delete(cfg.CountryCurrency, "Australia")
	eng := service.NewEngine(cfg, marketdata.NewStaticProvider(), nil, nil)
	snap, err := eng.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	au := snap.Countries["Australia"]
	if au == nil || au.Par == nil {
		t.Fatalf("Australia market incomplete: %+v", au)
	}
	if _, ok := au.Spreads["gov-vs-ref"]; !ok {
		t.Fatal("gov-vs-ref spread should not need a currency mapping")
	}
	for _, mode := range []string{"asw", "irs-vs-eur"} {
		if _, ok := au.Spreads[mode]; ok {
			t.Fatalf("%s spread computed without a currency mapping", mode)
		}
	}
	found := false
	for _, om := range snap.Omissions {
		if om.Issuer == "Australia" && om.Mode == "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unmapped currency left no omission trail: %+v", snap.Omissions)
	}
}

func TestEngineDegradesOnMissingSwaps(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Countries = []string{"Germany", "Japan"}
	eng := service.NewEngine(cfg, noSwapProvider{inner: marketdata.NewStaticProvider()}, nil, nil)
	snap, err := eng.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	de := snap.Countries["Germany"]
	if _, ok := de.Spreads["gov-vs-ref"]; !ok {
		t.Fatal("par spread should survive a broken swap feed")
	}
	if _, ok := de.Spreads["asw"]; ok {
		t.Fatal("asw spread computed without a swap curve")
	}
	if len(snap.Omissions) == 0 {
		t.Fatal("missing swap curves left no omission trail")
	}
}

func TestRefresherServesLatest(t *testing.T) {
	t.Parallel()

	eng := service.NewEngine(testConfig(), marketdata.NewStaticProvider(), nil, nil)
	r := service.NewRefresher(eng, time.Hour)

	if _, err := r.Latest(); !errors.Is(err, service.ErrNoSnapshot) {
		t.Fatalf("Latest before refresh error = %v, want ErrNoSnapshot", err)
	}
	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	snap, err := r.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(snap.Countries) != 4 {
		t.Fatalf("latest snapshot has %d markets, want 4", len(snap.Countries))
	}
}

// missingCountryProvider drops one country from the static tables.
type missingCountryProvider struct {
	skip string
}

func (p missingCountryProvider) BondQuotes(ctx context.Context, countries []string) ([]marketdata.Quote, error) {
	kept := make([]string, 0, len(countries))
	for _, c := range countries {
		if c != p.skip {
			kept = append(kept, c)
		}
	}
	return marketdata.NewStaticProvider().BondQuotes(ctx, kept)
}

func (p missingCountryProvider) SwapQuotes(ctx context.Context, currency string) ([]marketdata.Quote, error) {
	return marketdata.NewStaticProvider().SwapQuotes(ctx, currency)
}

// noSwapProvider serves bonds but fails every swap request.
type noSwapProvider struct {
	inner marketdata.Provider
}

func (p noSwapProvider) BondQuotes(ctx context.Context, countries []string) ([]marketdata.Quote, error) {
	return p.inner.BondQuotes(ctx, countries)
}

func (p noSwapProvider) SwapQuotes(ctx context.Context, currency string) ([]marketdata.Quote, error) {
	return nil, marketdata.ErrNoQuotes
}
