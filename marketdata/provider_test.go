package marketdata_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/meenmo/bondrv/curve"
	"github.com/meenmo/bondrv/marketdata"
)

func TestStaticBondQuotes(t *testing.T) {
	t.Parallel()

	p := marketdata.NewStaticProvider()
	quotes, err := p.BondQuotes(context.Background(), []string{"Germany", "France"})
	if err != nil {
		t.Fatalf("BondQuotes: %v", err)
	}
	if got := marketdata.Issuers(quotes); len(got) != 2 || got[0] != "France" || got[1] != "Germany" {
		t.Fatalf("Issuers = %v, want [France Germany]", got)
	}
	for _, q := range quotes {
		if q.Years <= 0 || q.Rate <= 0 {
			t.Fatalf("quote %s %s has non-positive years/rate: %+v", q.Issuer, q.Tenor, q)
		}
		if q.Unit != curve.UnitPercent {
			t.Fatalf("quote %s %s unit = %q, want percent", q.Issuer, q.Tenor, q.Unit)
		}
	}

	// An unknown country is skipped, not fatal to the batch: the known
	// countries' quotes still come back and the gap shows as a missing issuer.
	quotes, err = p.BondQuotes(context.Background(), []string{"Germany", "Atlantis"})
	if err != nil {
		t.Fatalf("BondQuotes with unknown country: %v", err)
	}
	if got := marketdata.Issuers(quotes); len(got) != 1 || got[0] != "Germany" {
		t.Fatalf("Issuers = %v, want [Germany]", got)
	}

	if quotes, err := p.BondQuotes(context.Background(), []string{"Atlantis"}); err != nil || len(quotes) != 0 {
		t.Fatalf("all-unknown batch = %d quotes, err %v; want empty and nil", len(quotes), err)
	}
}

func TestStaticSwapQuotes(t *testing.T) {
	t.Parallel()

	p := marketdata.NewStaticProvider()
	quotes, err := p.SwapQuotes(context.Background(), "eur")
	if err != nil {
		t.Fatalf("SwapQuotes: %v", err)
	}
	if len(quotes) != 9 {
		t.Fatalf("SwapQuotes returned %d quotes, want 9", len(quotes))
	}
	if quotes[0].Issuer != "EUR IRS" {
		t.Fatalf("issuer = %q, want %q", quotes[0].Issuer, "EUR IRS")
	}
	// Sorted, and the 10Y stub rate matches the bundled table.
	for i := 1; i < len(quotes); i++ {
		if quotes[i].Years <= quotes[i-1].Years {
			t.Fatalf("quotes not sorted by maturity: %v after %v", quotes[i].Years, quotes[i-1].Years)
		}
	}
	for _, q := range quotes {
		if q.Tenor == "10Y" && math.Abs(q.Rate-2.55) > 1e-12 {
			t.Fatalf("EUR 10Y = %v, want 2.55", q.Rate)
		}
	}

	if _, err := p.SwapQuotes(context.Background(), "KRW"); !errors.Is(err, marketdata.ErrNoQuotes) {
		t.Fatalf("unknown currency error = %v, want ErrNoQuotes", err)
	}
}

func TestStaticHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := marketdata.NewStaticProvider().BondQuotes(ctx, []string{"Germany"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context error = %v, want context.Canceled", err)
	}
}

func TestBuildParCurve(t *testing.T) {
	t.Parallel()

	p := marketdata.NewStaticProvider()
	quotes, err := p.BondQuotes(context.Background(), []string{"Germany", "Italy"})
	if err != nil {
		t.Fatalf("BondQuotes: %v", err)
	}
	c, err := marketdata.BuildParCurve("Germany", quotes)
	if err != nil {
		t.Fatalf("BuildParCurve: %v", err)
	}
	if c.Kind() != curve.KindPar || c.Issuer() != "Germany" {
		t.Fatalf("curve kind/issuer = %v/%q", c.Kind(), c.Issuer())
	}
	if c.Len() != 9 {
		t.Fatalf("curve has %d points, want 9", c.Len())
	}
	if r, ok := c.RateAt(10); !ok || math.Abs(r-2.50) > 1e-12 {
		t.Fatalf("Germany 10Y = %v (ok=%v), want 2.50", r, ok)
	}

	if _, err := marketdata.BuildParCurve("Spain", quotes); !errors.Is(err, marketdata.ErrNoQuotes) {
		t.Fatalf("missing issuer error = %v, want ErrNoQuotes", err)
	}
}

func TestDefaultCountriesSorted(t *testing.T) {
	t.Parallel()

	countries := marketdata.DefaultCountries()
	if len(countries) != 10 {
		t.Fatalf("DefaultCountries made %d entries, want 10", len(countries))
	}
	for i := 1; i < len(countries); i++ {
		if countries[i] < countries[i-1] {
			t.Fatalf("countries not sorted: %q after %q", countries[i], countries[i-1])
		}
	}
}
