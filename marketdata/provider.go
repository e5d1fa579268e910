// Package marketdata supplies government bond and interest rate swap quotes
// and turns them into yield curves.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/bondrv/curve"
)

// ErrNoQuotes reports a provider that returned nothing for a requested
// issuer or currency.
var ErrNoQuotes = errors.New("marketdata: no quotes")

// Quote is one observed point: an issuer's yield (or a currency's swap rate)
// at a labelled maturity.
type Quote struct {
	Issuer    string         `json:"issuer"`
	Tenor     string         `json:"tenor"`
	Years     float64        `json:"years"`
	Rate      float64        `json:"rate"`
	Unit      curve.RateUnit `json:"unit"`
	Prev      float64        `json:"prev,omitempty"`
	High      float64        `json:"high,omitempty"`
	Low       float64        `json:"low,omitempty"`
	ChangeBP  float64        `json:"changeBp,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Provider serves quotes for government bond markets and swap markets.
type Provider interface {
	// BondQuotes returns government bond yields for the given countries.
	BondQuotes(ctx context.Context, countries []string) ([]Quote, error)
	// SwapQuotes returns fixed-leg par rates for the given currency.
	SwapQuotes(ctx context.Context, currency string) ([]Quote, error)
}

// BuildParCurve assembles quotes for one issuer into a par curve. Quotes for
// other issuers are ignored; duplicate maturities keep the first quote seen.
func BuildParCurve(issuer string, quotes []Quote) (*curve.YieldCurve, error) {
	var pts []curve.Point
	var unit curve.RateUnit
	seen := map[float64]bool{}
	for _, q := range quotes {
		if q.Issuer != issuer || q.Years <= 0 || seen[q.Years] {
			continue
		}
		seen[q.Years] = true
		unit = q.Unit
		pts = append(pts, curve.Point{Tenor: q.Years, Rate: q.Rate})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("BuildParCurve: issuer %q: %w", issuer, ErrNoQuotes)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Tenor < pts[j].Tenor })
	return curve.New(issuer, curve.KindPar, unit, pts)
}

// Issuers lists the distinct issuers present in a quote batch, sorted.
func Issuers(quotes []Quote) []string {
	set := map[string]bool{}
	for _, q := range quotes {
		set[q.Issuer] = true
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
