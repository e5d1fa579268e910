// Package service runs the curve and spread pipeline: quotes in, a computed
// snapshot of curves, spreads, shape metrics and the cross-market matrix out.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/meenmo/bondrv/analytics"
	"github.com/meenmo/bondrv/config"
	"github.com/meenmo/bondrv/curve"
	"github.com/meenmo/bondrv/marketdata"
	"github.com/meenmo/bondrv/rv"
	"github.com/meenmo/bondrv/snapcache"
)

// Omission records an input or computation the snapshot had to leave out,
// scoped to the issuer and mode it affects.
type Omission struct {
	Issuer string `json:"issuer"`
	Mode   string `json:"mode,omitempty"`
	Reason string `json:"reason"`
}

// CountryResult bundles everything computed for one market.
type CountryResult struct {
	Country   string                     `json:"country"`
	Currency  string                     `json:"currency"`
	Quotes    []marketdata.Quote         `json:"quotes"`
	Par       *curve.YieldCurve          `json:"par"`
	Zero      *curve.YieldCurve          `json:"zero,omitempty"`
	Spreads   map[string]rv.Series       `json:"spreads"`
	Shape     []analytics.ShapeMetric    `json:"shape"`
	Flies     []analytics.ShapeMetric    `json:"flies"`
	CarryRoll []analytics.CarryRollEntry `json:"carryRoll"`
}

// Snapshot is one full run of the pipeline across all configured markets.
type Snapshot struct {
	AsOf      time.Time                    `json:"asOf"`
	Reference string                       `json:"reference"`
	Countries map[string]*CountryResult    `json:"countries"`
	SwapZeros map[string]*curve.YieldCurve `json:"swapZeros"`
	Matrix    rv.Matrix                    `json:"matrix"`
	Omissions []Omission                   `json:"omissions,omitempty"`
}

// Engine computes snapshots from a market data provider.
type Engine struct {
	cfg      config.Config
	provider marketdata.Provider
	cache    snapcache.Cache
	log      *slog.Logger
}

// NewEngine wires an engine. cache may be nil to skip snapshot caching; a
// nil logger falls back to the default.
func NewEngine(cfg config.Config, provider marketdata.Provider, cache snapcache.Cache, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, provider: provider, cache: cache, log: log}
}

// Compute runs the full pipeline once. Failures are scoped to the smallest
// skippable unit and reported as omissions: a market without quotes is
// skipped, a missing reference market omits the reference-relative modes and
// the matrix while every other analytic still computes. Only an unreachable
// provider or an unusable configuration is fatal.
func (e *Engine) Compute(ctx context.Context) (*Snapshot, error) {
	align, err := curve.ParseAlignment(e.cfg.Alignment)
	if err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}
	bootCfg := curve.DefaultBootstrapConfig()
	bootCfg.Compounding = curve.Compounding(e.cfg.Compounding)
	bootCfg.Alignment = align

	snap := &Snapshot{
		AsOf:      time.Now(),
		Reference: e.cfg.ReferenceCountry,
		Countries: make(map[string]*CountryResult),
		SwapZeros: make(map[string]*curve.YieldCurve),
	}

	quotes, err := e.provider.BondQuotes(ctx, e.cfg.Countries)
	if err != nil {
		return nil, fmt.Errorf("Compute: bond quotes: %w", err)
	}

	// Par curves per market, then one swap zero curve per distinct currency.
	for _, country := range e.cfg.Countries {
		par, err := marketdata.BuildParCurve(country, quotes)
		if err != nil {
			snap.omit(country, "", fmt.Sprintf("no bond quotes: %v", err))
			continue
		}
		ccy, ok := e.cfg.Currency(country)
		if !ok {
			snap.omit(country, "", "no currency configured; swap-relative modes skipped")
		}
		snap.Countries[country] = &CountryResult{
			Country:  country,
			Currency: ccy,
			Quotes:   filterQuotes(quotes, country),
			Par:      par,
			Spreads:  make(map[string]rv.Series),
		}
	}

	// A missing reference market degrades the snapshot, never fails it: the
	// reference-relative series and the matrix are omitted, every per-market
	// analytic still computes.
	ref := snap.Countries[e.cfg.ReferenceCountry]
	if ref == nil {
		snap.omit(e.cfg.ReferenceCountry, rv.ModeGovVsRef.String(),
			fmt.Sprintf("reference market unavailable: %v", rv.ErrMissingReference))
	}

	for _, ccy := range snap.currencies() {
		swapZero, err := e.swapZero(ctx, ccy, bootCfg)
		if err != nil {
			snap.omit(ccy+" IRS", rv.ModeASW.String(), err.Error())
			e.log.Warn("swap curve unavailable", "currency", ccy, "err", err)
			continue
		}
		snap.SwapZeros[ccy] = swapZero
	}

	for _, country := range sortedKeys(snap.Countries) {
		e.computeMarket(ctx, snap, snap.Countries[country], ref, bootCfg, align)
	}

	// Cross-market matrix over the par-yield spreads to the reference.
	var series []rv.Series
	for _, country := range sortedKeys(snap.Countries) {
		if s, ok := snap.Countries[country].Spreads[rv.ModeGovVsRef.String()]; ok {
			series = append(series, s)
		}
	}
	snap.Matrix = rv.BuildMatrix(series, e.cfg.DisplayTenors)

	e.log.Info("snapshot computed",
		"markets", len(snap.Countries),
		"swap_currencies", len(snap.SwapZeros),
		"omissions", len(snap.Omissions))
	return snap, nil
}

func (e *Engine) computeMarket(ctx context.Context, snap *Snapshot, cr *CountryResult, ref *CountryResult, bootCfg curve.BootstrapConfig, align curve.Alignment) {
	// Par-yield spread to the reference market. Without a reference curve the
	// mode is omitted for this issuer; everything else below still runs.
	if ref == nil {
		snap.omit(cr.Country, rv.ModeGovVsRef.String(), "reference curve missing")
	} else if s, err := rv.GovVsRef(cr.Par, ref.Par, align); err != nil {
		snap.omit(cr.Country, rv.ModeGovVsRef.String(), err.Error())
	} else {
		cr.Spreads[rv.ModeGovVsRef.String()] = s
	}

	// Bootstrapped zero curve feeds ASW; bootstrap failures degrade the
	// market to par-only analytics.
	zero, err := curve.BootstrapZero(cr.Par, bootCfg)
	if err != nil {
		snap.omit(cr.Country, rv.ModeASW.String(), fmt.Sprintf("bootstrap failed: %v", err))
		e.log.Warn("bootstrap failed", "country", cr.Country, "err", err)
	} else {
		cr.Zero = zero
		e.cachePut(ctx, "zero:"+cr.Country, zero)
		if swapZero, ok := snap.SwapZeros[cr.Currency]; ok {
			if s, err := rv.ASW(zero, swapZero, align); err != nil {
				snap.omit(cr.Country, rv.ModeASW.String(), err.Error())
			} else {
				cr.Spreads[rv.ModeASW.String()] = s
			}
		} else if cr.Currency != "" {
			snap.omit(cr.Country, rv.ModeASW.String(), fmt.Sprintf("no %s swap curve", cr.Currency))
		}
	}

	// Swap-vs-reference-swap spread for the market's currency.
	refCcy, _ := e.cfg.Currency(snap.Reference)
	if target, ok := snap.SwapZeros[cr.Currency]; ok {
		if refSwap, ok := snap.SwapZeros[refCcy]; ok {
			if s, err := rv.IRSVsReference(target, refSwap, align); err != nil {
				snap.omit(cr.Country, rv.ModeIRSVsEUR.String(), err.Error())
			} else {
				cr.Spreads[rv.ModeIRSVsEUR.String()] = s
			}
		} else {
			snap.omit(cr.Country, rv.ModeIRSVsEUR.String(), fmt.Sprintf("no %s swap curve", refCcy))
		}
	}

	// Curve shape, butterflies and carry/roll on the par curve.
	shape, skipped := analytics.TwoLegSpreads(cr.Par, e.cfg.TenorPairs, align)
	cr.Shape = shape
	for _, sk := range skipped {
		snap.omit(cr.Country, "shape", fmt.Sprintf("%s: %s", sk.Name, sk.Reason))
	}
	for _, legs := range e.cfg.FlyTriples {
		fly, err := analytics.Fly(cr.Par, legs.Short, legs.Mid, legs.Long, align)
		if err != nil {
			snap.omit(cr.Country, "fly", err.Error())
			continue
		}
		cr.Flies = append(cr.Flies, fly)
	}
	cr.CarryRoll = analytics.CarryRoll(cr.Par, analytics.DefaultHorizons)
}

// swapZero loads a currency's par swap quotes and bootstraps its zero curve
// with the currency's fixed-leg frequency.
func (e *Engine) swapZero(ctx context.Context, currency string, bootCfg curve.BootstrapConfig) (*curve.YieldCurve, error) {
	quotes, err := e.provider.SwapQuotes(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("swapZero: %w", err)
	}
	par, err := marketdata.BuildParCurve(currency+" IRS", quotes)
	if err != nil {
		return nil, fmt.Errorf("swapZero: %w", err)
	}
	cfg := bootCfg
	cfg.Frequency = e.cfg.SwapFrequency(currency)
	zero, err := curve.BootstrapSwapZero(par, cfg)
	if err != nil {
		return nil, fmt.Errorf("swapZero: %w", err)
	}
	e.cachePut(ctx, "swap:"+currency, zero)
	return zero, nil
}

func (e *Engine) cachePut(ctx context.Context, key string, c *curve.YieldCurve) {
	if e.cache == nil {
		return
	}
	ttl := 2 * e.cfg.RefreshInterval
	if err := e.cache.Put(ctx, key, c, ttl); err != nil {
		e.log.Warn("cache put failed", "key", key, "err", err)
	}
}

func (s *Snapshot) omit(issuer, mode, reason string) {
	s.Omissions = append(s.Omissions, Omission{Issuer: issuer, Mode: mode, Reason: reason})
}

// currencies lists the distinct currencies of the snapshot's markets, sorted.
func (s *Snapshot) currencies() []string {
	set := map[string]bool{}
	for _, cr := range s.Countries {
		if cr.Currency != "" {
			set[cr.Currency] = true
		}
	}
	out := make([]string, 0, len(set))
	for ccy := range set {
		out = append(out, ccy)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*CountryResult) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func filterQuotes(quotes []marketdata.Quote, issuer string) []marketdata.Quote {
	var out []marketdata.Quote
	for _, q := range quotes {
		if q.Issuer == issuer {
			out = append(out, q)
		}
	}
	return out
}
