package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meenmo/bondrv/curve"
)

// govYields holds indicative G10 government yields in percent by maturity
// label. They stand in for a live feed during development and in tests.
var govYields = map[string]map[string]float64{
	"Germany":        {"1Y": 3.20, "2Y": 2.95, "3Y": 2.80, "5Y": 2.55, "7Y": 2.50, "10Y": 2.50, "15Y": 2.60, "20Y": 2.65, "30Y": 2.70},
	"France":         {"1Y": 3.30, "2Y": 3.10, "3Y": 3.00, "5Y": 2.85, "7Y": 2.85, "10Y": 2.95, "15Y": 3.15, "20Y": 3.30, "30Y": 3.45},
	"Italy":          {"1Y": 3.45, "2Y": 3.35, "3Y": 3.30, "5Y": 3.35, "7Y": 3.50, "10Y": 3.70, "15Y": 3.95, "20Y": 4.10, "30Y": 4.25},
	"United States":  {"1Y": 4.90, "2Y": 4.45, "3Y": 4.25, "5Y": 4.05, "7Y": 4.05, "10Y": 4.10, "15Y": 4.25, "20Y": 4.40, "30Y": 4.35},
	"United Kingdom": {"1Y": 5.00, "2Y": 4.55, "3Y": 4.30, "5Y": 4.10, "7Y": 4.10, "10Y": 4.15, "15Y": 4.35, "20Y": 4.50, "30Y": 4.60},
	"Canada":         {"1Y": 4.40, "2Y": 4.00, "3Y": 3.80, "5Y": 3.55, "7Y": 3.45, "10Y": 3.45, "15Y": 3.50, "20Y": 3.50, "30Y": 3.40},
	"Japan":          {"1Y": 0.25, "2Y": 0.30, "3Y": 0.35, "5Y": 0.45, "7Y": 0.55, "10Y": 0.80, "15Y": 1.15, "20Y": 1.45, "30Y": 1.75},
	"Australia":      {"1Y": 4.20, "2Y": 4.00, "3Y": 3.95, "5Y": 3.95, "7Y": 4.05, "10Y": 4.20, "15Y": 4.40, "20Y": 4.55, "30Y": 4.65},
	"New Zealand":    {"1Y": 4.60, "2Y": 4.20, "3Y": 4.05, "5Y": 3.95, "7Y": 4.00, "10Y": 4.10, "15Y": 4.25, "20Y": 4.35, "30Y": 4.45},
	"Sweden":         {"1Y": 3.60, "2Y": 3.25, "3Y": 3.10, "5Y": 2.95, "7Y": 2.90, "10Y": 2.95, "15Y": 3.00, "20Y": 3.05, "30Y": 3.05},
}

// swapRates holds fixed-leg par swap rates in percent by currency.
var swapRates = map[string]map[string]float64{
	"EUR": {"1Y": 3.40, "2Y": 3.10, "3Y": 2.90, "5Y": 2.70, "7Y": 2.60, "10Y": 2.55, "15Y": 2.50, "20Y": 2.50, "30Y": 2.45},
	"USD": {"1Y": 4.80, "2Y": 4.30, "3Y": 4.10, "5Y": 3.90, "7Y": 3.80, "10Y": 3.75, "15Y": 3.70, "20Y": 3.65, "30Y": 3.60},
	"CAD": {"1Y": 4.30, "2Y": 3.90, "3Y": 3.75, "5Y": 3.55, "7Y": 3.45, "10Y": 3.40, "15Y": 3.35, "20Y": 3.30, "30Y": 3.25},
	"GBP": {"1Y": 5.10, "2Y": 4.60, "3Y": 4.30, "5Y": 4.05, "7Y": 3.95, "10Y": 3.85, "15Y": 3.80, "20Y": 3.75, "30Y": 3.70},
	"JPY": {"1Y": 0.35, "2Y": 0.40, "3Y": 0.45, "5Y": 0.55, "7Y": 0.65, "10Y": 0.75, "15Y": 0.90, "20Y": 1.00, "30Y": 1.10},
	"AUD": {"1Y": 4.10, "2Y": 3.95, "3Y": 3.90, "5Y": 3.85, "7Y": 3.90, "10Y": 3.95, "15Y": 4.00, "20Y": 4.00, "30Y": 4.05},
	"NZD": {"1Y": 4.50, "2Y": 4.10, "3Y": 3.95, "5Y": 3.80, "7Y": 3.80, "10Y": 3.80, "15Y": 3.85, "20Y": 3.85, "30Y": 3.90},
	"SEK": {"1Y": 3.70, "2Y": 3.35, "3Y": 3.20, "5Y": 3.05, "7Y": 2.95, "10Y": 2.90, "15Y": 2.85, "20Y": 2.85, "30Y": 2.80},
}

// DefaultCountries lists the markets the static provider covers.
func DefaultCountries() []string {
	out := make([]string, 0, len(govYields))
	for c := range govYields {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// StaticProvider serves the bundled indicative tables. It is the
// development and test stand-in for a live scraping or database provider.
type StaticProvider struct {
	now func() time.Time
}

// NewStaticProvider builds a provider over the bundled tables.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

// BondQuotes serves the bundled yields for the requested countries. A
// country without a table contributes no quotes rather than failing the
// batch; the caller sees the gap as a missing issuer.
func (p *StaticProvider) BondQuotes(ctx context.Context, countries []string) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ts := p.now()
	var out []Quote
	for _, country := range countries {
		table, ok := govYields[country]
		if !ok {
			continue
		}
		quotes, err := tableQuotes(country, table, ts)
		if err != nil {
			return nil, fmt.Errorf("BondQuotes: %w", err)
		}
		out = append(out, quotes...)
	}
	return out, nil
}

func (p *StaticProvider) SwapQuotes(ctx context.Context, currency string) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ccy := strings.ToUpper(currency)
	table, ok := swapRates[ccy]
	if !ok {
		return nil, fmt.Errorf("SwapQuotes: currency %q: %w", currency, ErrNoQuotes)
	}
	quotes, err := tableQuotes(ccy+" IRS", table, p.now())
	if err != nil {
		return nil, fmt.Errorf("SwapQuotes: %w", err)
	}
	return quotes, nil
}

func tableQuotes(issuer string, table map[string]float64, ts time.Time) ([]Quote, error) {
	out := make([]Quote, 0, len(table))
	for label, rate := range table {
		years, err := curve.ParseTenor(label)
		if err != nil {
			return nil, err
		}
		out = append(out, Quote{
			Issuer:    issuer,
			Tenor:     label,
			Years:     years,
			Rate:      rate,
			Unit:      curve.UnitPercent,
			Prev:      rate,
			High:      rate,
			Low:       rate,
			Timestamp: ts,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Years < out[j].Years })
	return out, nil
}
