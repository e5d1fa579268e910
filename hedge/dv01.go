// Package hedge derives DV01s by bump-and-reprice and sizes offsetting
// positions in futures or swaps against them.
package hedge

import (
	"fmt"
	"math"

	"github.com/meenmo/bondrv/curve"
)

// CleanPrice values a bullet bond from its yield to maturity: per-period
// coupons plus redemption discounted at the periodic yield. Accrued interest
// is ignored — the number feeds a first-difference DV01, where it cancels.
func CleanPrice(face, couponPct, ytmPct, years float64, frequency int) float64 {
	if frequency <= 0 {
		frequency = 2
	}
	n := int(math.Round(years * float64(frequency)))
	if n <= 0 {
		return face
	}

	coupon := couponPct / 100.0 * face / float64(frequency)
	y := ytmPct / 100.0 / float64(frequency)

	pv := 0.0
	for k := 1; k <= n; k++ {
		pv += coupon / math.Pow(1.0+y, float64(k))
	}
	return pv + face/math.Pow(1.0+y, float64(n))
}

// BondDV01 is the price change of the bond for a one-basis-point yield move,
// computed as a first difference: bump the yield by 1bp, reprice, difference.
func BondDV01(face, couponPct, ytmPct, years float64, frequency int) float64 {
	const bumpBP = 1.0
	p0 := CleanPrice(face, couponPct, ytmPct, years, frequency)
	pUp := CleanPrice(face, couponPct, ytmPct+bumpBP/100.0, years, frequency)
	return math.Abs(pUp - p0)
}

// CurveDV01 bumps a single pillar of a zero curve by 1bp and re-derives the
// discounted value of a unit cash flow at that tenor. This is the numeric
// curve-shift derivative for positions quoted off the curve itself.
func CurveDV01(zero *curve.YieldCurve, tenor, notional float64) (float64, error) {
	df, err := zero.DiscountFactor(tenor, curve.AlignNearest)
	if err != nil {
		return 0, fmt.Errorf("CurveDV01: %w", err)
	}

	bump := 0.01 // 1bp in percent units
	if zero.Unit() == curve.UnitDecimal {
		bump = 1e-4
	}
	bumped := make([]curve.Point, 0, zero.Len())
	for _, p := range zero.Points() {
		if math.Abs(p.Tenor-tenor) < 1e-9 {
			p.Rate += bump
		}
		bumped = append(bumped, p)
	}
	shifted, err := curve.NewZero(zero.Issuer(), zero.Unit(), zero.Compounding(), zero.Frequency(), bumped)
	if err != nil {
		return 0, fmt.Errorf("CurveDV01: %w", err)
	}
	dfUp, err := shifted.DiscountFactor(tenor, curve.AlignNearest)
	if err != nil {
		return 0, fmt.Errorf("CurveDV01: %w", err)
	}
	return math.Abs(df-dfUp) * notional, nil
}

// SwapAnnuityDV01 approximates the DV01 per 100 notional of a par swap at
// the nearest quoted tenor: the fixed-leg annuity with discount factors
// taken near one.
func SwapAnnuityDV01(parSwaps *curve.YieldCurve, tenorYears float64) (float64, float64, error) {
	if parSwaps == nil || parSwaps.Len() == 0 {
		return 0, 0, fmt.Errorf("SwapAnnuityDV01: %w", ErrInsufficientData)
	}

	nearest := nearestTenor(parSwaps, tenorYears)
	// Annuity per 1bp per 100 notional with discount factors taken flat at
	// one: sum of α over the fixed schedule is just the tenor.
	dv01 := nearest * 0.01
	return dv01, nearest, nil
}

func nearestTenor(c *curve.YieldCurve, target float64) float64 {
	best := c.First().Tenor
	for _, p := range c.Points() {
		if math.Abs(p.Tenor-target) < math.Abs(best-target) {
			best = p.Tenor
		}
	}
	return best
}
