package curve

import (
	"fmt"
	"math"
)

// BootstrapConfig carries the per-call conventions for a bootstrap run.
// Previously-ambient lookup tables (frequency per currency, compounding per
// market) resolve to one of these before the call.
type BootstrapConfig struct {
	// Compounding converts solved discount factors to zero rates.
	Compounding Compounding
	// Frequency is coupons (or fixed-leg payments) per year.
	Frequency int
	// Alignment governs interpolation of intermediate coupon dates that fall
	// off the already-bootstrapped grid. AlignNearest extends the short end
	// flat; AlignStrict fails the bootstrap instead.
	Alignment Alignment
	// Solver parameters for the pillar iteration.
	Solver SolverConfig
}

// DefaultBootstrapConfig mirrors the engine defaults: semiannual coupons,
// continuous compounding, short-end clamping.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Compounding: CompContinuous,
		Frequency:   2,
		Alignment:   AlignNearest,
		Solver:      DefaultSolverConfig,
	}
}

// BootstrapError reports a failed bootstrap, naming the offending pillar so
// the issuer's curve can be omitted downstream with context.
type BootstrapError struct {
	Issuer string
	Tenor  float64
	Reason string
	Err    error
}

func (e *BootstrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("curve: bootstrap %q at tenor %g: %s: %v", e.Issuer, e.Tenor, e.Reason, e.Err)
	}
	return fmt.Sprintf("curve: bootstrap %q at tenor %g: %s", e.Issuer, e.Tenor, e.Reason)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// BootstrapZero converts a par government-bond curve into a zero curve on the
// identical tenor grid.
//
// Pillars are solved in ascending tenor order. The first pillar is a single
// cash flow: its discount factor follows directly from pricing at par (for
// compounding matching the coupon frequency this reduces to zero = par).
// Each later pillar is a coupon bond priced at par: intermediate coupons are
// discounted at already-solved zero rates, grid-interpolated where a coupon
// date is off-pillar, and the final discount factor is isolated in closed
// form,
//
//	DF_N = (100 − Σ coupon·DF_k) / (100 + coupon),
//
// iterated to a fixed point because coupon dates between the previous pillar
// and the maturity interpolate against the pillar being solved.
func BootstrapZero(par *YieldCurve, cfg BootstrapConfig) (*YieldCurve, error) {
	if par == nil {
		return nil, fmt.Errorf("BootstrapZero: nil curve")
	}
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("BootstrapZero: issuer %q: frequency %d must be positive", par.issuer, cfg.Frequency)
	}

	zeroPts := make([]Point, 0, par.Len())
	for i, p := range par.points {
		y := decimalRate(p.Rate, par.unit)
		coupon := y / float64(cfg.Frequency) * 100.0

		var df float64
		if i == 0 {
			df = 100.0 / (100.0 + coupon)
		} else {
			var err error
			df, err = solvePillar(par.issuer, par.unit, zeroPts, p.Tenor, coupon, 100.0, cfg)
			if err != nil {
				return nil, err
			}
		}

		z := zeroFromDF(df, p.Tenor, cfg.Compounding)
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return nil, &BootstrapError{Issuer: par.issuer, Tenor: p.Tenor, Reason: "degenerate zero rate"}
		}
		zeroPts = append(zeroPts, Point{Tenor: p.Tenor, Rate: fromDecimalRate(z, par.unit)})
	}

	return NewZero(par.issuer, par.unit, cfg.Compounding, cfg.Frequency, zeroPts)
}

// solvePillar solves the discount factor at tenor for an instrument priced at
// parValue that pays `payment` at each schedule date and parValue+payment at
// maturity. Bond pillars use parValue 100 and payment = coupon; swap pillars
// use parValue 1 and payment = S·α.
//
// The closed form isolates DF from the known coupon sum. Coupon dates beyond
// the previous pillar interpolate against the unknown, so the isolation is
// repeated with the candidate zero rate until the discount factor is stable.
func solvePillar(issuer string, unit RateUnit, zeroPts []Point, tenor, payment, parValue float64, cfg BootstrapConfig) (float64, error) {
	couponSum, err := discountedCouponSum(issuer, unit, zeroPts, tenor, payment, cfg)
	if err != nil {
		return 0, err
	}

	df := (parValue - couponSum) / (parValue + payment)
	if !admissibleDF(df, cfg.Solver) {
		return 0, &BootstrapError{Issuer: issuer, Tenor: tenor, Reason: "unsolvable discount factor",
			Err: fmt.Errorf("closed form gives %g", df)}
	}

	cand := make([]Point, len(zeroPts)+1)
	copy(cand, zeroPts)

	for iter := 0; iter < cfg.Solver.MaxIterations; iter++ {
		z := zeroFromDF(df, tenor, cfg.Compounding)
		cand[len(zeroPts)] = Point{Tenor: tenor, Rate: fromDecimalRate(z, unit)}

		couponSum, err = discountedCouponSum(issuer, unit, cand, tenor, payment, cfg)
		if err != nil {
			return 0, err
		}
		next := (parValue - couponSum) / (parValue + payment)
		if !admissibleDF(next, cfg.Solver) {
			return 0, &BootstrapError{Issuer: issuer, Tenor: tenor, Reason: "unsolvable discount factor",
				Err: fmt.Errorf("iteration %d gives %g", iter, next)}
		}
		if math.Abs(next-df) < cfg.Solver.ConvergenceTolerance {
			return next, nil
		}
		df = next
	}
	return 0, &BootstrapError{Issuer: issuer, Tenor: tenor, Reason: "no convergence",
		Err: fmt.Errorf("after %d iterations", cfg.Solver.MaxIterations)}
}

func admissibleDF(df float64, solver SolverConfig) bool {
	return !math.IsNaN(df) && df > solver.MinDiscountFactor && df <= 1.0+tenorTolerance
}

// discountedCouponSum prices the known payments of the pillar maturing at
// tenor: one payment at each schedule date before maturity, discounted at the
// zeros of the (partially built) grid.
func discountedCouponSum(issuer string, unit RateUnit, zeroPts []Point, tenor, payment float64, cfg BootstrapConfig) (float64, error) {
	solved := &YieldCurve{issuer: issuer, kind: KindZero, unit: unit, points: zeroPts}

	sum := 0.0
	for _, t := range couponSchedule(tenor, cfg.Frequency) {
		r, err := solved.Rate(t, cfg.Alignment)
		if err != nil {
			return 0, &BootstrapError{Issuer: issuer, Tenor: tenor, Reason: "intermediate coupon date out of range", Err: err}
		}
		sum += payment * discountFactor(decimalRate(r, unit), t, cfg.Compounding)
	}
	return sum, nil
}

// couponSchedule returns the intermediate coupon dates for an instrument
// maturing at tenor, rolled back from maturity at the configured frequency.
// The maturity date itself is excluded.
func couponSchedule(tenor float64, frequency int) []float64 {
	period := 1.0 / float64(frequency)
	n := int(math.Ceil(tenor*float64(frequency) - tenorTolerance))

	dates := make([]float64, 0, n)
	for m := n - 1; m >= 1; m-- {
		t := tenor - float64(m)*period
		if t > tenorTolerance {
			dates = append(dates, t)
		}
	}
	return dates
}

// decimalRate converts a rate in the given unit to a decimal.
func decimalRate(rate float64, unit RateUnit) float64 {
	if unit == UnitPercent {
		return rate / 100.0
	}
	return rate
}

// fromDecimalRate converts a decimal rate back to the given unit.
func fromDecimalRate(rate float64, unit RateUnit) float64 {
	if unit == UnitPercent {
		return rate * 100.0
	}
	return rate
}

// discountFactor maps a decimal zero rate at tenor t to a discount factor
// under the given compounding convention.
func discountFactor(zero, t float64, comp Compounding) float64 {
	switch comp {
	case CompContinuous:
		return math.Exp(-zero * t)
	case CompSemiannual:
		return math.Pow(1.0+zero/2.0, -2.0*t)
	default:
		return math.Pow(1.0+zero, -t)
	}
}

// zeroFromDF inverts discountFactor.
func zeroFromDF(df, t float64, comp Compounding) float64 {
	if t <= 0 {
		return 0
	}
	switch comp {
	case CompContinuous:
		return -math.Log(df) / t
	case CompSemiannual:
		return 2.0 * (math.Pow(df, -1.0/(2.0*t)) - 1.0)
	default:
		return math.Pow(df, -1.0/t) - 1.0
	}
}

// DiscountFactor returns the discount factor implied by a zero curve at an
// arbitrary tenor, interpolating the zero rate under the given alignment.
func (c *YieldCurve) DiscountFactor(tenor float64, align Alignment) (float64, error) {
	if c.kind != KindZero {
		return 0, fmt.Errorf("DiscountFactor: issuer %q: curve kind %q is not zero", c.issuer, c.kind)
	}
	r, err := c.Rate(tenor, align)
	if err != nil {
		return 0, err
	}
	comp := c.compounding
	if comp == "" {
		comp = CompAnnual
	}
	return discountFactor(decimalRate(r, c.unit), tenor, comp), nil
}
