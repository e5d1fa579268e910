package curve

import (
	"fmt"
	"math"
)

// BootstrapSwapZero converts a par interest-rate-swap curve into a zero curve
// on the identical tenor grid.
//
// Single-curve bootstrapping: the floating leg prices at par, so each quoted
// swap reduces to a fixed-leg annuity plus notional exchange,
//
//	1 = S·α·Σ DF_k + DF_N,  α = 1/frequency,
//
// solved pillar by pillar exactly like the bond bootstrap with parValue 1 and
// payment S·α. The fixed-leg frequency is a per-currency configuration
// resolved by the caller before this call.
func BootstrapSwapZero(par *YieldCurve, cfg BootstrapConfig) (*YieldCurve, error) {
	if par == nil {
		return nil, fmt.Errorf("BootstrapSwapZero: nil curve")
	}
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("BootstrapSwapZero: currency %q: frequency %d must be positive", par.issuer, cfg.Frequency)
	}

	alpha := 1.0 / float64(cfg.Frequency)
	zeroPts := make([]Point, 0, par.Len())

	for i, p := range par.points {
		s := decimalRate(p.Rate, par.unit)
		payment := s * alpha

		var df float64
		if i == 0 {
			// One fixed payment: 1 = (1 + S·α)·DF.
			df = 1.0 / (1.0 + payment)
		} else {
			var err error
			df, err = solvePillar(par.issuer, par.unit, zeroPts, p.Tenor, payment, 1.0, cfg)
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
