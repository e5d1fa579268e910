package analytics

import "github.com/meenmo/bondrv/curve"

// Horizon is the holding period for carry/roll approximations.
type Horizon int

const (
	Horizon1M Horizon = iota
	Horizon3M
)

// DefaultHorizons are the horizons reported per tenor.
var DefaultHorizons = []Horizon{Horizon1M, Horizon3M}

func (h Horizon) String() string {
	if h == Horizon3M {
		return "3M"
	}
	return "1M"
}

// Years returns the horizon as a year fraction.
func (h Horizon) Years() float64 {
	if h == Horizon3M {
		return 0.25
	}
	return 1.0 / 12.0
}

// CarryRollEntry is the carry and roll-down for one tenor over one horizon,
// both in basis points.
type CarryRollEntry struct {
	Tenor   float64 `json:"tenor"`
	Horizon string  `json:"horizon"`
	CarryBP float64 `json:"carry_bp"`
	RollBP  float64 `json:"roll_bp"`
}

// CarryRoll builds the carry/roll table for every tenor on the curve.
//
// Roll is the yield change from aging down an unchanged curve:
// rate(tenor − horizon) − rate(tenor), interpolated when tenor − horizon is
// off-grid and clamped to the shortest pillar when it falls below the curve
// (short-end approximation). Carry is a first-order proxy from the slope
// immediately past the tenor: no coupon/funding input exists in the snapshot
// data model, so the funding differential is taken as zero.
func CarryRoll(c *curve.YieldCurve, horizons []Horizon) []CarryRollEntry {
	pts := c.Points()
	bp := c.Unit().BasisPointFactor()
	entries := make([]CarryRollEntry, 0, len(pts)*len(horizons))

	for i, p := range pts {
		// Slope past the tenor, in rate units per year. The last pillar
		// falls back to the slope into it.
		var slope float64
		switch {
		case i+1 < len(pts):
			next := pts[i+1]
			slope = (next.Rate - p.Rate) / (next.Tenor - p.Tenor)
		case i > 0:
			prev := pts[i-1]
			slope = (p.Rate - prev.Rate) / (p.Tenor - prev.Tenor)
		}

		for _, h := range horizons {
			aged := p.Tenor - h.Years()
			// Below the first pillar the lookup clamps to the curve's
			// shortest point.
			agedRate, err := c.Rate(aged, curve.AlignNearest)
			if err != nil {
				continue
			}
			entries = append(entries, CarryRollEntry{
				Tenor:   p.Tenor,
				Horizon: h.String(),
				CarryBP: slope * h.Years() * bp,
				RollBP:  (agedRate - p.Rate) * bp,
			})
		}
	}
	return entries
}
