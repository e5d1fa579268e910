package curve

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptyCurve is returned when a curve is constructed with no points.
	ErrEmptyCurve = errors.New("curve: no points")
	// ErrUnsortedTenors is returned when tenors are not strictly increasing.
	ErrUnsortedTenors = errors.New("curve: tenors must be strictly increasing")
)

// Kind distinguishes par (market-quoted) curves from bootstrapped zero curves.
type Kind string

const (
	KindPar  Kind = "par"
	KindZero Kind = "zero"
)

// RateUnit tags how a curve's rates are expressed. The engine never guesses:
// basis-point conversion depends on it (percent × 100, decimal × 10 000).
type RateUnit string

const (
	UnitPercent RateUnit = "percent"
	UnitDecimal RateUnit = "decimal"
)

// BasisPointFactor returns the multiplier taking a rate difference in this
// unit to basis points.
func (u RateUnit) BasisPointFactor() float64 {
	if u == UnitDecimal {
		return 10000.0
	}
	return 100.0
}

// Compounding is the convention used to convert discount factors to zero rates.
type Compounding string

const (
	CompAnnual     Compounding = "annual"
	CompSemiannual Compounding = "semiannual"
	CompContinuous Compounding = "continuous"
)

// Point is a single curve node: tenor in years mapped to a rate.
type Point struct {
	Tenor float64 `json:"tenor"`
	Rate  float64 `json:"rate"`
}

// YieldCurve is an ordered tenor→rate grid for one issuer or currency.
//
// Tenors are strictly increasing and unique; a curve is immutable once built.
// Zero curves additionally carry the compounding convention and coupon
// frequency used to derive them.
type YieldCurve struct {
	issuer      string
	kind        Kind
	unit        RateUnit
	compounding Compounding
	frequency   int
	points      []Point
}

// New builds a curve from points, sorting them by tenor. It rejects empty
// input, non-positive tenors and duplicate tenors.
func New(issuer string, kind Kind, unit RateUnit, points []Point) (*YieldCurve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("New: issuer %q: %w", issuer, ErrEmptyCurve)
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Tenor < pts[j].Tenor })

	for i, p := range pts {
		if p.Tenor <= 0 {
			return nil, fmt.Errorf("New: issuer %q: tenor %v must be positive", issuer, p.Tenor)
		}
		if i > 0 && pts[i].Tenor-pts[i-1].Tenor < tenorTolerance {
			return nil, fmt.Errorf("New: issuer %q: duplicate tenor %v: %w", issuer, p.Tenor, ErrUnsortedTenors)
		}
	}
	return &YieldCurve{issuer: issuer, kind: kind, unit: unit, points: pts}, nil
}

// NewZero builds a zero curve tagged with the convention that derived it.
func NewZero(issuer string, unit RateUnit, comp Compounding, frequency int, points []Point) (*YieldCurve, error) {
	c, err := New(issuer, KindZero, unit, points)
	if err != nil {
		return nil, err
	}
	c.compounding = comp
	c.frequency = frequency
	return c, nil
}

func (c *YieldCurve) Issuer() string           { return c.issuer }
func (c *YieldCurve) Kind() Kind               { return c.kind }
func (c *YieldCurve) Unit() RateUnit           { return c.unit }
func (c *YieldCurve) Compounding() Compounding { return c.compounding }
func (c *YieldCurve) Frequency() int           { return c.frequency }
func (c *YieldCurve) Len() int                 { return len(c.points) }

// Points returns a copy of the grid, shortest tenor first.
func (c *YieldCurve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Tenors returns the curve's tenor grid in years, ascending.
func (c *YieldCurve) Tenors() []float64 {
	out := make([]float64, len(c.points))
	for i, p := range c.points {
		out[i] = p.Tenor
	}
	return out
}

// First and Last return the curve endpoints.
func (c *YieldCurve) First() Point { return c.points[0] }
func (c *YieldCurve) Last() Point  { return c.points[len(c.points)-1] }

// RateAt returns the stored rate for an on-grid tenor. The second return is
// false when the tenor is not a grid point (within tolerance).
func (c *YieldCurve) RateAt(tenor float64) (float64, bool) {
	idx := c.search(tenor)
	if idx < len(c.points) && math.Abs(c.points[idx].Tenor-tenor) < tenorTolerance {
		return c.points[idx].Rate, true
	}
	if idx > 0 && math.Abs(c.points[idx-1].Tenor-tenor) < tenorTolerance {
		return c.points[idx-1].Rate, true
	}
	return 0, false
}

// search returns the index of the first grid point with tenor >= target.
func (c *YieldCurve) search(tenor float64) int {
	return sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Tenor >= tenor
	})
}

// ConvertRate re-expresses a rate quoted in from-units into this curve's unit.
func (c *YieldCurve) ConvertRate(rate float64, from RateUnit) float64 {
	if from == c.unit {
		return rate
	}
	if from == UnitPercent {
		return rate / 100.0
	}
	return rate * 100.0
}

type curveJSON struct {
	Issuer      string      `json:"issuer"`
	Kind        Kind        `json:"kind"`
	Unit        RateUnit    `json:"unit"`
	Compounding Compounding `json:"compounding,omitempty"`
	Frequency   int         `json:"frequency,omitempty"`
	Points      []Point     `json:"points"`
}

// MarshalJSON exposes the curve as plain structured data for the API and the
// snapshot cache.
func (c *YieldCurve) MarshalJSON() ([]byte, error) {
	return json.Marshal(curveJSON{
		Issuer:      c.issuer,
		Kind:        c.kind,
		Unit:        c.unit,
		Compounding: c.compounding,
		Frequency:   c.frequency,
		Points:      c.points,
	})
}

// UnmarshalJSON rebuilds a curve, re-validating the grid invariants.
func (c *YieldCurve) UnmarshalJSON(data []byte) error {
	var raw curveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("YieldCurve.UnmarshalJSON: %w", err)
	}
	rebuilt, err := New(raw.Issuer, raw.Kind, raw.Unit, raw.Points)
	if err != nil {
		return fmt.Errorf("YieldCurve.UnmarshalJSON: %w", err)
	}
	rebuilt.compounding = raw.Compounding
	rebuilt.frequency = raw.Frequency
	*c = *rebuilt
	return nil
}
