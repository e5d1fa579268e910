package curve

import "fmt"

// tenorTolerance is the width within which a requested tenor is treated as an
// exact grid point (no interpolation error).
const tenorTolerance = 1e-9

// Alignment selects how a tenor outside a curve's range is handled.
type Alignment int

const (
	// AlignStrict fails a lookup outside the grid range.
	AlignStrict Alignment = iota
	// AlignNearest clamps to the closest endpoint and returns its rate.
	AlignNearest
)

func (a Alignment) String() string {
	if a == AlignNearest {
		return "nearest"
	}
	return "strict"
}

// ParseAlignment maps the configuration strings "strict"/"nearest".
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "strict":
		return AlignStrict, nil
	case "nearest", "":
		return AlignNearest, nil
	}
	return AlignStrict, fmt.Errorf("ParseAlignment: unknown alignment %q", s)
}

// RangeError reports a tenor outside a curve's grid under strict alignment.
type RangeError struct {
	Issuer string
	Tenor  float64
	Min    float64
	Max    float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("curve: issuer %q: tenor %g outside grid [%g, %g]", e.Issuer, e.Tenor, e.Min, e.Max)
}

// Rate returns the curve's rate at an arbitrary tenor.
//
// On-grid tenors (within tolerance) return the stored rate exactly. Off-grid
// tenors inside the range are linearly interpolated between the bracketing
// points. Outside the range, strict alignment returns a *RangeError and
// nearest alignment clamps to the closest endpoint.
func (c *YieldCurve) Rate(tenor float64, align Alignment) (float64, error) {
	if r, ok := c.RateAt(tenor); ok {
		return r, nil
	}

	first, last := c.First(), c.Last()
	if tenor < first.Tenor || tenor > last.Tenor {
		if align == AlignNearest {
			if tenor < first.Tenor {
				return first.Rate, nil
			}
			return last.Rate, nil
		}
		return 0, &RangeError{Issuer: c.issuer, Tenor: tenor, Min: first.Tenor, Max: last.Tenor}
	}

	// Bracketing points via binary search: points[idx-1].Tenor < tenor < points[idx].Tenor.
	idx := c.search(tenor)
	p1, p2 := c.points[idx-1], c.points[idx]
	w := (tenor - p1.Tenor) / (p2.Tenor - p1.Tenor)
	return p1.Rate + w*(p2.Rate-p1.Rate), nil
}
