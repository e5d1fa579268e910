// Package analytics computes curve-shape metrics (two-leg slopes, flies) and
// carry/roll approximations over a single bootstrapped curve.
package analytics

import (
	"fmt"

	"github.com/meenmo/bondrv/curve"
)

// TenorPair names a two-leg slope, e.g. 2s10s.
type TenorPair struct {
	Name  string  `json:"name"`
	Short float64 `json:"short"`
	Long  float64 `json:"long"`
}

// DefaultTenorPairs are the slopes the desk watches by default.
var DefaultTenorPairs = []TenorPair{
	{Name: "2s10s", Short: 2, Long: 10},
	{Name: "5s30s", Short: 5, Long: 30},
	{Name: "2s5s", Short: 2, Long: 5},
}

// ShapeMetric is a named slope or fly with its constituent tenors and value
// in basis points.
type ShapeMetric struct {
	Name    string    `json:"name"`
	Tenors  []float64 `json:"tenors"`
	ValueBP float64   `json:"value_bp"`
}

// Skipped records a metric whose tenors could not be recovered from the
// grid under the active alignment policy.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// TwoLegSpreads computes rate(long) − rate(short) in basis points for each
// named pair. Pairs whose legs fall outside the grid under the alignment
// policy are omitted with a reason rather than failing the batch.
func TwoLegSpreads(c *curve.YieldCurve, pairs []TenorPair, align curve.Alignment) ([]ShapeMetric, []Skipped) {
	metrics := make([]ShapeMetric, 0, len(pairs))
	var skipped []Skipped
	bp := c.Unit().BasisPointFactor()

	for _, pair := range pairs {
		short, err := c.Rate(pair.Short, align)
		if err != nil {
			skipped = append(skipped, Skipped{Name: pair.Name, Reason: err.Error()})
			continue
		}
		long, err := c.Rate(pair.Long, align)
		if err != nil {
			skipped = append(skipped, Skipped{Name: pair.Name, Reason: err.Error()})
			continue
		}
		metrics = append(metrics, ShapeMetric{
			Name:    pair.Name,
			Tenors:  []float64{pair.Short, pair.Long},
			ValueBP: (long - short) * bp,
		})
	}
	return metrics, skipped
}

// Fly computes the butterfly 2·rate(mid) − rate(short) − rate(long) in basis
// points. Sign convention: positive means the belly is cheap relative to the
// wings.
func Fly(c *curve.YieldCurve, short, mid, long float64, align curve.Alignment) (ShapeMetric, error) {
	rs, err := c.Rate(short, align)
	if err != nil {
		return ShapeMetric{}, fmt.Errorf("Fly: short leg: %w", err)
	}
	rm, err := c.Rate(mid, align)
	if err != nil {
		return ShapeMetric{}, fmt.Errorf("Fly: mid leg: %w", err)
	}
	rl, err := c.Rate(long, align)
	if err != nil {
		return ShapeMetric{}, fmt.Errorf("Fly: long leg: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s fly", curve.FormatTenor(short), curve.FormatTenor(mid), curve.FormatTenor(long))
	return ShapeMetric{
		Name:    name,
		Tenors:  []float64{short, mid, long},
		ValueBP: (2.0*rm - rs - rl) * c.Unit().BasisPointFactor(),
	}, nil
}
