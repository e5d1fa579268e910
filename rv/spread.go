// Package rv derives relative-value spreads from bootstrapped curves:
// government yields against a reference issuer, asset-swap spreads against
// the matching-currency swap curve, and swap curves against the EUR curve.
package rv

import (
	"errors"
	"fmt"

	"github.com/meenmo/bondrv/curve"
)

// ErrMissingReference is returned when a spread mode's reference curve is
// absent; the whole series for that issuer and mode is omitted.
var ErrMissingReference = errors.New("rv: reference curve missing")

// Mode selects the spread computed by Compute. The three cases are handled
// exhaustively; adding a mode without extending Compute is a compile-time
// reminder via the default branch error.
type Mode int

const (
	// ModeGovVsRef is the government-yield spread against the reference
	// issuer's curve (Bund by convention).
	ModeGovVsRef Mode = iota
	// ModeASW is the asset-swap spread: government zero minus the
	// matching-currency swap zero.
	ModeASW
	// ModeIRSVsEUR is the swap-curve spread against the EUR swap curve.
	ModeIRSVsEUR
)

func (m Mode) String() string {
	switch m {
	case ModeGovVsRef:
		return "gov-vs-ref"
	case ModeASW:
		return "asw"
	case ModeIRSVsEUR:
		return "irs-vs-eur"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps the API strings to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "gov-vs-ref", "gov", "":
		return ModeGovVsRef, nil
	case "asw":
		return ModeASW, nil
	case "irs-vs-eur", "irs":
		return ModeIRSVsEUR, nil
	}
	return ModeGovVsRef, fmt.Errorf("ParseMode: unknown spread mode %q", s)
}

// Point is one spread observation on the target issuer's tenor grid.
type Point struct {
	Tenor    float64 `json:"tenor"`
	SpreadBP float64 `json:"spread_bp"`
}

// Excluded records a tenor dropped from a series under strict alignment,
// with enough context for the presentation layer to surface it.
type Excluded struct {
	Tenor  float64 `json:"tenor"`
	Reason string  `json:"reason"`
}

// Series is the spread of one issuer or currency against a reference curve,
// one point per tenor of the target grid.
type Series struct {
	Issuer    string     `json:"issuer"`
	Reference string     `json:"reference"`
	Mode      Mode       `json:"-"`
	ModeName  string     `json:"mode"`
	Points    []Point    `json:"points"`
	Excluded  []Excluded `json:"excluded,omitempty"`
}

// Compute dispatches to the mode's spread. target and ref are the curves the
// mode calls for: par government curves for ModeGovVsRef, the issuer's zero
// curve and matching-currency swap zero curve for ModeASW, and two swap zero
// curves for ModeIRSVsEUR.
func Compute(mode Mode, target, ref *curve.YieldCurve, align curve.Alignment) (Series, error) {
	switch mode {
	case ModeGovVsRef, ModeASW:
		return spreadSeries(mode, target, ref, align)
	case ModeIRSVsEUR:
		return IRSVsReference(target, ref, align)
	}
	return Series{}, fmt.Errorf("Compute: unhandled spread mode %d", int(mode))
}

// GovVsRef computes target_rate − reference_rate at every tenor of the
// target's grid, in basis points. The reference lookup interpolates the
// reference grid; nearest alignment is the conventional default.
func GovVsRef(target, ref *curve.YieldCurve, align curve.Alignment) (Series, error) {
	return spreadSeries(ModeGovVsRef, target, ref, align)
}

// ASW computes the asset-swap spread: bond zero minus the matching-currency
// swap zero, interpolated across the (generally different) swap tenor grid.
// Under strict alignment, bond tenors outside the swap grid are excluded from
// the series and reported; under nearest alignment the closest swap tenor's
// rate is substituted.
func ASW(bondZero, swapZero *curve.YieldCurve, align curve.Alignment) (Series, error) {
	return spreadSeries(ModeASW, bondZero, swapZero, align)
}

// IRSVsReference computes the swap-curve spread of one currency against a
// reference currency's swap zero curve. Comparing a currency against itself
// is a designed identity: the series is exactly zero at every tenor, short
// circuited rather than left to floating-point cancellation.
func IRSVsReference(target, refIRS *curve.YieldCurve, align curve.Alignment) (Series, error) {
	if target == nil {
		return Series{}, fmt.Errorf("IRSVsReference: nil target curve")
	}
	if refIRS == nil {
		return Series{}, fmt.Errorf("IRSVsReference: target %q: %w", target.Issuer(), ErrMissingReference)
	}

	if target.Issuer() == refIRS.Issuer() {
		s := Series{
			Issuer:    target.Issuer(),
			Reference: refIRS.Issuer(),
			Mode:      ModeIRSVsEUR,
			ModeName:  ModeIRSVsEUR.String(),
			Points:    make([]Point, 0, target.Len()),
		}
		for _, p := range target.Points() {
			s.Points = append(s.Points, Point{Tenor: p.Tenor, SpreadBP: 0})
		}
		return s, nil
	}
	return spreadSeries(ModeIRSVsEUR, target, refIRS, align)
}

func spreadSeries(mode Mode, target, ref *curve.YieldCurve, align curve.Alignment) (Series, error) {
	if target == nil {
		return Series{}, fmt.Errorf("rv: %s: nil target curve", mode)
	}
	if ref == nil {
		return Series{}, fmt.Errorf("rv: %s: target %q: %w", mode, target.Issuer(), ErrMissingReference)
	}

	s := Series{
		Issuer:    target.Issuer(),
		Reference: ref.Issuer(),
		Mode:      mode,
		ModeName:  mode.String(),
		Points:    make([]Point, 0, target.Len()),
	}
	bp := target.Unit().BasisPointFactor()

	for _, p := range target.Points() {
		refRate, err := ref.Rate(p.Tenor, align)
		if err != nil {
			// Strict alignment excludes the point, never the series.
			s.Excluded = append(s.Excluded, Excluded{Tenor: p.Tenor, Reason: err.Error()})
			continue
		}
		refRate = target.ConvertRate(refRate, ref.Unit())
		s.Points = append(s.Points, Point{Tenor: p.Tenor, SpreadBP: (p.Rate - refRate) * bp})
	}
	return s, nil
}
