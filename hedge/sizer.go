package hedge

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData reports a hedge request whose DV01 inputs are missing
// or non-positive.
var ErrInsufficientData = errors.New("hedge: insufficient DV01 data")

// FuturesDV01 maps exchange-listed bond futures to their DV01 per contract,
// in currency units per basis point.
var FuturesDV01 = map[string]float64{
	"FGBS": 30,  // Schatz
	"FGBM": 55,  // Bobl
	"FGBL": 85,  // Bund
	"ZN":   80,  // 10Y T-Note
	"ZB":   120, // T-Bond
}

// Tickers returns the futures contracts with a known DV01, sorted.
func Tickers() []string {
	out := make([]string, 0, len(FuturesDV01))
	for t := range FuturesDV01 {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Result describes a sized hedge.
type Result struct {
	Instrument   string  `json:"instrument"`
	Contracts    int64   `json:"contracts"`
	RawRatio     float64 `json:"rawRatio"`
	HedgedDV01   float64 `json:"hedgedDv01"`
	ResidualDV01 float64 `json:"residualDv01"`
}

// Size computes the number of hedge units that offsets positionDV01 given
// the DV01 of a single hedge unit. The raw ratio is rounded half-away-from-
// zero to a whole contract count and the leftover exposure is reported as
// residual DV01.
func Size(instrument string, positionDV01, unitDV01 float64) (Result, error) {
	if positionDV01 <= 0 || math.IsNaN(positionDV01) || math.IsInf(positionDV01, 0) {
		return Result{}, fmt.Errorf("Size: position DV01 %v: %w", positionDV01, ErrInsufficientData)
	}
	if unitDV01 <= 0 || math.IsNaN(unitDV01) || math.IsInf(unitDV01, 0) {
		return Result{}, fmt.Errorf("Size: unit DV01 %v for %s: %w", unitDV01, instrument, ErrInsufficientData)
	}

	ratio := decimal.NewFromFloat(positionDV01).Div(decimal.NewFromFloat(unitDV01))
	contracts := ratio.Round(0)

	hedged := contracts.Mul(decimal.NewFromFloat(unitDV01))
	residual := decimal.NewFromFloat(positionDV01).Sub(hedged)

	rawRatio, _ := ratio.Float64()
	hedgedF, _ := hedged.Float64()
	residualF, _ := residual.Float64()
	return Result{
		Instrument:   instrument,
		Contracts:    contracts.IntPart(),
		RawRatio:     rawRatio,
		HedgedDV01:   hedgedF,
		ResidualDV01: residualF,
	}, nil
}

// SizeFutures sizes a hedge in a listed futures contract from the built-in
// DV01 table.
func SizeFutures(ticker string, positionDV01 float64) (Result, error) {
	unit, ok := FuturesDV01[ticker]
	if !ok {
		return Result{}, fmt.Errorf("SizeFutures: unknown contract %q: %w", ticker, ErrInsufficientData)
	}
	return Size(ticker, positionDV01, unit)
}

// LiquidityScore is a coarse [0,1] rank of how cheaply a hedge trades:
// on-the-run status, bid/ask width in bp and estimated daily volume in
// millions each contribute a capped component. Pass a non-positive width or
// volume to skip that component.
func LiquidityScore(onTheRun bool, bidAskBP, dailyVolumeMM float64) float64 {
	s := 0.0
	if onTheRun {
		s += 0.4
	}
	if bidAskBP > 0 {
		s += math.Min(0.3, 0.3*(2.0/math.Max(0.5, bidAskBP)))
	}
	if dailyVolumeMM > 0 {
		s += math.Min(0.3, 0.3*dailyVolumeMM/200.0)
	}
	return math.Min(1.0, s)
}
