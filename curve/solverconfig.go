package curve

// SolverConfig holds the numerical parameters for the pillar solver. It is
// passed per bootstrap call rather than held as process state.
type SolverConfig struct {
	// ConvergenceTolerance is the discount-factor stability threshold for the
	// pillar fixed-point iteration.
	ConvergenceTolerance float64

	// MaxIterations caps iterations per pillar.
	MaxIterations int

	// MinDiscountFactor floors solved discount factors; anything at or below
	// it is treated as unsolvable rather than clamped.
	MinDiscountFactor float64
}

// DefaultSolverConfig provides production-ready defaults.
var DefaultSolverConfig = SolverConfig{
	ConvergenceTolerance: 1e-12,
	MaxIterations:        100,
	MinDiscountFactor:    1e-9,
}
