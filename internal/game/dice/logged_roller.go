package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw that decides a bout outcome
// is logged at debug level with its label, probability, and result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Chance performs a Bernoulli trial with probability p.
//
// Postcondition: result logged; returns true with probability clamp(p, 0, 1).
func (r *Roller) Chance(label string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("dice chance",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Bool("result", ok),
	)
	return ok
}

// Uniform draws a float in [lo, hi) and logs it.
func (r *Roller) Uniform(label string, lo, hi float64) float64 {
	v := Uniform(r.src, lo, hi)
	r.logger.Debug("dice uniform",
		zap.String("label", label),
		zap.Float64("lo", lo),
		zap.Float64("hi", hi),
		zap.Float64("value", v),
	)
	return v
}

// Intn draws an int in [0, n) and logs it.
//
// Precondition: n > 0.
func (r *Roller) Intn(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice intn",
		zap.String("label", label),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}
