package stdimg

import (
	"fmt"
	"math"
)

// Params are the three knobs of one pipeline run.
type Params struct {
	// SigmaSpace is the spatial standard deviation in pixels. The search radius
	// is ceil(3*SigmaSpace), so cost grows with its square.
	SigmaSpace float64
	// SigmaRange is the colour standard deviation in 8-bit channel units.
	SigmaRange float64
	// Scaling multiplies the detail layer before it is added back.
	Scaling float64
}

// DefaultParams returns the values the interactive tool starts with.
func DefaultParams() Params {
	return Params{
		SigmaSpace: 5,
		SigmaRange: 25,
		Scaling:    2,
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v is finite and inside r.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g,%g]", r.Min, r.Max)
}

// Limits bounds each parameter. Front ends may tighten them (the slider UI
// caps SigmaSpace at 10) but never widen past what the filter handles.
type Limits struct {
	SigmaSpace Range
	SigmaRange Range
	Scaling    Range
	// BlurSigma bounds the Gaussian base, which tolerates sub-pixel sigmas.
	BlurSigma Range
}

// DefaultLimits returns the accepted ranges for Params.Validate.
func DefaultLimits() Limits {
	return Limits{
		SigmaSpace: Range{Min: 1, Max: 50},
		SigmaRange: Range{Min: 1, Max: 50},
		Scaling:    Range{Min: 1, Max: 10},
		BlurSigma:  Range{Min: 0.1, Max: 50},
	}
}

// Validate checks p against DefaultLimits.
func (p Params) Validate() error {
	return p.ValidateWithin(DefaultLimits())
}

// ValidateWithin checks every field of p against l and reports the first
// offending field.
func (p Params) ValidateWithin(l Limits) error {
	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{"sigmaSpace", p.SigmaSpace, l.SigmaSpace},
		{"sigmaRange", p.SigmaRange, l.SigmaRange},
		{"scaling", p.Scaling, l.Scaling},
	}
	for _, c := range checks {
		if err := checkRange(c.name, c.v, c.r); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(name string, v float64, r Range) error {
	if !r.Contains(v) {
		return fmt.Errorf("%w: %s=%v outside %s", ErrInvalidParam, name, v, r)
	}
	return nil
}

// Radius returns the square search radius used by the bilateral filter.
func (p Params) Radius() int {
	return searchRadius(p.SigmaSpace)
}

func searchRadius(sigmaSpace float64) int {
	return int(math.Ceil(3 * sigmaSpace))
}
