package stdimg

import (
	"context"
	"fmt"
	"image"
)

// Smoother produces the low-pass base the detail layer is measured against.
type Smoother interface {
	Smooth(ctx context.Context, src *image.NRGBA) (*image.NRGBA, error)
}

// Bilateral is the edge-aware base.
type Bilateral struct {
	SigmaSpace float64
	SigmaRange float64
	Workers    int
}

func (b Bilateral) Smooth(ctx context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	return BilateralSmoothContext(ctx, src, BilateralOptions{
		SigmaSpace: b.SigmaSpace,
		SigmaRange: b.SigmaRange,
		Workers:    b.Workers,
	})
}

// Gaussian is the plain low-pass base; with it the pipeline is unsharp masking.
type Gaussian struct {
	Sigma float64
}

func (g Gaussian) Smooth(ctx context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return GaussianSmooth(src, g.Sigma)
}

// Result holds the three images of one run. All share the source's bounds.
type Result struct {
	Smoothed *image.NRGBA
	Detail   *image.NRGBA
	Enhanced *image.NRGBA
}

// Run validates p and runs smooth, extract and composite over src. Either all
// three images are returned or none.
func Run(ctx context.Context, src *image.NRGBA, p Params) (*Result, error) {
	return RunWorkers(ctx, src, p, 1)
}

// RunWorkers is Run with the bilateral pass spread over workers scan lines.
func RunWorkers(ctx context.Context, src *image.NRGBA, p Params, workers int) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return RunWith(ctx, src, Bilateral{SigmaSpace: p.SigmaSpace, SigmaRange: p.SigmaRange, Workers: workers}, p.Scaling)
}

// RunWith runs the pipeline with an arbitrary base smoother.
func RunWith(ctx context.Context, src *image.NRGBA, s Smoother, scaling float64) (*Result, error) {
	if err := validateRaster("source", src); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: smoother is nil", ErrInvalidParam)
	}
	smoothed, err := s.Smooth(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}
	detail, err := ExtractDetail(src, smoothed)
	if err != nil {
		return nil, fmt.Errorf("extract detail: %w", err)
	}
	enhanced, err := CompositeDetail(smoothed, detail, src, scaling)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	return &Result{Smoothed: smoothed, Detail: detail, Enhanced: enhanced}, nil
}
