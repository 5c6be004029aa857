package stdimg

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BilateralOptions configures BilateralSmoothContext.
type BilateralOptions struct {
	SigmaSpace float64
	SigmaRange float64
	// Workers is the number of scan lines processed concurrently.
	// 1 runs on the calling goroutine; <= 0 uses GOMAXPROCS.
	Workers int
}

// accumulator collects the weighted sum for one output pixel.
type accumulator struct {
	weight  float64
	r, g, b float64
}

func (a *accumulator) add(w, r, g, b float64) {
	a.weight += w
	a.r += w * r
	a.g += w * g
	a.b += w * b
}

// resolve returns the weighted mean. With sigmas inside DefaultLimits the
// centre sample contributes a weight of exactly 1, so the total is never below 1.
func (a *accumulator) resolve() (r, g, b float64) {
	if !(a.weight > 0) {
		panic(fmt.Sprintf("stdimg: bilateral weight sum %v is not positive", a.weight))
	}
	return a.r / a.weight, a.g / a.weight, a.b / a.weight
}

// bilateralKernel holds the per-call constants of the filter.
type bilateralKernel struct {
	radius   int
	side     int
	spatial  []float64 // (2r+1)^2 spatial weights, row-major by dy then dx
	invRange float64   // 1 / (2*sigmaRange^2)
}

func newBilateralKernel(sigmaSpace, sigmaRange float64) *bilateralKernel {
	radius := searchRadius(sigmaSpace)
	side := 2*radius + 1
	spatial := make([]float64, side*side)
	denom := 2 * sigmaSpace * sigmaSpace
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			spatial[(dy+radius)*side+dx+radius] = math.Exp(-float64(dx*dx+dy*dy) / denom)
		}
	}
	return &bilateralKernel{
		radius:   radius,
		side:     side,
		spatial:  spatial,
		invRange: 1 / (2 * sigmaRange * sigmaRange),
	}
}

// filterPixel scans the (2r+1)^2 window around (x,y) and accumulates every
// in-bounds neighbour, the centre included.
func (k *bilateralKernel) filterPixel(src *image.NRGBA, x, y int) accumulator {
	b := src.Rect
	ci := src.PixOffset(x, y)
	cr := float64(src.Pix[ci+0])
	cg := float64(src.Pix[ci+1])
	cb := float64(src.Pix[ci+2])

	var acc accumulator
	for dy := -k.radius; dy <= k.radius; dy++ {
		row := (dy + k.radius) * k.side
		for dx := -k.radius; dx <= k.radius; dx++ {
			nx, ny := x+dx, y+dy
			if !inBounds(b, nx, ny) {
				continue
			}
			ni := src.PixOffset(nx, ny)
			nr := float64(src.Pix[ni+0])
			ng := float64(src.Pix[ni+1])
			nb := float64(src.Pix[ni+2])
			dr, dg, db := nr-cr, ng-cg, nb-cb
			w := k.spatial[row+dx+k.radius] * math.Exp(-(dr*dr+dg*dg+db*db)*k.invRange)
			acc.add(w, nr, ng, nb)
		}
	}
	return acc
}

// filterRow writes one output scan line. Rows are disjoint, so concurrent calls
// for different y never touch the same bytes of dst.
func (k *bilateralKernel) filterRow(src, dst *image.NRGBA, y int) {
	for x := src.Rect.Min.X; x < src.Rect.Max.X; x++ {
		acc := k.filterPixel(src, x, y)
		r, g, b := acc.resolve()
		si := src.PixOffset(x, y)
		di := dst.PixOffset(x, y)
		dst.Pix[di+0] = SaturateUint8(r)
		dst.Pix[di+1] = SaturateUint8(g)
		dst.Pix[di+2] = SaturateUint8(b)
		dst.Pix[di+3] = src.Pix[si+3]
	}
}

// BilateralSmooth returns the edge-preserving smoothing of src on the calling
// goroutine. Alpha is copied unchanged.
func BilateralSmooth(src *image.NRGBA, sigmaSpace, sigmaRange float64) (*image.NRGBA, error) {
	return BilateralSmoothContext(context.Background(), src, BilateralOptions{
		SigmaSpace: sigmaSpace,
		SigmaRange: sigmaRange,
		Workers:    1,
	})
}

// BilateralSmoothContext is BilateralSmooth with row parallelism and a
// cancellation check between scan lines. On cancellation no image is returned.
// Both sigmas must lie within DefaultLimits.
func BilateralSmoothContext(ctx context.Context, src *image.NRGBA, opts BilateralOptions) (*image.NRGBA, error) {
	if err := validateRaster("source", src); err != nil {
		return nil, err
	}
	l := DefaultLimits()
	if err := checkRange("sigmaSpace", opts.SigmaSpace, l.SigmaSpace); err != nil {
		return nil, err
	}
	if err := checkRange("sigmaRange", opts.SigmaRange, l.SigmaRange); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	k := newBilateralKernel(opts.SigmaSpace, opts.SigmaRange)
	dst := image.NewNRGBA(src.Rect)
	b := src.Rect

	if workers == 1 {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("bilateral smoothing interrupted at row %d: %w", y-b.Min.Y, err)
			}
			k.filterRow(src, dst, y)
		}
		return dst, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			k.filterRow(src, dst, y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bilateral smoothing interrupted: %w", err)
	}
	// errgroup only reports errors returned by tasks; a cancellation that
	// stopped submission before any task observed it lands here.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bilateral smoothing interrupted: %w", err)
	}
	return dst, nil
}
