package stdimg

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBilateralSinglePixelUnchanged(t *testing.T) {
	src := makeSolidNRGBA(1, 1, color.NRGBA{R: 10, G: 200, B: 30, A: 77})
	for _, sigmaSpace := range []float64{1, 5, 50} {
		out, err := BilateralSmooth(src, sigmaSpace, 25)
		require.NoError(t, err)
		assert.Equal(t, src.Pix, out.Pix, "sigmaSpace=%v", sigmaSpace)
	}
}

func TestBilateralFlatImageInvariant(t *testing.T) {
	src := makeSolidNRGBA(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	for _, sigmaSpace := range []float64{1, 3, 10} {
		for _, sigmaRange := range []float64{1, 25, 50} {
			out, err := BilateralSmooth(src, sigmaSpace, sigmaRange)
			require.NoError(t, err)
			assert.Equal(t, src.Pix, out.Pix, "sigmaSpace=%v sigmaRange=%v", sigmaSpace, sigmaRange)
		}
	}
}

func TestBilateralSharpEdgePreserved(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []uint8{0, 0, 0, 255, 255, 255, 255, 255})

	out, err := BilateralSmooth(src, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)

	// Even the widest accepted colour sigma leaves a black/white pair intact:
	// the cross weight is exp(-1/2) * exp(-195075/5000).
	out, err = BilateralSmooth(src, 1, 50)
	require.NoError(t, err)
	left, right := pixelAt(out, 0, 0), pixelAt(out, 1, 0)
	for c := 0; c < 3; c++ {
		assert.LessOrEqual(t, left[c], uint8(1), "left channel %d", c)
		assert.GreaterOrEqual(t, right[c], uint8(254), "right channel %d", c)
	}
	assert.Equal(t, uint8(255), left[3])
	assert.Equal(t, uint8(255), right[3])
}

func TestBilateralModerateEdgeBlendsWithinLimits(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []uint8{100, 100, 100, 255, 140, 140, 140, 255})

	out, err := BilateralSmooth(src, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)

	out, err = BilateralSmooth(src, 1, 50)
	require.NoError(t, err)
	left, right := pixelAt(out, 0, 0), pixelAt(out, 1, 0)
	// w = exp(-1/2) * exp(-4800/5000); left = (100 + 140w) / (1 + w)
	w := math.Exp(-0.5) * math.Exp(-4800.0/5000.0)
	assert.Equal(t, SaturateUint8((100+140*w)/(1+w)), left[0])
	assert.Equal(t, SaturateUint8((140+100*w)/(1+w)), right[0])
	assert.Greater(t, left[0], uint8(100))
	assert.Less(t, right[0], uint8(140))
}

func TestBilateralAlphaPreserved(t *testing.T) {
	src := randomNRGBA(1, 9, 7, 0, 255)
	out, err := BilateralSmooth(src, 2, 30)
	require.NoError(t, err)
	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			require.Equal(t, pixelAt(src, x, y)[3], pixelAt(out, x, y)[3], "alpha at %d,%d", x, y)
		}
	}
}

func TestBilateralWeightSumPositive(t *testing.T) {
	src := randomNRGBA(2, 6, 5, 0, 255)
	// sigmaRange=1 drives every cross-colour weight to zero; only the centre remains.
	k := newBilateralKernel(3, 1)
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			acc := k.filterPixel(src, x, y)
			assert.GreaterOrEqual(t, acc.weight, 1.0, "weight at %d,%d", x, y)
		}
	}
}

func TestAccumulatorPanicsWithoutCentre(t *testing.T) {
	var acc accumulator
	assert.Panics(t, func() { acc.resolve() })

	acc.add(0, 10, 10, 10)
	assert.Panics(t, func() { acc.resolve() })
}

func TestBilateralWorkersMatchSerial(t *testing.T) {
	src := randomNRGBA(3, 23, 17, 0, 255)
	serial, err := BilateralSmooth(src, 2, 20)
	require.NoError(t, err)
	for _, workers := range []int{0, 2, 4, 64} {
		out, err := BilateralSmoothContext(context.Background(), src, BilateralOptions{SigmaSpace: 2, SigmaRange: 20, Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, serial.Pix, out.Pix, "workers=%d", workers)
	}
}

func TestBilateralCancelled(t *testing.T) {
	src := randomNRGBA(4, 16, 16, 0, 255)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		out, err := BilateralSmoothContext(ctx, src, BilateralOptions{SigmaSpace: 2, SigmaRange: 20, Workers: workers})
		require.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
		assert.Nil(t, out)
	}
}

func TestBilateralRejectsBadInput(t *testing.T) {
	_, err := BilateralSmooth(nil, 1, 1)
	assert.ErrorIs(t, err, ErrNilImage)

	_, err = BilateralSmooth(image.NewNRGBA(image.Rect(0, 0, 0, 3)), 1, 1)
	assert.ErrorIs(t, err, ErrEmptyImage)

	truncated := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	truncated.Pix = truncated.Pix[:20]
	_, err = BilateralSmooth(truncated, 1, 1)
	assert.ErrorIs(t, err, ErrBufferLength)

	src := makeSolidNRGBA(2, 2, color.NRGBA{A: 255})
	for _, bad := range []float64{0, -1, 1e-200, 0.5, 51, 1e5, 1e10, math.NaN(), math.Inf(1)} {
		out, err := BilateralSmooth(src, bad, 10)
		assert.ErrorIs(t, err, ErrInvalidParam, "sigmaSpace=%v", bad)
		assert.Nil(t, out)
		out, err = BilateralSmooth(src, 1, bad)
		assert.ErrorIs(t, err, ErrInvalidParam, "sigmaRange=%v", bad)
		assert.Nil(t, out)
		_, err = BilateralSmoothContext(context.Background(), src, BilateralOptions{SigmaSpace: bad, SigmaRange: 10, Workers: 4})
		assert.ErrorIs(t, err, ErrInvalidParam, "parallel sigmaSpace=%v", bad)
	}
	for _, ok := range []float64{1, 50} {
		_, err = BilateralSmooth(src, ok, ok)
		assert.NoError(t, err, "sigma=%v", ok)
	}
}

func TestBilateralSubImageMatchesZeroOrigin(t *testing.T) {
	big := randomNRGBA(5, 10, 10, 0, 255)
	sub := big.SubImage(image.Rect(2, 3, 8, 9)).(*image.NRGBA)

	zero := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		si := sub.PixOffset(2, 3+y)
		copy(zero.Pix[zero.PixOffset(0, y):], sub.Pix[si:si+4*6])
	}

	a, err := BilateralSmooth(sub, 1.5, 25)
	require.NoError(t, err)
	b, err := BilateralSmooth(zero, 1.5, 25)
	require.NoError(t, err)
	assert.Equal(t, sub.Rect, a.Rect)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			require.Equal(t, pixelAt(b, x, y), pixelAt(a, 2+x, 3+y), "pixel %d,%d", x, y)
		}
	}
}

func BenchmarkBilateralSigmaSpace(b *testing.B) {
	src := randomNRGBA(6, 64, 64, 0, 255)
	for _, sigmaSpace := range []float64{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("sigma=%g", sigmaSpace), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := BilateralSmooth(src, sigmaSpace, 25); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
