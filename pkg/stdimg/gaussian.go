package stdimg

import (
	"image"
	"math"
	"sync"
)

// gaussianKernel1D generates a normalised 1D Gaussian kernel with radius ceil(3*sigma).
func gaussianKernel1D(sigma float64) ([]float64, int) {
	radius := searchRadius(sigma)
	kern := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kern[i+radius] = v
		sum += v
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern, radius
}

// GaussianSmooth blurs the colour channels of src with a separable Gaussian.
// Like the bilateral filter, taps outside the image are dropped and the
// remaining weights renormalised; alpha is copied unchanged. This is the
// non-edge-aware base used for classic unsharp masking.
func GaussianSmooth(src *image.NRGBA, sigma float64) (*image.NRGBA, error) {
	if err := validateRaster("source", src); err != nil {
		return nil, err
	}
	if err := checkRange("sigma", sigma, DefaultLimits().BlurSigma); err != nil {
		return nil, err
	}
	kern, radius := gaussianKernel1D(sigma)
	b := src.Rect
	w, h := b.Dx(), b.Dy()
	// horizontal pass result kept in float to avoid rounding twice
	tmp := make([]float64, 3*w*h)
	dst := image.NewNRGBA(b)

	var wg sync.WaitGroup
	for y := 0; y < h; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < w; x++ {
				var sr, sg, sb, wsum float64
				for k := -radius; k <= radius; k++ {
					if !inBounds(b, b.Min.X+x+k, b.Min.Y+y) {
						continue
					}
					i := src.PixOffset(b.Min.X+x+k, b.Min.Y+y)
					wgt := kern[k+radius]
					sr += float64(src.Pix[i+0]) * wgt
					sg += float64(src.Pix[i+1]) * wgt
					sb += float64(src.Pix[i+2]) * wgt
					wsum += wgt
				}
				t := 3 * (y*w + x)
				tmp[t+0] = sr / wsum
				tmp[t+1] = sg / wsum
				tmp[t+2] = sb / wsum
			}
		}(y)
	}
	wg.Wait()

	for x := 0; x < w; x++ {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			for y := 0; y < h; y++ {
				var sr, sg, sb, wsum float64
				for k := -radius; k <= radius; k++ {
					yy := y + k
					if yy < 0 || yy >= h {
						continue
					}
					t := 3 * (yy*w + x)
					wgt := kern[k+radius]
					sr += tmp[t+0] * wgt
					sg += tmp[t+1] * wgt
					sb += tmp[t+2] * wgt
					wsum += wgt
				}
				si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				di := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
				dst.Pix[di+0] = SaturateUint8(sr / wsum)
				dst.Pix[di+1] = SaturateUint8(sg / wsum)
				dst.Pix[di+2] = SaturateUint8(sb / wsum)
				dst.Pix[di+3] = src.Pix[si+3]
			}
		}(x)
	}
	wg.Wait()
	return dst, nil
}
