package stdimg

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// ToNRGBA converts any image.Image to *image.NRGBA (non-premultiplied RGBA).
// The result never aliases src.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	if n, ok := src.(*image.NRGBA); ok {
		return CloneNRGBA(n)
	}
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
		}
	}
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		si := src.PixOffset(src.Rect.Min.X, y)
		di := out.PixOffset(src.Rect.Min.X, y)
		copy(out.Pix[di:di+4*src.Rect.Dx()], src.Pix[si:si+4*src.Rect.Dx()])
	}
	return out
}

// NewRaster wraps a row-major RGBA byte buffer of length 4*width*height.
// The buffer is copied; the caller keeps ownership of pix.
func NewRaster(width, height int, pix []byte) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if len(pix) != 4*width*height {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d", ErrBufferLength, len(pix), 4*width*height, width, height)
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(out.Pix, pix)
	return out, nil
}

// validateRaster rejects nil, empty or inconsistently sized buffers.
func validateRaster(name string, img *image.NRGBA) error {
	if img == nil {
		return fmt.Errorf("%s: %w", name, ErrNilImage)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%s: %w: %dx%d", name, ErrEmptyImage, w, h)
	}
	if img.Stride < 4*w || len(img.Pix) < img.Stride*(h-1)+4*w {
		return fmt.Errorf("%s: %w: %d bytes with stride %d for %dx%d", name, ErrBufferLength, len(img.Pix), img.Stride, w, h)
	}
	return nil
}

// sameSize reports an ErrSizeMismatch when b does not match a's dimensions.
func sameSize(aName string, a *image.NRGBA, bName string, b *image.NRGBA) error {
	if a.Rect.Dx() != b.Rect.Dx() || a.Rect.Dy() != b.Rect.Dy() {
		return fmt.Errorf("%w: %s is %dx%d, %s is %dx%d", ErrSizeMismatch,
			aName, a.Rect.Dx(), a.Rect.Dy(), bName, b.Rect.Dx(), b.Rect.Dy())
	}
	return nil
}

// inBounds is the only neighbour test used by the filters: no wrap, no reflect.
func inBounds(r image.Rectangle, x, y int) bool {
	return x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y
}

// SaturateUint8 narrows a channel value into a byte: NaN becomes 0, the value is
// clamped to [0,255] and then rounded half to even. Every filter stores through
// this function so rounding is identical everywhere.
func SaturateUint8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// MaxChannelDelta returns the largest absolute difference between the red, green
// or blue channels of two equally sized images.
func MaxChannelDelta(a, b *image.NRGBA) (int, error) {
	if err := validateRaster("a", a); err != nil {
		return 0, err
	}
	if err := validateRaster("b", b); err != nil {
		return 0, err
	}
	if err := sameSize("a", a, "b", b); err != nil {
		return 0, err
	}
	w, h := a.Rect.Dx(), a.Rect.Dy()
	worst := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ai := a.PixOffset(a.Rect.Min.X+x, a.Rect.Min.Y+y)
			bi := b.PixOffset(b.Rect.Min.X+x, b.Rect.Min.Y+y)
			for c := 0; c < 3; c++ {
				d := int(a.Pix[ai+c]) - int(b.Pix[bi+c])
				if d < 0 {
					d = -d
				}
				if d > worst {
					worst = d
				}
			}
		}
	}
	return worst, nil
}
