package stdimg

import (
	"image"

	"github.com/disintegration/gift"
)

// orientFilters maps EXIF orientations 2..8 to the transform that displays the
// stored pixels upright.
var orientFilters = map[int]gift.Filter{
	2: gift.FlipHorizontal(),
	3: gift.Rotate180(),
	4: gift.FlipVertical(),
	5: gift.Transpose(),
	6: gift.Rotate270(),
	7: gift.Transverse(),
	8: gift.Rotate90(),
}

// AutoOrient applies an EXIF orientation (1..8) to img. Orientation 1 and
// unknown values only convert to NRGBA.
func AutoOrient(img image.Image, orientation int) *image.NRGBA {
	if img == nil {
		return nil
	}
	f, ok := orientFilters[orientation]
	if !ok {
		return ToNRGBA(img)
	}
	g := gift.New(f)
	out := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(out, img)
	return out
}
