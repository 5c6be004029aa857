package stdimg

import "image"

// detailMid is the neutral grey the signed detail is centred on.
const detailMid = 128

// ExtractDetail returns 128 + source - smoothed per colour channel. Alpha is
// copied from source. Differences beyond [-128,127] saturate.
func ExtractDetail(source, smoothed *image.NRGBA) (*image.NRGBA, error) {
	if err := validateRaster("source", source); err != nil {
		return nil, err
	}
	if err := validateRaster("smoothed", smoothed); err != nil {
		return nil, err
	}
	if err := sameSize("source", source, "smoothed", smoothed); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(source.Rect)
	w, h := source.Rect.Dx(), source.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := source.PixOffset(source.Rect.Min.X+x, source.Rect.Min.Y+y)
			mi := smoothed.PixOffset(smoothed.Rect.Min.X+x, smoothed.Rect.Min.Y+y)
			oi := out.PixOffset(out.Rect.Min.X+x, out.Rect.Min.Y+y)
			for c := 0; c < 3; c++ {
				v := detailMid + float64(source.Pix[si+c]) - float64(smoothed.Pix[mi+c])
				out.Pix[oi+c] = SaturateUint8(v)
			}
			out.Pix[oi+3] = source.Pix[si+3]
		}
	}
	return out, nil
}

// CompositeDetail returns smoothed + scaling*(detail - 128) per colour channel,
// with alpha copied from source. At scaling 1 it rebuilds source. scaling
// must lie within DefaultLimits().Scaling.
func CompositeDetail(smoothed, detail, source *image.NRGBA, scaling float64) (*image.NRGBA, error) {
	if err := validateRaster("smoothed", smoothed); err != nil {
		return nil, err
	}
	if err := validateRaster("detail", detail); err != nil {
		return nil, err
	}
	if err := validateRaster("source", source); err != nil {
		return nil, err
	}
	if err := sameSize("source", source, "smoothed", smoothed); err != nil {
		return nil, err
	}
	if err := sameSize("source", source, "detail", detail); err != nil {
		return nil, err
	}
	if err := checkRange("scaling", scaling, DefaultLimits().Scaling); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(source.Rect)
	w, h := source.Rect.Dx(), source.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mi := smoothed.PixOffset(smoothed.Rect.Min.X+x, smoothed.Rect.Min.Y+y)
			di := detail.PixOffset(detail.Rect.Min.X+x, detail.Rect.Min.Y+y)
			si := source.PixOffset(source.Rect.Min.X+x, source.Rect.Min.Y+y)
			oi := out.PixOffset(out.Rect.Min.X+x, out.Rect.Min.Y+y)
			for c := 0; c < 3; c++ {
				v := float64(smoothed.Pix[mi+c]) + scaling*(float64(detail.Pix[di+c])-detailMid)
				out.Pix[oi+c] = SaturateUint8(v)
			}
			out.Pix[oi+3] = source.Pix[si+3]
		}
	}
	return out, nil
}
