package stdimg

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	sheetPad      = 8
	sheetCaptionH = 18
)

var (
	sheetBackground = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
	sheetCaption    = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
)

// ContactSheet lays out the original and the three pipeline outputs in a 2x2
// grid, each scaled to fit tile x tile pixels and captioned underneath.
func ContactSheet(original *image.NRGBA, res *Result, tile int) (*image.NRGBA, error) {
	if res == nil {
		return nil, fmt.Errorf("contact sheet: %w: result is nil", ErrNilImage)
	}
	if tile <= 0 {
		return nil, fmt.Errorf("%w: tile=%d", ErrInvalidParam, tile)
	}
	panes := []struct {
		label string
		img   *image.NRGBA
	}{
		{"Original", original},
		{"Smoothed", res.Smoothed},
		{"Detail", res.Detail},
		{"Enhanced", res.Enhanced},
	}
	for _, p := range panes {
		if err := validateRaster(p.label, p.img); err != nil {
			return nil, fmt.Errorf("contact sheet: %w", err)
		}
	}

	b := original.Bounds()
	scale := math.Min(1, math.Min(float64(tile)/float64(b.Dx()), float64(tile)/float64(b.Dy())))
	tw := max(1, int(math.Round(float64(b.Dx())*scale)))
	th := max(1, int(math.Round(float64(b.Dy())*scale)))
	cellW := tw + 2*sheetPad
	cellH := th + sheetCaptionH + 2*sheetPad

	out := makeSolidNRGBA(2*cellW, 2*cellH, sheetBackground)
	face := basicfont.Face7x13
	for i, p := range panes {
		ox := (i % 2) * cellW
		oy := (i / 2) * cellH
		dr := image.Rect(ox+sheetPad, oy+sheetPad, ox+sheetPad+tw, oy+sheetPad+th)
		xdraw.CatmullRom.Scale(out, dr, p.img, p.img.Bounds(), xdraw.Src, nil)

		textW := font.MeasureString(face, p.label).Ceil()
		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(sheetCaption),
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(ox + (cellW-textW)/2),
				Y: fixed.I(oy + sheetPad + th + sheetCaptionH - 4),
			},
		}
		d.DrawString(p.label)
	}
	return out, nil
}

func makeSolidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
	return img
}
