package stdimg

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSheetLayout(t *testing.T) {
	src := randomNRGBA(41, 40, 20, 0, 255)
	res, err := Run(context.Background(), src, Params{SigmaSpace: 1, SigmaRange: 30, Scaling: 2})
	require.NoError(t, err)

	sheet, err := ContactSheet(src, res, 20)
	require.NoError(t, err)
	// tiles are 20x10 after fitting
	wantW := 2 * (20 + 2*sheetPad)
	wantH := 2 * (10 + sheetCaptionH + 2*sheetPad)
	assert.Equal(t, image.Rect(0, 0, wantW, wantH), sheet.Bounds())
	assert.Equal(t, [4]uint8{sheetBackground.R, sheetBackground.G, sheetBackground.B, 255}, pixelAt(sheet, 0, 0))

	captioned := false
	cellW := 20 + 2*sheetPad
	for y := sheetPad + 10; y < sheetPad+10+sheetCaptionH && !captioned; y++ {
		for x := 0; x < cellW; x++ {
			if pixelAt(sheet, x, y) == [4]uint8{sheetCaption.R, sheetCaption.G, sheetCaption.B, 255} {
				captioned = true
				break
			}
		}
	}
	assert.True(t, captioned, "expected caption text under the first tile")
	saveIfRequested(t, "contact_sheet.png", sheet)
}

func TestContactSheetDoesNotUpscale(t *testing.T) {
	src := makeSolidNRGBA(4, 4, color.NRGBA{R: 200, A: 255})
	res := &Result{Smoothed: src, Detail: src, Enhanced: src}
	sheet, err := ContactSheet(src, res, 100)
	require.NoError(t, err)
	assert.Equal(t, 2*(4+2*sheetPad), sheet.Bounds().Dx())
}

func TestContactSheetErrors(t *testing.T) {
	src := makeSolidNRGBA(4, 4, color.NRGBA{A: 255})
	_, err := ContactSheet(src, nil, 10)
	assert.ErrorIs(t, err, ErrNilImage)
	_, err = ContactSheet(src, &Result{Smoothed: src, Detail: src}, 10)
	assert.ErrorIs(t, err, ErrNilImage)
	_, err = ContactSheet(src, &Result{Smoothed: src, Detail: src, Enhanced: src}, 0)
	assert.ErrorIs(t, err, ErrInvalidParam)
}
