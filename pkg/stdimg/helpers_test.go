package stdimg

import (
	"image"
	"image/png"
	"math/rand"
	"os"
	"testing"
)

// randomNRGBA fills a w x h image with colour channels drawn from [lo,hi] and
// random alpha.
func randomNRGBA(seed int64, w, h int, lo, hi int) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				img.Pix[i+c] = uint8(lo + rng.Intn(hi-lo+1))
			}
			img.Pix[i+3] = uint8(rng.Intn(256))
		}
	}
	return img
}

func pixelAt(img *image.NRGBA, x, y int) [4]uint8 {
	i := img.PixOffset(x, y)
	return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

// saveIfRequested writes img for manual inspection when DETAIL_SAVE_TEST_OUTPUT=1.
func saveIfRequested(t *testing.T, name string, img image.Image) {
	t.Helper()
	if os.Getenv("DETAIL_SAVE_TEST_OUTPUT") != "1" {
		return
	}
	f, err := os.Create(name)
	if err != nil {
		t.Logf("save %s: %v", name, err)
		return
	}
	defer f.Close()
	_ = png.Encode(f, img)
}
