package stdimg

import (
	"fmt"
	"image"
	"strings"
)

// ChannelStats summarises one colour channel.
type ChannelStats struct {
	Min, Max uint8
	Mean     float64
	// Hist counts pixels per channel value.
	Hist [256]int
}

// Spread returns the fraction of pixels whose value lies farther than tol
// from mid. On a detail layer with mid 128 this is the share of pixels that
// carry texture.
func (c ChannelStats) Spread(mid, tol int) float64 {
	total, far := 0, 0
	for v, n := range c.Hist {
		total += n
		if d := v - mid; d > tol || d < -tol {
			far += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(far) / float64(total)
}

// ImageStats holds R, G and B channel statistics.
type ImageStats [3]ChannelStats

// ComputeStats scans the colour channels of img.
func ComputeStats(img *image.NRGBA) (ImageStats, error) {
	var s ImageStats
	if err := validateRaster("image", img); err != nil {
		return s, err
	}
	for c := range s {
		s[c].Min = 255
	}
	var sum [3]float64
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		for x := 0; x < w; x, i = x+1, i+4 {
			for c := 0; c < 3; c++ {
				v := img.Pix[i+c]
				s[c].Hist[v]++
				s[c].Min = min(s[c].Min, v)
				s[c].Max = max(s[c].Max, v)
				sum[c] += float64(v)
			}
		}
	}
	for c := range s {
		s[c].Mean = sum[c] / float64(w*h)
	}
	return s, nil
}

func (s ImageStats) String() string {
	var sb strings.Builder
	for c, name := range []string{"R", "G", "B"} {
		if c > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s[%d..%d mean %.1f]", name, s[c].Min, s[c].Max, s[c].Mean)
	}
	return sb.String()
}
