package stdimg

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/disintegration/gift"
)

// ApplyCommandStdlib applies a registry command to img and returns a new image.
func ApplyCommandStdlib(img image.Image, commandName string, args []string) (image.Image, error) {
	return ApplyCommandContext(context.Background(), img, commandName, args)
}

// ApplyCommandContext is ApplyCommandStdlib with cancellation of the
// smoothing pass. Bilateral commands use every available core.
func ApplyCommandContext(ctx context.Context, img image.Image, commandName string, args []string) (image.Image, error) {
	return ApplyCommandWorkers(ctx, img, commandName, args, 0)
}

// ApplyCommandWorkers is ApplyCommandContext with the bilateral pass spread
// over workers scan lines (<= 0 means GOMAXPROCS). Numeric arguments are
// checked against the Min/Max of the command's registry entry.
func ApplyCommandWorkers(ctx context.Context, img image.Image, commandName string, args []string, workers int) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	if err := checkArgBounds(commandName, args); err != nil {
		return nil, err
	}
	src := ToNRGBA(img)
	switch commandName {
	case "bilateral", "detail", "enhance":
		want := 2
		if commandName == "enhance" {
			want = 3
		}
		if len(args) != want {
			return nil, fmt.Errorf("%s requires %d args: %s", commandName, want, usageOf(commandName))
		}
		p := DefaultParams()
		var err error
		if p.SigmaSpace, err = strconv.ParseFloat(args[0], 64); err != nil {
			return nil, fmt.Errorf("invalid sigmaSpace: %w", err)
		}
		if p.SigmaRange, err = strconv.ParseFloat(args[1], 64); err != nil {
			return nil, fmt.Errorf("invalid sigmaRange: %w", err)
		}
		if want == 3 {
			if p.Scaling, err = strconv.ParseFloat(args[2], 64); err != nil {
				return nil, fmt.Errorf("invalid scaling: %w", err)
			}
		}
		res, err := RunWorkers(ctx, src, p, workers)
		if err != nil {
			return nil, err
		}
		switch commandName {
		case "bilateral":
			return res.Smoothed, nil
		case "detail":
			return res.Detail, nil
		}
		return res.Enhanced, nil

	case "blur":
		if len(args) != 1 {
			return nil, fmt.Errorf("blur requires 1 arg: sigma")
		}
		sigma, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sigma: %w", err)
		}
		return GaussianSmooth(src, sigma)

	case "unsharp":
		if len(args) < 1 {
			return nil, fmt.Errorf("unsharp requires 1 arg: sigma [amount]")
		}
		sigma, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sigma: %w", err)
		}
		amount := 1.0
		if len(args) >= 2 && args[1] != "" {
			if amount, err = strconv.ParseFloat(args[1], 64); err != nil {
				return nil, fmt.Errorf("invalid amount: %w", err)
			}
		}
		// base + (1+amount)*(src-base) == src + amount*(src-base)
		res, err := RunWith(ctx, src, Gaussian{Sigma: sigma}, 1+amount)
		if err != nil {
			return nil, err
		}
		return res.Enhanced, nil

	case "resize":
		if len(args) != 2 {
			return nil, fmt.Errorf("resize requires 2 args: width height")
		}
		w, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid width: %w", err)
		}
		h, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: resize to %dx%d", ErrInvalidParam, w, h)
		}
		return Resize(src, w, h), nil

	case "identify":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported command: %s", commandName)
	}
}

// Resize scales src to exactly w x h with Lanczos resampling.
func Resize(src *image.NRGBA, w, h int) *image.NRGBA {
	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	out := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(out, src)
	return out
}

// FitWithin downscales src so neither side exceeds maxSide, keeping the aspect
// ratio. Images already small enough, or maxSide <= 0, are returned as is.
func FitWithin(src *image.NRGBA, maxSide int) *image.NRGBA {
	if src == nil || maxSide <= 0 {
		return src
	}
	b := src.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return src
	}
	g := gift.New(gift.ResizeToFit(maxSide, maxSide, gift.LanczosResampling))
	out := image.NewNRGBA(g.Bounds(b))
	g.Draw(out, src)
	return out
}

// checkArgBounds rejects numeric args outside their ArgSpec bounds. Args that
// do not parse are left for the command to report.
func checkArgBounds(name string, args []string) error {
	spec, ok := lookupCommand(name)
	if !ok {
		return nil
	}
	for i, a := range spec.Args {
		if i >= len(args) || args[i] == "" || (a.Min == nil && a.Max == nil) {
			continue
		}
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			continue
		}
		r := Range{Min: math.Inf(-1), Max: math.Inf(1)}
		if a.Min != nil {
			r.Min = *a.Min
		}
		if a.Max != nil {
			r.Max = *a.Max
		}
		if err := checkRange(a.Name, v, r); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func lookupCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}

func usageOf(name string) string {
	if c, ok := lookupCommand(name); ok {
		return c.Usage
	}
	return name
}
