package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/config"
	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

// DefaultSheetTile is the contact-sheet tile edge in pixels.
const DefaultSheetTile = 320

// BatchOptions describes one non-interactive run.
type BatchOptions struct {
	Input  string
	OutDir string
	Config config.Config
	// Sheet also writes a 2x2 contact sheet.
	Sheet bool
	// Format is png, jpeg, gif, bmp or tiff; empty means png.
	Format string
}

// Process downsizes src per cfg.MaxSize and runs the pipeline with the
// configured base. It returns the (possibly downsized) source and the result.
func Process(ctx context.Context, src *image.NRGBA, cfg config.Config) (*image.NRGBA, *stdimg.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if fitted := stdimg.FitWithin(src, cfg.MaxSize); fitted != src {
		Logger.Info("downscaled input", "from", src.Bounds().Size(), "to", fitted.Bounds().Size())
		src = fitted
	}
	start := time.Now()
	res, err := stdimg.RunWith(ctx, src, cfg.Smoother(), cfg.Params.Scaling)
	if err != nil {
		return nil, nil, err
	}
	Logger.Debug("pipeline finished",
		"base", cfg.Base,
		"sigmaSpace", cfg.Params.SigmaSpace,
		"sigmaRange", cfg.Params.SigmaRange,
		"scaling", cfg.Params.Scaling,
		"radius", cfg.Params.Radius(),
		"elapsed", time.Since(start))
	return src, res, nil
}

// RunBatch processes opts.Input and writes <name>_smoothed, <name>_detail and
// <name>_enhanced (plus <name>_sheet) into opts.OutDir. It returns the paths
// written.
func RunBatch(ctx context.Context, opts BatchOptions) ([]string, error) {
	format := strings.ToLower(opts.Format)
	if format == "jpg" {
		format = "jpeg"
	}
	if format == "" {
		format = "png"
	}
	if formatFromPath("x"+extensionFor(format)) != format {
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}

	src, _, err := LoadImage(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", opts.Input, err)
	}
	src, res, err := Process(ctx, src, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", opts.Input, err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))
	outputs := []struct {
		suffix string
		img    image.Image
	}{
		{"smoothed", res.Smoothed},
		{"detail", res.Detail},
		{"enhanced", res.Enhanced},
	}
	if opts.Sheet {
		sheet, err := stdimg.ContactSheet(src, res, DefaultSheetTile)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, struct {
			suffix string
			img    image.Image
		}{"sheet", sheet})
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(opts.OutDir, base+"_"+o.suffix+extensionFor(format))
		if err := SaveImage(path, o.img); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		Logger.Info("wrote", "path", path)
		written = append(written, path)
	}
	if opts.Config.Params.Scaling == 1 {
		if d, err := stdimg.MaxChannelDelta(src, res.Enhanced); err == nil {
			Logger.Info("reconstruction", "maxChannelDelta", d)
		}
	}
	return written, nil
}
