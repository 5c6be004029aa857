// Command detailenhance exaggerates image texture by amplifying the
// difference between an image and its bilateral-filtered base.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/cli"
	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/config"
)

type options struct {
	input       string
	outDir      string
	envFile     string
	format      string
	sheet       bool
	version     bool
	checkUpdate bool
	debug       bool
}

// parseArgs applies flags over the environment-derived config.
func parseArgs(args []string, cfg config.Config, stderr io.Writer) (options, config.Config, error) {
	var o options
	fs := pflag.NewFlagSet("detailenhance", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.input, "input", "i", "", "input image (png, jpeg, gif, bmp, tiff, webp)")
	fs.StringVarP(&o.outDir, "out", "o", "", "output directory; without it the interactive editor starts")
	fs.StringVar(&o.envFile, "env", ".env", "optional .env file with DETAIL_* settings")
	fs.StringVar(&o.format, "format", "png", "output format: png, jpeg, gif, bmp or tiff")
	fs.BoolVar(&o.sheet, "sheet", false, "also write a 2x2 contact sheet")
	fs.BoolVarP(&o.version, "version", "v", false, "show version information")
	fs.BoolVar(&o.checkUpdate, "check-update", false, "report whether a newer release exists")
	fs.BoolVar(&o.debug, "debug", cfg.Debug, "enable debug logging")
	fs.Float64Var(&cfg.Params.SigmaSpace, "sigma-space", cfg.Params.SigmaSpace, "spatial sigma in pixels")
	fs.Float64Var(&cfg.Params.SigmaRange, "sigma-range", cfg.Params.SigmaRange, "colour sigma in channel units")
	fs.Float64Var(&cfg.Params.Scaling, "scaling", cfg.Params.Scaling, "detail amplification")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "scan lines filtered concurrently (0 = all cores)")
	fs.IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "downscale inputs whose longer side exceeds this (0 = off)")
	base := fs.String("base", string(cfg.Base), "smoothing base: bilateral or gaussian")

	if err := fs.Parse(args); err != nil {
		return o, cfg, err
	}
	if o.input == "" && fs.NArg() > 0 {
		o.input = fs.Arg(0)
	}
	b, err := config.ParseBase(*base)
	if err != nil {
		return o, cfg, err
	}
	cfg.Base = b
	cfg.Debug = o.debug
	return o, cfg, nil
}

// envFileFromArgs finds --env before full parsing so the file can seed the
// defaults the other flags override.
func envFileFromArgs(args []string) string {
	fs := pflag.NewFlagSet("env", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	env := fs.String("env", ".env", "")
	_ = fs.Parse(args)
	return *env
}

func run(ctx context.Context, args []string) int {
	cfg, err := config.Load(envFileFromArgs(args))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	o, cfg, err := parseArgs(args, cfg, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cli.InitLogger(cfg.Debug)

	if o.version {
		fmt.Printf("detailenhance %s\n", cli.Version)
		return 0
	}
	if o.checkUpdate {
		st, err := cli.CheckForUpdates(ctx)
		if err != nil {
			cli.Logger.Error("update check", "err", err)
			return 1
		}
		if st.Available() {
			fmt.Printf("detailenhance %s is available (running %s)\n", st.Latest.Version, cli.Version)
		} else {
			fmt.Printf("detailenhance %s is up to date\n", cli.Version)
		}
		return 0
	}
	if err := cfg.Validate(); err != nil {
		cli.Logger.Error("invalid settings", "err", err)
		return 2
	}

	if o.outDir == "" {
		if err := cli.RunCLI(ctx, o.input, cfg); err != nil {
			cli.Logger.Error("editor", "err", err)
			return 1
		}
		return 0
	}
	if o.input == "" {
		cli.Logger.Error("batch mode needs --input")
		return 2
	}
	_, err = cli.RunBatch(ctx, cli.BatchOptions{
		Input:  o.input,
		OutDir: o.outDir,
		Config: cfg,
		Sheet:  o.sheet,
		Format: o.format,
	})
	if err != nil {
		cli.Logger.Error("batch", "err", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
