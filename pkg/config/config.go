// Package config resolves run settings from the environment and an optional
// .env file. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

// Environment variable names.
const (
	EnvSigmaSpace = "DETAIL_SIGMA_SPACE"
	EnvSigmaRange = "DETAIL_SIGMA_RANGE"
	EnvScaling    = "DETAIL_SCALING"
	EnvWorkers    = "DETAIL_WORKERS"
	EnvBase       = "DETAIL_BASE"
	EnvMaxSize    = "DETAIL_MAX_SIZE"
	EnvDebug      = "DETAIL_DEBUG"
	envPreviewDbg = "PREVIEW_DEBUG"
)

// Base selects the smoother the detail layer is measured against.
type Base string

const (
	BaseBilateral Base = "bilateral"
	BaseGaussian  Base = "gaussian"
)

// ParseBase accepts "bilateral" or "gaussian" in any case.
func ParseBase(s string) (Base, error) {
	switch b := Base(strings.ToLower(strings.TrimSpace(s))); b {
	case BaseBilateral, BaseGaussian:
		return b, nil
	}
	return "", fmt.Errorf("unknown base %q (want bilateral or gaussian)", s)
}

// Config is everything a run needs besides the image paths.
type Config struct {
	Params stdimg.Params
	// Workers bounds the scan lines filtered at once; 0 means GOMAXPROCS.
	Workers int
	Base    Base
	// MaxSize downscales inputs whose longer side exceeds it; 0 disables.
	MaxSize int
	Debug   bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Params: stdimg.DefaultParams(),
		Base:   BaseBilateral,
	}
}

// Smoother returns the base smoother c selects.
func (c Config) Smoother() stdimg.Smoother {
	if c.Base == BaseGaussian {
		return stdimg.Gaussian{Sigma: c.Params.SigmaSpace}
	}
	return stdimg.Bilateral{
		SigmaSpace: c.Params.SigmaSpace,
		SigmaRange: c.Params.SigmaRange,
		Workers:    c.Workers,
	}
}

// Validate checks the parameters and the integer knobs.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers=%d", stdimg.ErrInvalidParam, c.Workers)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("%w: max size=%d", stdimg.ErrInvalidParam, c.MaxSize)
	}
	if _, err := ParseBase(string(c.Base)); err != nil {
		return err
	}
	return nil
}

// Load reads envFile (ignored when missing or empty) into the process
// environment without overriding variables already set, then builds a Config
// from the DETAIL_* variables.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	floats := []struct {
		key string
		dst *float64
	}{
		{EnvSigmaSpace, &c.Params.SigmaSpace},
		{EnvSigmaRange, &c.Params.SigmaRange},
		{EnvScaling, &c.Params.Scaling},
	}
	for _, f := range floats {
		v := strings.TrimSpace(getenv(f.key))
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = n
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &c.Workers},
		{EnvMaxSize, &c.MaxSize},
	}
	for _, i := range ints {
		v := strings.TrimSpace(getenv(i.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	if v := getenv(EnvBase); strings.TrimSpace(v) != "" {
		b, err := ParseBase(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvBase, err)
		}
		c.Base = b
	}
	c.Debug = truthy(getenv(EnvDebug)) || truthy(getenv(envPreviewDbg))
	return c, nil
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
