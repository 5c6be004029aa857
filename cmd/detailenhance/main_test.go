package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/config"
)

func TestParseArgsOverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Params.Scaling = 7
	o, got, err := parseArgs([]string{"--sigma-space", "3", "--base", "gaussian", "-o", "out", "--sheet", "photo.png"}, cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", o.input)
	assert.Equal(t, "out", o.outDir)
	assert.True(t, o.sheet)
	assert.Equal(t, 3.0, got.Params.SigmaSpace)
	assert.Equal(t, 7.0, got.Params.Scaling, "unset flags keep config values")
	assert.Equal(t, config.BaseGaussian, got.Base)

	_, _, err = parseArgs([]string{"--base", "median"}, cfg, io.Discard)
	assert.Error(t, err)
	_, _, err = parseArgs([]string{"--scaling", "x"}, cfg, io.Discard)
	assert.Error(t, err)
}

func TestEnvFileFromArgs(t *testing.T) {
	assert.Equal(t, ".env", envFileFromArgs([]string{"-i", "a.png"}))
	assert.Equal(t, "tuned.env", envFileFromArgs([]string{"--scaling", "3", "--env", "tuned.env"}))
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "out")
	code := run(context.Background(), []string{"--env", filepath.Join(dir, "none.env"), "-i", in, "-o", out, "--sigma-space", "1", "--format", "jpeg"})
	require.Equal(t, 0, code)
	for _, name := range []string{"in_smoothed.jpg", "in_detail.jpg", "in_enhanced.jpg"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	assert.Equal(t, 2, run(context.Background(), []string{"--env", "", "-o", out}))
	assert.Equal(t, 2, run(context.Background(), []string{"--env", "", "-i", in, "-o", out, "--scaling", "50"}))
	assert.Equal(t, 1, run(context.Background(), []string{"--env", "", "-i", filepath.Join(dir, "missing.png"), "-o", out}))
	assert.Equal(t, 0, run(context.Background(), []string{"--env", "", "--version"}))
}
