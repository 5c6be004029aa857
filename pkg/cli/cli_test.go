package cli

import (
	"bufio"
	"context"
	"errors"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/config"
	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	capturePreview(t)
	t.Setenv("PREVIEW_BACKEND", "")
	t.Setenv("NO_CHAFA", "1")
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, SaveImage(in, solid(10, 6, color.NRGBA{R: 120, G: 130, B: 140, A: 255})))
	s := NewSession(context.Background(), config.Default())
	require.NoError(t, s.Open(in))
	return s, dir
}

func TestSessionRequiresImage(t *testing.T) {
	s := NewSession(context.Background(), config.Default())
	assert.ErrorIs(t, s.RunPipeline(), errNoImage)
	assert.ErrorIs(t, s.Save(), errNoImage)
	assert.ErrorIs(t, s.ApplyCommand("blur"), errNoImage)
	_, err := s.Handle('/')
	assert.ErrorIs(t, err, errNoImage)
	assert.Error(t, s.Open(filepath.Join(t.TempDir(), "missing.png")))
}

func TestSessionSetParams(t *testing.T) {
	s, _ := newTestSession(t)
	withStdin(t, "3\n\n4\n")
	require.NoError(t, s.SetParams())
	assert.Equal(t, stdimg.Params{SigmaSpace: 3, SigmaRange: 25, Scaling: 4}, s.cfg.Params)

	withStdin(t, "2\n99\n1\n")
	assert.Error(t, s.SetParams())
	assert.Equal(t, 3.0, s.cfg.Params.SigmaSpace, "rejected input leaves parameters unchanged")
}

func TestSessionRunPreviewAndSave(t *testing.T) {
	s, dir := newTestSession(t)
	assert.Error(t, s.PreviewSheet())

	_, err := s.Handle('r')
	require.NoError(t, err)
	require.NotNil(t, s.result)

	out := filepath.Join(dir, "detail.tiff")
	withStdin(t, "detail\n"+out+"\n")
	require.NoError(t, s.Save())
	img, format, err := LoadImage(out)
	require.NoError(t, err)
	assert.Equal(t, "tiff", format)
	assert.Equal(t, []uint8{128, 128, 128, 255}, img.Pix[:4])

	withStdin(t, "bogus\n")
	assert.Error(t, s.Save())
}

func TestSessionApplyCommandClearsResult(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.RunPipeline())

	withStdin(t, "20\n10\n")
	require.NoError(t, s.ApplyCommand("resize"))
	assert.Equal(t, 20, s.cur.Bounds().Dx())
	assert.Nil(t, s.result)

	withStdin(t, "\n")
	assert.Error(t, s.ApplyCommand("blur"))
	assert.Error(t, s.ApplyCommand("nope"))
}

func TestHandleQuitAndHelp(t *testing.T) {
	s := NewSession(context.Background(), config.Default())
	quit, err := s.Handle('h')
	assert.NoError(t, err)
	assert.False(t, quit)
	quit, err = s.Handle('q')
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestRunCLIQuits(t *testing.T) {
	capturePreview(t)
	withStdin(t, "h\nq\n")
	require.NoError(t, RunCLI(context.Background(), "", config.Default()))

	withStdin(t, "")
	require.NoError(t, RunCLI(context.Background(), "", config.Default()))
}

func TestSessionSavePicksFile(t *testing.T) {
	s, dir := newTestSession(t)
	require.NoError(t, s.RunPipeline())
	picked := filepath.Join(dir, "picked.png")
	old := pickFile
	t.Cleanup(func() { pickFile = old })

	pickFile = func(string) (string, error) { return picked, nil }
	withStdin(t, "enhanced\n/\n")
	require.NoError(t, s.Save())
	_, format, err := LoadImage(picked)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	// a failed pick asks again
	typed := filepath.Join(dir, "typed.png")
	pickFile = func(string) (string, error) { return "", errors.New("no picker") }
	withStdin(t, "smoothed\n/\n"+typed+"\n")
	require.NoError(t, s.Save())
	_, _, err = LoadImage(typed)
	require.NoError(t, err)
}

func TestSessionShowSkipsUnsupportedTerminal(t *testing.T) {
	s, _ := newTestSession(t)
	buf := capturePreview(t)

	plainTerminal(t)
	s.show(s.cur)
	assert.Zero(t, buf.Len())

	inlineTerminal(t)
	s.show(s.cur)
	assert.True(t, strings.HasPrefix(buf.String(), "\x1b]1337;File="))
}

func TestSessionApplyCommandUsesConfiguredWorkers(t *testing.T) {
	s, _ := newTestSession(t)
	s.cfg.Workers = 3
	src := solid(12, 9, color.NRGBA{R: 90, G: 140, B: 200, A: 255})
	for i := 0; i < len(src.Pix); i += 28 {
		src.Pix[i] = 250
	}
	s.setImage(src)
	want, err := stdimg.RunWorkers(context.Background(), src, stdimg.Params{SigmaSpace: 2, SigmaRange: 20, Scaling: 3}, 1)
	require.NoError(t, err)

	withStdin(t, "2\n20\n3\n")
	require.NoError(t, s.ApplyCommand("enhance"))
	assert.Equal(t, want.Enhanced.Pix, s.cur.Pix)

	withStdin(t, "2\n0.5\n")
	assert.Error(t, s.ApplyCommand("bilateral"))
}

func TestRunCLIStopsOnReadError(t *testing.T) {
	capturePreview(t)
	boom := errors.New("boom")
	old := stdin
	stdin = bufio.NewReader(io.MultiReader(strings.NewReader("q"), iotest.ErrReader(boom)))
	t.Cleanup(func() { stdin = old })

	err := RunCLI(context.Background(), "", config.Default())
	assert.ErrorIs(t, err, boom, "a key followed by a failed read is not dispatched")
}
