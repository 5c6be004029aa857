package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
)

// Terminal preview for kitty, iTerm2-style inline images, sixel and chafa.
// PREVIEW_BACKEND (kitty, inline, sixel, chafa) picks a backend first; on
// failure detection falls through inline, kitty, sixel and chafa in that order.

// previewOut is where escape sequences go.
var previewOut io.Writer = os.Stdout

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "tabby") || strings.Contains(term, "vscode")
}

// isSixelCapable is heuristic; SIXEL_PREVIEW=1 forces it.
func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" || os.Getenv("WT_SESSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "foot") || strings.Contains(term, "mlterm")
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether any preview backend is likely to work.
// An explicit PREVIEW_BACKEND always counts.
func PreviewSupported() bool {
	if os.Getenv("PREVIEW_BACKEND") != "" {
		return true
	}
	k, in, sx, ch := isKitty(), isInlineImageCapable(), isSixelCapable(), hasChafa()
	debugf("preview support: kitty=%v inline=%v sixel=%v chafa=%v", k, in, sx, ch)
	return k || in || sx || ch
}

// PreviewSize conveys a target placement for terminal preview backends.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits the image into at most 80x40 cells of 8x16 pixels
// without upscaling.
func computePreviewSize(img image.Image) PreviewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// postImageNewlines keeps the prompt just below the image.
func postImageNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

// PreviewImage encodes img and shows it in the terminal. format "jpeg" sends
// JPEG bytes where the backend accepts them; kitty always receives PNG.
func PreviewImage(img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	f := strings.ToLower(format)
	backend := strings.ToLower(os.Getenv("PREVIEW_BACKEND"))
	if backend == "kitty" || (backend == "" && isKitty()) {
		f = "png"
	}
	if f == "jpg" {
		f = "jpeg"
	}
	if f != "jpeg" {
		f = "png"
	}
	var buf bytes.Buffer
	if err := EncodeImage(&buf, img, f); err != nil {
		return fmt.Errorf("%s encode failed: %w", f, err)
	}
	return previewBytes(buf.Bytes(), f, computePreviewSize(img))
}

type previewBackend struct {
	name   string
	usable func() bool
	send   func(data []byte, format string, size PreviewSize) error
}

func backends() []previewBackend {
	return []previewBackend{
		{"inline", isInlineImageCapable, sendInlineImage},
		{"kitty", isKitty, sendKittyImage},
		{"sixel", isSixelCapable, sendSixelImage},
		{"chafa", hasChafa, sendChafaImage},
	}
}

func previewBytes(blob []byte, format string, size PreviewSize) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty image blob")
	}
	all := backends()
	if v := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); v != "" {
		if v == "iterm" || v == "wezterm" {
			v = "inline"
		}
		for _, b := range all {
			if b.name != v {
				continue
			}
			err := b.send(blob, format, size)
			if err == nil {
				return nil
			}
			debugf("PREVIEW_BACKEND=%s failed: %v", v, err)
		}
	}
	var firstErr error
	for _, b := range all {
		if !b.usable() {
			continue
		}
		debugf("attempting %s preview", b.name)
		err := b.send(blob, format, size)
		if err == nil {
			return nil
		}
		debugf("%s preview failed: %v", b.name, err)
		if firstErr == nil {
			firstErr = fmt.Errorf("%s preview failed: %w", b.name, err)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	return fmt.Errorf("no preview protocol matched")
}

func writeNewlines(n int) error {
	_, err := io.WriteString(previewOut, strings.Repeat("\n", n))
	return err
}

// sendKittyImage transmits PNG data with the kitty graphics protocol in
// base64 chunks of at most 4096 bytes. The first chunk carries the placement.
func sendKittyImage(data []byte, _ string, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		if pos == 0 {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;", size.Cols, size.Rows, more)
		} else {
			sb.WriteString("\x1b_Gm=" + more + ";")
		}
		sb.WriteString(enc[pos:end])
		sb.WriteString("\x1b\\")
	}
	if _, err := io.WriteString(previewOut, sb.String()); err != nil {
		return err
	}
	return writeNewlines(postImageNewlines(size.Rows))
}

// inlineSequence builds the iTerm2 OSC 1337 inline file sequence.
func inlineSequence(data []byte, format string, size PreviewSize) string {
	name := "preview.png"
	if format == "jpeg" {
		name = "preview.jpg"
	}
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	return "\x1b]1337;File=name=" + base64.StdEncoding.EncodeToString([]byte(name)) +
		";inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
}

func sendInlineImage(data []byte, format string, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	if _, err := io.WriteString(previewOut, inlineSequence(data, format, size)); err != nil {
		return err
	}
	return writeNewlines(postImageNewlines(0))
}

func runRenderer(data []byte, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = previewOut
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func sendSixelImage(data []byte, format string, size PreviewSize) error {
	if err := runRenderer(data, "img2sixel", "-"); err != nil {
		debugf("%v; trying chafa", err)
		return sendChafaImage(data, format, size)
	}
	return writeNewlines(postImageNewlines(0))
}

// sendChafaImage renders with chafa block symbols; CHAFA_FILL and
// CHAFA_SYMBOLS override the defaults.
func sendChafaImage(data []byte, _ string, size PreviewSize) error {
	if os.Getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("chafa disabled via NO_CHAFA=1")
	}
	fill, symbols := "block", "block"
	if v := os.Getenv("CHAFA_FILL"); v != "" {
		fill = v
	}
	if v := os.Getenv("CHAFA_SYMBOLS"); v != "" {
		symbols = v
	}
	err := runRenderer(data, "chafa", "--fill="+fill, "--symbols="+symbols,
		"-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	if err != nil {
		return err
	}
	return writeNewlines(postImageNewlines(size.Rows))
}
