package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

// stdin is shared by the REPL and every prompt so no buffered input is lost
// between readers.
var stdin = bufio.NewReader(os.Stdin)

// PromptLine displays a prompt and reads a full line of input from the user.
// The returned string is trimmed of surrounding whitespace (including the newline).
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// pickFile is the file picker behind PromptLineOrFzf.
var pickFile = SelectFileWithFzf

// PromptLineOrFzf reads a full line and treats a lone "/" as a request to pick
// a file with fzf. When fzf is unavailable or cancelled the prompt is repeated.
func PromptLineOrFzf(prompt string) (string, error) {
	input, err := PromptLine(prompt)
	if err != nil {
		return "", err
	}
	if input == "/" {
		sel, selErr := pickFile(".")
		if selErr == nil && sel != "" {
			fmt.Printf(" [fzf] %s\n", sel)
			return sel, nil
		}
		debugf("file picker unavailable: %v", selErr)
		return PromptLine(prompt)
	}
	return input, nil
}

// LoadImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP from path. JPEG EXIF
// orientation is applied so the returned raster is upright.
func LoadImage(path string) (*image.NRGBA, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	orientation := 1
	if format == "jpeg" {
		if o, oerr := jpegOrientation(b); oerr == nil {
			orientation = o
		} else {
			debugf("%s: %v", path, oerr)
		}
	}
	return stdimg.AutoOrient(img, orientation), format, nil
}

// formatFromPath maps a file extension to an encoder name; unknown
// extensions encode as PNG.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "png"
}

// extensionFor is the file extension SaveImage maps back to format.
func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "gif", "bmp", "tiff":
		return "." + format
	}
	return ".png"
}

// EncodeImage writes img to w in the named format.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "png", "":
		return png.Encode(w, img)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// SaveImage saves img using the format inferred from the filename extension.
func SaveImage(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeImage(f, img, formatFromPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// GetImageInfoImage returns a short info string for an image.
func GetImageInfoImage(img image.Image, format string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	if format == "" {
		format = "unknown"
	}
	b := img.Bounds()
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d", strings.ToUpper(format), b.Dx(), b.Dy()), nil
}
