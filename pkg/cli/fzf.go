package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// SelectCommand lets the user pick a command, through the fzf binary when it
// is on PATH and the built-in fuzzy finder otherwise.
func SelectCommand(commands []stdimg.CommandSpec) (string, error) {
	if _, err := exec.LookPath("fzf"); err == nil {
		return selectCommandWithFzf(commands)
	}
	idx, err := fuzzyfinder.Find(
		commands,
		func(i int) string { return commands[i].Name },
		fuzzyfinder.WithPromptString("Command> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 || i >= len(commands) {
				return ""
			}
			return commands[i].Usage + "\n\n" + GenerateTooltipFromStdSpec(commands[i])
		}),
	)
	if err != nil {
		return "", fmt.Errorf("command selection cancelled: %w", err)
	}
	return commands[idx].Name, nil
}

func selectCommandWithFzf(commands []stdimg.CommandSpec) (string, error) {
	var b strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Description)
	}
	cmd := exec.Command("fzf", "--prompt=Command> ")
	cmd.Stdin = strings.NewReader(b.String())
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	name, _, _ := strings.Cut(strings.TrimSpace(out.String()), ":")
	if name = strings.TrimSpace(name); name == "" {
		return "", fmt.Errorf("no command selected")
	}
	return name, nil
}

// fzfPreviewCommand picks the best image renderer for fzf's preview pane.
func fzfPreviewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch {
	case isKitty():
		return `printf "\x1b_Ga=d\x1b\\"; kitty +kitten icat --silent {} 2>/dev/null || ` + chafa
	case isInlineImageCapable():
		return "imgcat {} 2>/dev/null || " + chafa
	case isSixelCapable():
		return "img2sixel {} 2>/dev/null || " + chafa
	}
	return chafa
}

// findImages lists image files under dir, skipping hidden directories.
func findImages(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if imageExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// SelectFileWithFzf lets the user pick an image under startDir. With fzf on
// PATH the picker shows a terminal image preview; otherwise the built-in
// fuzzy finder shows file details.
func SelectFileWithFzf(startDir string) (string, error) {
	files, err := findImages(startDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no images under %s", startDir)
	}
	if _, err := exec.LookPath("fzf"); err != nil {
		idx, ferr := fuzzyfinder.Find(
			files,
			func(i int) string { return files[i] },
			fuzzyfinder.WithPromptString("Files> "),
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i < 0 || i >= len(files) {
					return ""
				}
				st, serr := os.Stat(files[i])
				if serr != nil {
					return serr.Error()
				}
				return fmt.Sprintf("%s\n%d bytes\nmodified %s", files[i], st.Size(), st.ModTime().Format("2006-01-02 15:04"))
			}),
		)
		if ferr != nil {
			return "", fmt.Errorf("file selection cancelled: %w", ferr)
		}
		return files[idx], nil
	}

	cmd := exec.Command("fzf",
		"--height", "100%", "--border", "--prompt=Files> ", "--ansi",
		"--preview="+fzfPreviewCommand(), "--preview-window=right:60%")
	cmd.Stdin = strings.NewReader(strings.Join(files, "\n"))
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	runErr := cmd.Run()
	// fzf's previewer may leave kitty images behind
	clearKittyImages()
	if runErr != nil {
		return "", fmt.Errorf("error running fzf for files: %w", runErr)
	}
	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// clearKittyImages emits the kitty graphics "delete" control sequence.
// Terminals that don't understand it will ignore it.
func clearKittyImages() {
	if isKitty() {
		fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
	}
}
