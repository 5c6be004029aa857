package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/config"
	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

func usage() {
	fmt.Println("Commands available:")
	fmt.Println("  r  - run bilateral detail enhancement")
	fmt.Println("  p  - set sigmaSpace / sigmaRange / scaling")
	fmt.Println("  /  - select and apply command")
	fmt.Println("  v  - preview original / smoothed / detail / enhanced")
	fmt.Println("  o  - open another image at runtime")
	fmt.Println("  s  - save current image or a pipeline output")
	fmt.Println("  u  - check for updates")
	fmt.Println("  h  - show this help message")
	fmt.Println("  q  - quit")
}

// Session is the state of one interactive run.
type Session struct {
	ctx    context.Context
	cfg    config.Config
	store  *StdMetaStore
	cur    *image.NRGBA
	path   string
	format string
	// result of the last 'r' for cur; cleared whenever cur changes
	result *stdimg.Result
	source *image.NRGBA
}

// NewSession returns a session with no image loaded.
func NewSession(ctx context.Context, cfg config.Config) *Session {
	return &Session{ctx: ctx, cfg: cfg, store: NewMetaStoreFromStdimg(stdimg.Commands)}
}

func (s *Session) show(img image.Image) {
	if PreviewSupported() {
		if err := PreviewImage(img, s.format); err != nil {
			debugf("preview: %v", err)
		}
	}
	if info, err := GetImageInfoImage(img, s.format); err == nil {
		fmt.Println(info)
	}
}

func (s *Session) setImage(img *image.NRGBA) {
	s.cur = img
	s.result = nil
	s.source = nil
}

// Open loads path as the current image.
func (s *Session) Open(path string) error {
	img, format, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	s.setImage(img)
	s.path, s.format = path, format
	s.show(img)
	return nil
}

// RunPipeline enhances the current image with the session parameters.
func (s *Session) RunPipeline() error {
	if s.cur == nil {
		return errNoImage
	}
	src, res, err := Process(s.ctx, s.cur, s.cfg)
	if err != nil {
		return err
	}
	s.source, s.result = src, res
	fmt.Printf("Enhanced with sigmaSpace=%g sigmaRange=%g scaling=%g (%s base)\n",
		s.cfg.Params.SigmaSpace, s.cfg.Params.SigmaRange, s.cfg.Params.Scaling, s.cfg.Base)
	if st, serr := stdimg.ComputeStats(res.Detail); serr == nil {
		fmt.Printf("Detail: %.1f%% of red samples differ from the base by more than %d\n",
			100*st[0].Spread(128, detailTolerance), detailTolerance)
	}
	if s.cfg.Params.Scaling == 1 {
		if d, derr := stdimg.MaxChannelDelta(src, res.Enhanced); derr == nil {
			fmt.Printf("Max channel difference from original: %d\n", d)
		}
	}
	s.show(res.Enhanced)
	return nil
}

// detailTolerance is how far from neutral grey a detail sample must be to
// count as texture.
const detailTolerance = 2

var errNoImage = errors.New("no image loaded; press 'o' to open an image first, or provide an image path as the first argument")

func promptFloat(label string, cur float64, r stdimg.Range) (float64, error) {
	raw, err := PromptLine(fmt.Sprintf("%s %s (current %g, empty keeps): ", label, r, cur))
	if err != nil || raw == "" {
		return cur, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return cur, fmt.Errorf("%s: expected a number, got %q", label, raw)
	}
	if !r.Contains(v) {
		return cur, fmt.Errorf("%s: %g outside %s", label, v, r)
	}
	return v, nil
}

// SetParams prompts for the three pipeline parameters. Nothing changes
// unless all answers are valid.
func (s *Session) SetParams() error {
	l := stdimg.DefaultLimits()
	p := s.cfg.Params
	var err error
	if p.SigmaSpace, err = promptFloat("sigmaSpace", p.SigmaSpace, l.SigmaSpace); err != nil {
		return err
	}
	if p.SigmaRange, err = promptFloat("sigmaRange", p.SigmaRange, l.SigmaRange); err != nil {
		return err
	}
	if p.Scaling, err = promptFloat("scaling", p.Scaling, l.Scaling); err != nil {
		return err
	}
	s.cfg.Params = p
	fmt.Printf("Parameters: sigmaSpace=%g (radius %d) sigmaRange=%g scaling=%g\n", p.SigmaSpace, p.Radius(), p.SigmaRange, p.Scaling)
	return nil
}

func (s *Session) chooseCommand() (string, error) {
	if name, err := SelectCommand(s.store.Commands); err == nil && name != "" {
		return name, nil
	} else if err != nil {
		debugf("picker: %v", err)
	}
	fmt.Println("Command selection (fallback):")
	for i, c := range s.store.Commands {
		fmt.Printf("  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	sel, err := PromptLine("Enter number or command name (leave empty to cancel): ")
	if err != nil || sel == "" {
		return "", err
	}
	return s.store.Resolve(sel)
}

// ApplyCommand prompts for the arguments of name and applies it to the
// current image.
func (s *Session) ApplyCommand(name string) error {
	if s.cur == nil {
		return errNoImage
	}
	c, ok := s.store.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	tooltip, _, _ := s.store.GetCommandHelp(name)
	fmt.Println("\n" + tooltip + "\n")
	raw := make([]string, len(c.Args))
	for i, a := range c.Args {
		v, err := PromptLine(fmt.Sprintf("%s (%s): ", a.Name, a.Type))
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}
		raw[i] = v
	}
	args, err := NormalizeArgsFromStd(s.store, name, raw)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}
	out, err := stdimg.ApplyCommandWorkers(s.ctx, s.cur, name, args, s.cfg.Workers)
	if err != nil {
		return fmt.Errorf("apply command error: %w", err)
	}
	fmt.Printf("Applied %s\n", name)
	if name == "identify" {
		if st, serr := stdimg.ComputeStats(s.cur); serr == nil {
			fmt.Println(st)
		}
	}
	if out != nil {
		s.setImage(stdimg.ToNRGBA(out))
	}
	s.show(s.cur)
	return nil
}

// PreviewSheet shows the four panes of the last run.
func (s *Session) PreviewSheet() error {
	if s.result == nil {
		return errors.New("nothing to preview; press 'r' first")
	}
	sheet, err := stdimg.ContactSheet(s.source, s.result, DefaultSheetTile)
	if err != nil {
		return err
	}
	return PreviewImage(sheet, "png")
}

// outputs lists what 's' can write.
func (s *Session) outputs() map[string]image.Image {
	m := map[string]image.Image{"current": s.cur}
	if s.result != nil {
		m["smoothed"] = s.result.Smoothed
		m["detail"] = s.result.Detail
		m["enhanced"] = s.result.Enhanced
		if sheet, err := stdimg.ContactSheet(s.source, s.result, DefaultSheetTile); err == nil {
			m["sheet"] = sheet
		}
	}
	return m
}

// Save prompts for what to save and where.
func (s *Session) Save() error {
	if s.cur == nil {
		return errNoImage
	}
	which := "current"
	if s.result != nil {
		w, err := PromptLine("Save which [current/smoothed/detail/enhanced/sheet] (default enhanced): ")
		if err != nil {
			return err
		}
		which = strings.ToLower(w)
		if which == "" {
			which = "enhanced"
		}
	}
	img, ok := s.outputs()[which]
	if !ok {
		return fmt.Errorf("nothing named %q to save", which)
	}
	out, err := PromptLineOrFzf("Enter output filename ('/' to pick an existing file): ")
	if err != nil {
		return err
	}
	if out == "" {
		return errors.New("no filename provided")
	}
	if err := SaveImage(out, img); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("Saved %s to %s\n", which, out)
	return nil
}

func (s *Session) openPrompt() error {
	path, err := SelectFileWithFzf(".")
	if err != nil || path == "" {
		debugf("file picker: %v", err)
		if path, err = PromptLine("Enter path to image to open (leave empty to cancel): "); err != nil {
			return err
		}
		if path == "" {
			fmt.Println("open cancelled")
			return nil
		}
	}
	return s.Open(path)
}

// Handle runs the action bound to key and reports whether to quit.
func (s *Session) Handle(key rune) (quit bool, err error) {
	switch key {
	case 'r':
		return false, s.RunPipeline()
	case 'p':
		return false, s.SetParams()
	case '/':
		if s.cur == nil {
			return false, errNoImage
		}
		name, err := s.chooseCommand()
		if err != nil || name == "" {
			fmt.Println("selection cancelled")
			return false, err
		}
		return false, s.ApplyCommand(name)
	case 'v':
		return false, s.PreviewSheet()
	case 'o':
		return false, s.openPrompt()
	case 's':
		return false, s.Save()
	case 'u':
		return false, RunUpdate(s.ctx)
	case 'h':
		usage()
	case 'q':
		fmt.Println("Exiting...")
		return true, nil
	}
	return false, nil
}

// RunCLI starts the interactive editor, optionally opening inputPath first.
func RunCLI(ctx context.Context, inputPath string, cfg config.Config) error {
	s := NewSession(ctx, cfg)
	if inputPath != "" {
		if err := s.Open(inputPath); err != nil {
			return err
		}
	}
	fmt.Println("Terminal Detail Enhancer")
	usage()
	for {
		fmt.Print("> ")
		r, _, err := stdin.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if r == '\n' || r == '\r' || r == ' ' {
			continue
		}
		// the rest of the line belongs to this key
		rest, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(rest) != "" {
			debugf("ignoring trailing input %q", rest)
		}
		quit, err := s.Handle(r)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
