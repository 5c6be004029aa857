// Package stdimg: authoritative registry of engine commands.
//
// This file mirrors the commands implemented in ApplyCommandContext in
// pkg/stdimg/engine.go. Keep this list up-to-date when you add or
// modify commands so callers (CLI, docs, help text) can read a single
// source of truth.

package stdimg

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI; Min/Max are enforced by the engine
// and the CLI.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "bool", "string", "path", etc.
	Required    bool
	Default     string // textual default (for help only)
	Description string
	Min         *float64
	Max         *float64
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

func bound(v float64) *float64 { return &v }

// Commands is the authoritative list of commands implemented by the engine.
var Commands = buildCommands(DefaultLimits())

func buildCommands(l Limits) []CommandSpec {
	sigmaSpace := ArgSpec{"sigmaSpace", "float", true, "5", "spatial sigma in pixels (radius = ceil(3*sigma))", bound(l.SigmaSpace.Min), bound(l.SigmaSpace.Max)}
	sigmaRange := ArgSpec{"sigmaRange", "float", true, "25", "colour sigma in channel units", bound(l.SigmaRange.Min), bound(l.SigmaRange.Max)}
	scaling := ArgSpec{"scaling", "float", true, "2", "detail amplification", bound(l.Scaling.Min), bound(l.Scaling.Max)}

	return []CommandSpec{
		{
			Name:        "bilateral",
			Args:        []ArgSpec{sigmaSpace, sigmaRange},
			Usage:       "bilateral <sigmaSpace> <sigmaRange>",
			Description: "Edge-preserving bilateral smoothing.",
		},
		{
			Name:        "detail",
			Args:        []ArgSpec{sigmaSpace, sigmaRange},
			Usage:       "detail <sigmaSpace> <sigmaRange>",
			Description: "Detail layer (128 + original - bilateral), grey where flat.",
		},
		{
			Name:        "enhance",
			Args:        []ArgSpec{sigmaSpace, sigmaRange, scaling},
			Usage:       "enhance <sigmaSpace> <sigmaRange> <scaling>",
			Description: "Bilateral base plus amplified detail.",
		},
		{
			Name:        "blur",
			Args:        []ArgSpec{{"sigma", "float", true, "", "gaussian sigma", bound(l.BlurSigma.Min), bound(l.BlurSigma.Max)}},
			Usage:       "blur <sigma>",
			Description: "Separable Gaussian blur of the colour channels.",
		},
		{
			Name: "unsharp",
			Args: []ArgSpec{
				{"sigma", "float", true, "", "gaussian sigma", bound(l.BlurSigma.Min), bound(l.BlurSigma.Max)},
				{"amount", "float", false, "1.0", "sharpen amount (0 = unchanged)", bound(0), bound(l.Scaling.Max - 1)},
			},
			Usage:       "unsharp <sigma> [amount]",
			Description: "Unsharp mask: Gaussian base plus amplified detail.",
		},
		{
			Name:        "resize",
			Args:        []ArgSpec{{"width", "int", true, "", "output width", bound(1), nil}, {"height", "int", true, "", "output height", bound(1), nil}},
			Usage:       "resize <width> <height>",
			Description: "Resize image using Lanczos resampling.",
		},
		{
			Name:        "identify",
			Args:        []ArgSpec{},
			Usage:       "identify",
			Description: "Print image dimensions; returns nil image.",
		},
	}
}
