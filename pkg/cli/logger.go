package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the CLI's diagnostic logger. It writes to stderr so image
// escape sequences on stdout stay intact.
var Logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

func prefix() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#7C3AED")).
		Bold(true).
		Padding(0, 1).
		Render("detailenhance")
}

// InitLogger configures Logger; debug adds timestamps, caller and debug level.
func InitLogger(debug bool) {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: debug,
		TimeFormat:      "15:04:05",
		Prefix:          prefix(),
	})
	Logger.SetColorProfile(termenv.ANSI256)
	if debug {
		Logger.SetLevel(log.DebugLevel)
		Logger.Debug("debug logging enabled")
		return
	}
	Logger.SetLevel(log.InfoLevel)
}

func debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}
