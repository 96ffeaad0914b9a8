package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Summary describes a finished export.
type Summary struct {
	OutputDir   string
	ContentDir  string
	Directories int
	Documents   int
	Files       int
	Bytes       int64
	Assets      int
	Warnings    []string
	Duration    time.Duration
}

// Print writes a human-readable summary to w. Colors are used only when w is a terminal.
func (s *Summary) Print(w io.Writer) {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	ok := color.New(color.FgGreen, color.Bold)
	label := color.New(color.Faint)
	warn := color.New(color.FgYellow)
	for _, c := range []*color.Color{ok, label, warn} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	_, _ = ok.Fprintf(w, "Export complete")
	_, _ = fmt.Fprintf(w, " in %s\n", s.Duration.Round(time.Millisecond))
	_, _ = label.Fprint(w, "  output:    ")
	_, _ = fmt.Fprintln(w, s.OutputDir)
	_, _ = label.Fprint(w, "  content:   ")
	_, _ = fmt.Fprintf(w, "%s/ (%d files, %s)\n", s.ContentDir, s.Files, formatBytes(s.Bytes))
	_, _ = label.Fprint(w, "  documents: ")
	_, _ = fmt.Fprintf(w, "%d in %d folders\n", s.Documents, s.Directories)
	_, _ = label.Fprint(w, "  assets:    ")
	_, _ = fmt.Fprintf(w, "%d\n", s.Assets)
	for _, warning := range s.Warnings {
		_, _ = warn.Fprintf(w, "  warning: %s\n", warning)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
