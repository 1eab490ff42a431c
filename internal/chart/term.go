package chart

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
)

var kindColors = map[Kind]string{
	KindBar:  "\x1b[36m",
	KindLine: "\x1b[33m",
}

// TerminalWidth returns the stdout width or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset. force skips the
// terminal check.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Colorize wraps a rendered chart in its kind color.
func Colorize(c Chart, rendered string) string {
	code, ok := kindColors[c.Kind()]
	if !ok || rendered == "" {
		return rendered
	}
	return code + rendered + colorReset
}

// SideBySideWidth splits total columns between n charts with a gap, never below minWidth.
func SideBySideWidth(total, n, gap int) int {
	if n <= 0 {
		return 0
	}
	w := (total - gap*(n-1)) / n
	if w < minWidth {
		return minWidth
	}
	return w
}
