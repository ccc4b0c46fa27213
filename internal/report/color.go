package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme holds the color functions used by table output.
type ColorScheme struct {
	Name     func(format string, a ...interface{}) string
	Success  func(format string, a ...interface{}) string
	Error    func(format string, a ...interface{}) string
	Header   func(format string, a ...interface{}) string
	Duration func(format string, a ...interface{}) string
	Disabled bool
}

// NewColorScheme returns a scheme for w. Colors are off for non-TTY writers
// or when noColor is set.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	if noColor || !isTTY(w) {
		plain := fmt.Sprintf
		return &ColorScheme{
			Name:     plain,
			Success:  plain,
			Error:    plain,
			Header:   plain,
			Duration: plain,
			Disabled: true,
		}
	}
	return &ColorScheme{
		Name:     color.New(color.FgCyan, color.Bold).Sprintf,
		Success:  color.New(color.FgGreen).Sprintf,
		Error:    color.New(color.FgRed, color.Bold).Sprintf,
		Header:   color.New(color.FgWhite, color.Bold).Sprintf,
		Duration: color.New(color.FgBlue).Sprintf,
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Status colors a passed/failed marker.
func (cs *ColorScheme) Status(passed bool) string {
	if passed {
		return cs.Success("%s", status(passed))
	}
	return cs.Error("%s", status(passed))
}
