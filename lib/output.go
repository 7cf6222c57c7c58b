package lib

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgHiGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgHiRed)
)

// Reporter prints the user facing status lines.
// Info and success go to Out, warnings and errors to Err.
type Reporter struct {
	Out io.Writer
	Err io.Writer
}

func (r Reporter) Info(format string, a ...any) {
	r.print(r.Out, infoColor.Sprint("[INFO]"), format, a...)
}

func (r Reporter) Success(format string, a ...any) {
	r.print(r.Out, successColor.Sprint("[SUCCESS]"), format, a...)
}

func (r Reporter) Warn(format string, a ...any) {
	r.print(r.Err, warnColor.Sprint("[WARN]"), format, a...)
}

func (r Reporter) Error(format string, a ...any) {
	r.print(r.Err, errorColor.Sprint("[ERROR]"), format, a...)
}

func (r Reporter) print(w io.Writer, prefix string, format string, a ...any) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}
