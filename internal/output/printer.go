package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Printer writes plain-text progress lines.
// Steps are unindented, details under a step are indented by two spaces.
type Printer struct {
	out     io.Writer
	verbose bool
}

// New creates a printer writing to out
func New(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out}
}

// SetVerbose enables Debugf output
func (p *Printer) SetVerbose(v bool) {
	p.verbose = v
}

// Verbose reports whether debug output is enabled
func (p *Printer) Verbose() bool {
	return p.verbose
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Step prints a top-level progress line
func (p *Printer) Step(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s\n", bold(fmt.Sprintf(format, args...)))
}

// Info prints an indented detail line
func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "  %s\n", fmt.Sprintf(format, args...))
}

// Success prints an indented line with a check mark
func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "  %s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// Warn prints an indented warning line
func (p *Printer) Warn(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "  %s %s\n", yellow("!"), fmt.Sprintf(format, args...))
}

// Fail prints an indented failure line
func (p *Printer) Fail(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "  %s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

// Debugf prints only when verbose output is enabled
func (p *Printer) Debugf(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "    %s\n", fmt.Sprintf(format, args...))
}
