package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed by the CLI before long-running commands
const Banner = `
 ╔══════════════════════════════════════════╗
 ║   INSTASCRAPER - profile data collector  ║
 ╚══════════════════════════════════════════╝
`

var (
	cyan    = lipgloss.Color("#00FFFF")
	yellow  = lipgloss.Color("#FFFF00")
	red     = lipgloss.Color("#FF3B3B")
	green   = lipgloss.Color("#39FF14")
	magenta = lipgloss.Color("#FF00FF")
	dim     = lipgloss.Color("#B0B0B0")

	labelStyle     = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(yellow)
	errorStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(yellow)
	highlightStyle = lipgloss.NewStyle().Foreground(magenta).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(dim)
)

// Printer writes styled status lines. Quiet printers drop everything but
// errors.
type Printer struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

// NewPrinter creates a printer writing to out and errors to errOut
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Stdout returns a printer for the process streams
func Stdout() *Printer {
	return NewPrinter(os.Stdout, os.Stderr)
}

// SetQuiet suppresses all non-error output
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Banner prints the application banner
func (p *Printer) Banner() {
	p.println(labelStyle.Render(Banner))
}

// Error prints an error message with an optional detail
func (p *Printer) Error(msg string, detail ...interface{}) {
	fmt.Fprintln(p.err, errorStyle.Render(withDetail(msg, detail)))
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	p.println(successStyle.Render(msg))
}

// Info prints a label/value pair
func (p *Printer) Info(label, value string) {
	p.println(labelStyle.Render(label+":") + " " + valueStyle.Render(value))
}

// Warning prints a warning with an optional detail
func (p *Printer) Warning(msg string, detail ...interface{}) {
	p.println(warningStyle.Render(withDetail(msg, detail)))
}

// Highlight prints an emphasized line
func (p *Printer) Highlight(msg string) {
	p.println(highlightStyle.Render(msg))
}

// Dim prints a de-emphasized line
func (p *Printer) Dim(msg string) {
	p.println(dimStyle.Render(msg))
}

func (p *Printer) println(s string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, s)
}

func withDetail(msg string, detail []interface{}) string {
	if len(detail) == 0 || detail[0] == nil || detail[0] == "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, detail[0])
}
