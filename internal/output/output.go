package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"convert-generator/internal/diagnostic"
)

// Printer writes styled messages to one writer.
type Printer struct {
	w       io.Writer
	verbose bool

	success lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	info    lipgloss.Style
	step    lipgloss.Style
	code    lipgloss.Style
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)

	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("green")).Bold(true),
		err:     r.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("cyan")),
		step:    r.NewStyle().Foreground(lipgloss.Color("240")),
		code:    r.NewStyle().Faint(true),
	}
}

// SetVerbose enables or disables Verbose messages.
func (p *Printer) SetVerbose(v bool) {
	p.verbose = v
}

// Success prints a completed operation.
//
// Example:
//
//	out.Success("Wrote 3 files")
func (p *Printer) Success(msg string) {
	p.println(p.success.Render("✔ " + msg))
}

// Error prints a failure that needs user attention.
func (p *Printer) Error(msg string) {
	p.println(p.err.Render("✘ " + msg))
}

// Info prints a status update.
func (p *Printer) Info(msg string) {
	p.println(p.info.Render("ℹ " + msg))
}

// Step prints an indented sub-item, such as a written file.
func (p *Printer) Step(msg string) {
	p.println(p.step.Render("   " + msg))
}

// Verbose prints a debug message only if verbose mode is enabled.
func (p *Printer) Verbose(msg string) {
	if p.verbose {
		p.println(p.step.Render("… " + msg))
	}
}

// Diagnostics prints every diagnostic, errors first and each severity in
// source order, followed by a one-line summary. Infos are only shown in
// verbose mode.
func (p *Printer) Diagnostics(d diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		if diag.Severity == diagnostic.DiagnosticInfo && !p.verbose {
			continue
		}

		p.println(p.Format(diag))
	}

	if d.Len() == 0 {
		return
	}

	summary := fmt.Sprintf("%s, %s", plural(len(d.Errors), "error"), plural(len(d.Warnings), "warning"))
	if d.HasErrors() {
		p.Error(summary)
	} else {
		p.Info(summary)
	}
}

// Format renders one diagnostic as
//
//	file.go:12:3: error[unmapped_target_field] Order.Title: message
//	   did you mean Titel?
func (p *Printer) Format(d diagnostic.Diagnostic) string {
	var sb strings.Builder

	if d.Pos.IsValid() {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}

	label := d.Severity.String()
	if d.Code != "" {
		label += "[" + d.Code + "]"
	}

	switch d.Severity {
	case diagnostic.DiagnosticError:
		sb.WriteString(p.err.Render(label))
	case diagnostic.DiagnosticWarning:
		sb.WriteString(p.warn.Render(label))
	default:
		sb.WriteString(p.info.Render(label))
	}

	location := d.FieldPath
	if location == "" {
		location = d.TypeName
	}

	if location != "" {
		sb.WriteString(" ")
		sb.WriteString(p.code.Render(location))
	}

	sb.WriteString(": ")
	sb.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.step.Render("   did you mean " + strings.Join(d.Suggestions, " or ") + "?"))
	}

	return sb.String()
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return fmt.Sprintf("%d %ss", n, word)
}
