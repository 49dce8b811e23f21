package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"

	"convert-generator/internal/common"
)

// Diagnostics holds all diagnostic information from one generator run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Category tells how far the failure reaches.
	Category Category
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypeName identifies the annotated type this relates to (if any).
	TypeName string
	// FieldPath identifies which field or variant this relates to (if any).
	FieldPath string
	// Pos is the source location the finding is attached to.
	Pos token.Position
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Category classifies errors by their blast radius.
type Category int

const (
	// CategoryResolution is local to one field or variant; siblings still resolve.
	CategoryResolution Category = iota
	// CategoryStructural is fatal to the whole annotated type.
	CategoryStructural
	// CategoryDeferred is detected after planning, when code is emitted.
	CategoryDeferred
	// CategoryLoad comes from loading or parsing Go packages.
	CategoryLoad
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryResolution:
		return "resolution"
	case CategoryStructural:
		return "structural"
	case CategoryDeferred:
		return "deferred"
	case CategoryLoad:
		return "load"
	default:
		return common.UnknownStr
	}
}

// Add appends d to the bucket matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds a resolution error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, fieldPath string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:  DiagnosticError,
		Category:  CategoryResolution,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// AddErrorAt adds an error diagnostic attached to a source position.
func (d *Diagnostics) AddErrorAt(
	pos token.Position,
	category Category,
	code, message, typeName, fieldPath string,
	suggestions ...string,
) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:    DiagnosticError,
		Category:    category,
		Code:        code,
		Message:     message,
		TypeName:    typeName,
		FieldPath:   fieldPath,
		Pos:         pos,
		Suggestions: suggestions,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldPath string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:  DiagnosticWarning,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typeName, fieldPath string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity:  DiagnosticInfo,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasStructural reports whether any error is fatal to its type.
func (d *Diagnostics) HasStructural() bool {
	for _, e := range d.Errors {
		if e.Category == CategoryStructural {
			return true
		}
	}

	return false
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Len returns the total number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns every diagnostic, errors first, each bucket sorted by position.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	for _, bucket := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		sorted := append([]Diagnostic(nil), bucket...)
		sortByPos(sorted)
		all = append(all, sorted...)
	}

	return all
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pos.IsValid() {
		prefix = append(prefix, d.Pos.String()+":")
	}

	if d.TypeName != "" {
		prefix = append(prefix, "["+d.TypeName+"]")
	}

	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(d.Suggestions, " or "))
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

func sortByPos(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i].Pos, ds[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}

		if a.Line != b.Line {
			return a.Line < b.Line
		}

		return a.Column < b.Column
	})
}
