package gen

import "text/template"

// templateData holds all data needed for the file templates.
type templateData struct {
	Header      string
	PackageName string
	Imports     []importSpec
	Funcs       []funcData
}

var fileTemplate = template.Must(template.New("convert").Parse(`{{.Header}}

package {{.PackageName}}
{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{range .Funcs}}
// {{.Name}} converts {{.SourceDoc}} to {{.TargetDoc}}.
func {{.Name}}(in {{.Source}}) {{.Result}} {
{{.Body}}}
{{end}}`))

var supportTemplate = template.Must(template.New("support").Parse(`{{.Header}}

package {{.PackageName}}

import "errors"

var (
	// ErrMissingValue is returned when a value a conversion requires is nil.
	ErrMissingValue = errors.New("missing value")
	// ErrUnknownVariant is returned for a variant that has no conversion.
	ErrUnknownVariant = errors.New("unknown variant")
)
`))
