package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlanDocument is the YAML form of a set of conversion plans, printed by the
// plan command.
type PlanDocument struct {
	Version     string          `yaml:"version"`
	Conversions []ConversionDoc `yaml:"conversions"`
}

// ConversionDoc describes one conversion plan.
type ConversionDoc struct {
	Method      string       `yaml:"method"`
	Source      string       `yaml:"source"`
	Target      string       `yaml:"target"`
	Fallible    bool         `yaml:"fallible,omitempty"`
	DefaultFill bool         `yaml:"default_fill,omitempty"`
	Fields      []FieldDoc   `yaml:"fields,omitempty"`
	Variants    []VariantDoc `yaml:"variants,omitempty"`
}

// FieldDoc describes one field plan.
type FieldDoc struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Method   string `yaml:"method"`
	Shape    string `yaml:"shape,omitempty"`
	WithFunc string `yaml:"with_func,omitempty"`
}

// VariantDoc describes one variant plan.
type VariantDoc struct {
	Source  string     `yaml:"source"`
	Target  string     `yaml:"target"`
	Style   string     `yaml:"style"`
	Pointer bool       `yaml:"pointer,omitempty"`
	Fields  []FieldDoc `yaml:"fields,omitempty"`
}

// Export builds the document form of plans, in the order given.
func Export(plans []*ConversionPlan) *PlanDocument {
	doc := &PlanDocument{
		Version:     "1",
		Conversions: make([]ConversionDoc, 0, len(plans)),
	}

	for _, p := range plans {
		doc.Conversions = append(doc.Conversions, exportConversion(p))
	}

	return doc
}

// ExportYAML renders plans as YAML.
func ExportYAML(plans []*ConversionPlan) ([]byte, error) {
	out, err := yaml.Marshal(Export(plans))
	if err != nil {
		return nil, fmt.Errorf("marshal plans: %w", err)
	}

	return out, nil
}

func exportConversion(p *ConversionPlan) ConversionDoc {
	cd := ConversionDoc{
		Method:      p.Conversion.Method.String(),
		Source:      p.Source().String(),
		Target:      p.Target().String(),
		Fallible:    p.Fallible(),
		DefaultFill: p.DefaultFill(),
		Fields:      exportFields(p.Fields),
	}

	for _, v := range p.Variants {
		cd.Variants = append(cd.Variants, VariantDoc{
			Source:  v.Source,
			Target:  v.Target,
			Style:   v.Style.String(),
			Pointer: v.Pointer,
			Fields:  exportFields(v.Fields),
		})
	}

	return cd
}

func exportFields(fields []FieldPlan) []FieldDoc {
	if len(fields) == 0 {
		return nil
	}

	out := make([]FieldDoc, 0, len(fields))

	for _, f := range fields {
		fd := FieldDoc{
			Source: f.Source.String(),
			Target: f.Target.String(),
			Method: f.Method.String(),
		}

		if f.Method != MethodDefault && f.Method != MethodCustom {
			fd.Shape = f.Shape.String()
		}

		if !f.WithFunc.IsZero() {
			fd.WithFunc = f.WithFunc.String()
		}

		out = append(out, fd)
	}

	return out
}

// FormatReport renders plans as a short human-readable summary, one block
// per conversion.
func FormatReport(plans []*ConversionPlan) string {
	var sb strings.Builder

	for _, p := range plans {
		fmt.Fprintf(&sb, "=== %s: %s -> %s ===\n", p.Conversion.Method, p.Source(), p.Target())

		for _, f := range p.Fields {
			writeField(&sb, "  ", f)
		}

		for _, v := range p.Variants {
			fmt.Fprintf(&sb, "  %s -> %s (%s)\n", v.Source, v.Target, v.Style)

			for _, f := range v.Fields {
				writeField(&sb, "    ", f)
			}
		}
	}

	return sb.String()
}

func writeField(sb *strings.Builder, indent string, f FieldPlan) {
	fmt.Fprintf(sb, "%s%s -> %s [%s]", indent, f.Source, f.Target, f.Method)

	if !f.WithFunc.IsZero() {
		fmt.Fprintf(sb, " %s", f.WithFunc)
	}

	sb.WriteString("\n")
}
