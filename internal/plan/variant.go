package plan

import (
	"fmt"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/directive"
)

// resolveVariants builds the plans of every variant kept by conv. Errors of
// one variant are reported without stopping its siblings; the returned bool
// is false when any variant failed.
func (tr *typeResolution) resolveVariants(conv directive.Conversion) ([]VariantPlan, bool) {
	ok := true

	var plans []VariantPlan

	for i := range tr.schema.Variants {
		v := &tr.schema.Variants[i]

		eff := tr.variantDirs[i].Effective(conv.Method, conv.Target)
		if eff.Skip {
			tr.skippedVariant(conv, v)

			continue
		}

		other := v.Name
		if eff.Rename != "" {
			other = eff.Rename
		}

		vp := VariantPlan{
			Source:  v.Name,
			Target:  other,
			Style:   v.Style,
			Pointer: v.Pointer,
			Variant: v,
		}

		if conv.Method.Reverse() {
			vp.Source, vp.Target = other, v.Name
		}

		fields, fieldsOK := tr.buildFields(conv, v.Fields, tr.variantFieldDirs[i],
			analyze.NewTypePath(v.Name))
		if !fieldsOK {
			ok = false

			continue
		}

		vp.Fields = fields
		plans = append(plans, vp)
	}

	return plans, ok
}

// skippedVariant notes that v has no case in conv. Converting such a value
// panics, or fails with ErrUnknownVariant in a fallible conversion.
func (tr *typeResolution) skippedVariant(conv directive.Conversion, v *analyze.VariantSchema) {
	outcome := "panics"
	if conv.Method.Fallible() {
		outcome = "returns ErrUnknownVariant"
	}

	tr.diags.AddInfo(diagnostic.CodeVariantSkipped,
		fmt.Sprintf("variant %s is skipped in %s %s: converting it %s", v.Name, conv.Method, conv.Target, outcome),
		tr.schema.ID.Short(), v.Name)
}
