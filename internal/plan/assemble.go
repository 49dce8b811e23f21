package plan

import (
	"fmt"

	"convert-generator/internal/analyze"
	"convert-generator/internal/directive"
)

// Assemble turns built field or variant plans into the final ConversionPlan.
//
// Skipped field plans are dropped unless they also carry default, in which
// case they stay as Default plans. The remaining plans are put in emission
// order.
func Assemble(
	conv directive.Conversion,
	schema *analyze.TypeSchema,
	fields []FieldPlan,
	variants []VariantPlan,
) (*ConversionPlan, error) {
	p := &ConversionPlan{
		Conversion: conv,
		Schema:     schema,
	}

	var err error

	switch schema.Kind {
	case analyze.KindRecord:
		p.Fields, err = finishFields(fields)
		if err != nil {
			return nil, err
		}
	case analyze.KindSum:
		p.Variants = make([]VariantPlan, 0, len(variants))

		for _, v := range variants {
			v.Fields, err = finishFields(v.Fields)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Source, err)
			}

			p.Variants = append(p.Variants, v)
		}
	default:
		return nil, fmt.Errorf("cannot assemble a conversion for a %s type", schema.Kind)
	}

	return p, nil
}

func finishFields(fields []FieldPlan) ([]FieldPlan, error) {
	kept := make([]FieldPlan, 0, len(fields))

	for _, f := range fields {
		if f.Skip && !f.Default {
			continue
		}

		kept = append(kept, f)
	}

	return orderFields(kept)
}
