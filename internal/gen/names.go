package gen

import (
	"convert-generator/internal/analyze"
	"convert-generator/internal/common"
	"convert-generator/internal/plan"
)

// FunctionName returns the name of the function generated for p, e.g.
// "OrderToDtoOrder" or "TryDtoOrderToOrder". The package prefix is omitted
// for types of the annotated package.
func FunctionName(p *plan.ConversionPlan, falliblePrefix string) string {
	local := p.Schema.ID.PkgPath

	name := typePart(p.Source(), local) + "To" + typePart(p.Target(), local)
	if p.Fallible() {
		name = falliblePrefix + name
	}

	return name
}

func typePart(id analyze.TypeID, local string) string {
	if id.PkgPath == local {
		return id.Name
	}

	return common.Capitalize(common.PkgAlias(id.PkgPath)) + id.Name
}

// filename returns the generated file name of an annotated type.
func filename(schema *analyze.TypeSchema, suffix string) string {
	return common.SnakeCase(schema.ID.Name) + suffix
}
