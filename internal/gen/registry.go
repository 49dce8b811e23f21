package gen

import (
	"go/types"

	"convert-generator/internal/analyze"
	"convert-generator/internal/plan"
)

// converter is a function generated in this run.
type converter struct {
	Name     string
	PkgPath  string
	PkgName  string
	Fallible bool
}

type pairKey struct {
	source analyze.TypeID
	target analyze.TypeID
}

// registry indexes the conversions of one run by their (source, target)
// named types so that nested values can be converted by calling them.
type registry struct {
	infallible map[pairKey]converter
	fallible   map[pairKey]converter
}

func newRegistry(plans []*plan.ConversionPlan, falliblePrefix string) *registry {
	r := &registry{
		infallible: make(map[pairKey]converter),
		fallible:   make(map[pairKey]converter),
	}

	for _, p := range plans {
		key := pairKey{source: p.Source(), target: p.Target()}
		c := converter{
			Name:     FunctionName(p, falliblePrefix),
			PkgPath:  p.Schema.ID.PkgPath,
			PkgName:  p.Schema.PkgName,
			Fallible: p.Fallible(),
		}

		if c.Fallible {
			r.fallible[key] = c
		} else {
			r.infallible[key] = c
		}
	}

	return r
}

// lookup finds a conversion between two named types. Infallible conversions
// are preferred; fallible ones are only usable from a fallible context.
func (r *registry) lookup(source, target types.Type, fallible bool) (converter, bool) {
	src, ok := namedID(source)
	if !ok {
		return converter{}, false
	}

	dst, ok := namedID(target)
	if !ok {
		return converter{}, false
	}

	key := pairKey{source: src, target: dst}

	if c, ok := r.infallible[key]; ok {
		return c, true
	}

	if fallible {
		c, ok := r.fallible[key]

		return c, ok
	}

	return converter{}, false
}

func namedID(t types.Type) (analyze.TypeID, bool) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return analyze.TypeID{}, false
	}

	return analyze.TypeID{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()}, true
}
