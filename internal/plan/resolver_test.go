package plan

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/directive"
)

func TestResolve_RecordScenario(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("try_into", "path=dto.Record")},
		field("Normal", "*uint8", "unwrap"),
		field("Opt", "*uint8"),
		field("Vec", "[]uint8"),
		field("OldName", "uint16", "rename=RenamedField"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 1)

	p := res.Plans[0]
	assert.Equal(t, directive.TryInto, p.Conversion.Method)
	assert.True(t, p.Fallible())
	assert.False(t, p.DefaultFill())
	assert.Equal(t, schema.ID, p.Source())
	assert.Equal(t, analyze.TypeID{PkgPath: "example.com/dto", Name: "Record"}, p.Target())

	require.Len(t, p.Fields, 4, spew.Sdump(p.Fields))
	assert.Equal(t, []string{"Normal", "Opt", "Vec", "RenamedField"}, targets(p.Fields))
	assert.Equal(t, MethodUnwrapOption, p.Fields[0].Method)
	assert.Equal(t, MethodOption, p.Fields[1].Method)
	assert.Equal(t, MethodSequence, p.Fields[2].Method)
	assert.Equal(t, MethodPlain, p.Fields[3].Method)
	assert.Equal(t, "OldName", p.Fields[3].Source.String())
}

func TestResolve_ReverseSwapsTypesAndNames(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("from", "path=dto.Record")},
		field("OldName", "uint16", "rename=RenamedField"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 1)

	p := res.Plans[0]
	assert.Equal(t, schema.ID, p.Target())
	assert.Equal(t, "example.com/dto.Record", p.Source().String())
	assert.Equal(t, "RenamedField", p.Fields[0].Source.String())
	assert.Equal(t, "OldName", p.Fields[0].Target.String())
}

func TestResolve_PriorityAcrossScopes(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{
			conv("into", "path=dto.A"),
			conv("into", "path=dto.B"),
			conv("from", "path=dto.A"),
		},
		field("Name", "string", "rename=Global, into(rename=Method), into(path=dto.A, rename=ForA)"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 3)

	assert.Equal(t, "ForA", res.Plans[0].Fields[0].Target.String())
	assert.Equal(t, "Method", res.Plans[1].Fields[0].Target.String())
	assert.Equal(t, "Global", res.Plans[2].Fields[0].Source.String())
}

func TestResolve_MultiplePathsPerMethod(t *testing.T) {
	schema := record("Source",
		[]analyze.TypeDirective{
			conv("into", "path=dto.TargetA"),
			conv("into", "path=dto.TargetB"),
		},
		field("Value", "int", "into(path=dto.TargetA, rename=A), into(path=dto.TargetB, rename=B)"),
		field("Shared", "int"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 2)

	assert.Equal(t, dtoPath("TargetA"), res.Plans[0].Conversion.Target)
	assert.Equal(t, []string{"A", "Shared"}, targets(res.Plans[0].Fields))
	assert.Equal(t, dtoPath("TargetB"), res.Plans[1].Conversion.Target)
	assert.Equal(t, []string{"B", "Shared"}, targets(res.Plans[1].Fields))
}

func TestResolve_SkipMonotonicity(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{
			conv("into", "path=dto.Record"),
			conv("try_from", "path=dto.Record"),
		},
		field("Secret", "string", "skip, into(path=dto.Record, rename=Other, unwrap, skip=false)"),
		field("Kept", "string"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 2)

	for _, p := range res.Plans {
		assert.Equal(t, []string{"Kept"}, targets(p.Fields), p.Conversion.Method.String())
	}
}

func TestResolve_SkipWithDefaultKeepsDefaultPlan(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("from", "path=dto.Record")},
		field("Cache", "map[string]int", "from(skip, default)"),
		field("ID", "int"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 1)

	fields := res.Plans[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, MethodDefault, fields[0].Method)
	assert.True(t, fields[0].Skip)
}

func TestResolve_PathScopedSkipOnlyForThatTarget(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{
			conv("try_into", "path=dto.Record"),
			conv("try_into", "path=dto.Other"),
		},
		field("Internal", "int", "try_into(path=dto.Other, skip)"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 2)

	assert.Len(t, res.Plans[0].Fields, 1)
	assert.Empty(t, res.Plans[1].Fields)
}

func TestResolve_OrderingContract(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("into", "path=dto.Record")},
		field("A", "int"),
		field("Total", "int", "with_func=computeTotal"),
		field("B", "[]int"),
		field("Label", "string", "with_func=dto.Label"),
		field("C", "*int"),
	)

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 1)

	fields := res.Plans[0].Fields
	assert.Equal(t, []string{"Total", "Label", "A", "B", "C"}, targets(fields))
	assert.Equal(t, directive.Path{PkgPath: testPkg, Name: "computeTotal"}, fields[0].WithFunc)
	assert.Equal(t, dtoPath("Label"), fields[1].WithFunc)
}

func TestResolve_UnwrapErrorIsFieldLocal(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{
			conv("into", "path=dto.Record"),
			conv("from", "path=dto.Record"),
		},
		field("Count", "int", "unwrap"),
		field("Name", "string"),
	)

	res := Resolve(schema, DefaultConfig())
	require.Len(t, res.Diagnostics.Errors, 1, spew.Sdump(res.Diagnostics.Errors))

	d := res.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeUnwrapNonOptional, d.Code)
	assert.Equal(t, diagnostic.CategoryResolution, d.Category)
	assert.Equal(t, "Count", d.FieldPath)
	assert.Equal(t, "store.Record", d.TypeName)
	assert.Equal(t, "store.go", d.Pos.Filename)

	// The reverse conversion resolves: the other side is the optional one.
	require.Len(t, res.Plans, 1)
	assert.Equal(t, directive.From, res.Plans[0].Conversion.Method)
	assert.Equal(t, MethodUnwrapOption, res.Plans[0].Fields[0].Method)
}

func TestResolve_MalformedDirectiveDropsAffectedConversions(t *testing.T) {
	t.Run("method scope", func(t *testing.T) {
		schema := record("Record",
			[]analyze.TypeDirective{conv("into", "path=dto.Record"), conv("from", "path=dto.Record")},
			field("A", "int", "into(renam=B)"),
			field("C", "int"),
		)

		res := Resolve(schema, DefaultConfig())
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeUnknownKey, res.Diagnostics.Errors[0].Code)

		require.Len(t, res.Plans, 1)
		assert.Equal(t, directive.From, res.Plans[0].Conversion.Method)
		assert.Equal(t, []string{"A", "C"}, targets(res.Plans[0].Fields))
	})

	t.Run("path scope", func(t *testing.T) {
		schema := record("Record",
			[]analyze.TypeDirective{conv("into", "path=dto.A"), conv("into", "path=dto.B")},
			field("X", "int", "into(path=dto.A, unwrap=maybe)"),
		)

		res := Resolve(schema, DefaultConfig())
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeMalformedDirective, res.Diagnostics.Errors[0].Code)

		require.Len(t, res.Plans, 1)
		assert.Equal(t, dtoPath("B"), res.Plans[0].Conversion.Target)
	})

	t.Run("variant directive", func(t *testing.T) {
		schema := sum("Shape",
			[]analyze.TypeDirective{conv("into", "path=dto.Shape"), conv("from", "path=dto.Shape")},
			analyze.VariantSchema{Name: "Circle", Style: analyze.StyleUnit, Directives: raws("from(renam=Round)")},
		)

		res := Resolve(schema, DefaultConfig())
		require.Len(t, res.Diagnostics.Errors, 1)
		require.Len(t, res.Plans, 1)
		assert.Equal(t, directive.Into, res.Plans[0].Conversion.Method)
	})
}

func TestResolve_MalformedDirectiveBlocksType(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("into", "path=dto.Record")},
		field("A", "int", "renam=B"),
		field("C", "int", "into(skip"),
	)

	res := Resolve(schema, DefaultConfig())
	assert.Empty(t, res.Plans)
	require.Len(t, res.Diagnostics.Errors, 2)
	assert.Equal(t, diagnostic.CodeUnknownKey, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, []string{"rename"}, res.Diagnostics.Errors[0].Suggestions)
	assert.Equal(t, diagnostic.CodeMalformedDirective, res.Diagnostics.Errors[1].Code)
}

func TestResolve_ConversionDirectiveErrors(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{
			conv("into", "path=dto.Record"),
			conv("into", "path=dto.Record"),
			conv("into", "path=dto.Record"),
			conv("intoo", "path=dto.Record"),
			conv("field", "skip"),
			conv("from", "default"),
		},
		field("A", "int"),
	)

	res := Resolve(schema, DefaultConfig())
	require.Len(t, res.Plans, 1)
	require.Len(t, res.Diagnostics.Errors, 4, spew.Sdump(res.Diagnostics.Errors))

	codes := make([]string, 0, 4)
	for _, d := range res.Diagnostics.Errors {
		codes = append(codes, d.Code)
	}

	assert.Equal(t, []string{
		diagnostic.CodeDuplicateConversion,
		diagnostic.CodeUnknownKey,
		diagnostic.CodeMalformedDirective,
		diagnostic.CodeMalformedDirective,
	}, codes)
	assert.Equal(t, []string{"into"}, res.Diagnostics.Errors[1].Suggestions)
}

func TestResolve_StructuralErrors(t *testing.T) {
	t.Run("default fill on positional record", func(t *testing.T) {
		schema := record("Cents",
			[]analyze.TypeDirective{conv("into", "path=dto.Cents default"), conv("from", "path=dto.Cents")},
			positionalField("int64"),
		)
		schema.Style = analyze.StylePositional

		res := Resolve(schema, DefaultConfig())
		assert.Empty(t, res.Plans)
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeDefaultFillPosition, res.Diagnostics.Errors[0].Code)
		assert.Equal(t, diagnostic.CategoryStructural, res.Diagnostics.Errors[0].Category)
		assert.True(t, res.Diagnostics.HasStructural())
	})

	t.Run("unsupported kind", func(t *testing.T) {
		schema := record("Generic", []analyze.TypeDirective{conv("into", "path=dto.Generic")})
		schema.Kind = analyze.KindUnsupported

		res := Resolve(schema, DefaultConfig())
		assert.Empty(t, res.Plans)
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeUnsupportedKind, res.Diagnostics.Errors[0].Code)
	})

	t.Run("empty sum", func(t *testing.T) {
		res := Resolve(sum("Shape", []analyze.TypeDirective{conv("into", "path=dto.Shape")}), DefaultConfig())
		assert.Empty(t, res.Plans)
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeEmptySum, res.Diagnostics.Errors[0].Code)
	})

	t.Run("unknown variant style", func(t *testing.T) {
		schema := sum("Shape", []analyze.TypeDirective{conv("into", "path=dto.Shape")},
			analyze.VariantSchema{Name: "Circle", Style: analyze.StyleNamed},
			analyze.VariantSchema{Name: "Weird", Style: analyze.StyleUnknown},
		)

		res := Resolve(schema, DefaultConfig())
		assert.Empty(t, res.Plans)
		require.Len(t, res.Diagnostics.Errors, 1)
		assert.Equal(t, diagnostic.CodeUnknownVariantStyle, res.Diagnostics.Errors[0].Code)
	})
}

func TestResolve_PositionalRecord(t *testing.T) {
	schema := record("Celsius",
		[]analyze.TypeDirective{conv("into", "path=dto.Celsius"), conv("try_from", "path=dto.Celsius")},
		positionalField("*float64", "try_from(unwrap)"),
	)
	schema.Style = analyze.StylePositional

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 2)

	assert.Equal(t, MethodOption, res.Plans[0].Fields[0].Method)
	assert.Equal(t, MethodSomeOption, res.Plans[1].Fields[0].Method)
	assert.True(t, res.Plans[1].Fields[0].Target.IsPositional())
}

func TestResolve_RenamePositionalReportedOnce(t *testing.T) {
	schema := record("Celsius",
		[]analyze.TypeDirective{conv("into", "path=dto.Celsius"), conv("from", "path=dto.Celsius")},
		positionalField("float64", "rename=Degrees"),
	)
	schema.Style = analyze.StylePositional

	res := Resolve(schema, DefaultConfig())
	assert.Empty(t, res.Plans)
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeRenamePositional, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, "0", res.Diagnostics.Errors[0].FieldPath)
}

func TestResolve_PathImportedByAnotherFile(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("into", "path=warehouse.Record")},
		field("A", "int", "with_func=warehouse.Convert"),
	)
	schema.Imports = nil
	schema.PackageImports = map[string]string{"warehouse": "example.com/warehouse"}

	res := Resolve(schema, DefaultConfig())
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	require.Len(t, res.Plans, 1)

	warehouse := directive.Path{PkgPath: "example.com/warehouse", Name: "Record"}
	assert.Equal(t, warehouse, res.Plans[0].Conversion.Target)
	assert.Equal(t, "example.com/warehouse.Convert", res.Plans[0].Fields[0].WithFunc.String())
}

func TestResolve_Stateless(t *testing.T) {
	schema := record("Record",
		[]analyze.TypeDirective{conv("into", "path=dto.Record")},
		field("A", "*int", "unwrap"),
	)

	r := NewResolver(DefaultConfig())
	first := r.Resolve(schema)
	second := r.Resolve(schema)

	assert.Equal(t, first.Plans, second.Plans)
	assert.Len(t, schema.Fields[0].Directives, 1, "schema must not be modified")
}

func TestResolveGraph(t *testing.T) {
	graph := analyze.NewTypeGraph()
	graph.Schemas = []*analyze.TypeSchema{
		record("A", []analyze.TypeDirective{conv("into", "path=dto.A")}, field("X", "int")),
		record("B", []analyze.TypeDirective{conv("from", "path=dto.B")}, field("Y", "int", "unwrap")),
	}

	res := NewResolver(ResolutionConfig{}).ResolveGraph(graph)
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	assert.Len(t, res.Plans, 2)
}
