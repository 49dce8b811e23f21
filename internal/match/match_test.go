package match

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"rename", "renam", 1},
		{"unwrap", "unwarp", 2},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "symmetry")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("skip", "skip"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("skip", "skid"), 1e-9)
	assert.InDelta(t, 1.0, IdentSimilarity("OrderID", "order_id"), 1e-9)
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"order", "id"}, TokenizeIdent("OrderID"))
	assert.Equal(t, []string{"xml", "parser"}, TokenizeIdent("XMLParser"))
	assert.Equal(t, []string{"try", "into"}, TokenizeIdent("try_into"))
	assert.Equal(t, []string{"customer", "name"}, TokenizeIdent("customerName"))
	assert.Nil(t, TokenizeIdent(""))
	assert.Equal(t, "withfunc", NormalizeIdent("with_func"))
}

func TestSuggest(t *testing.T) {
	keys := []string{"rename", "skip", "default", "unwrap", "with_func"}

	assert.Equal(t, []string{"rename"}, Suggest("renam", keys, 1))
	assert.Equal(t, []string{"with_func"}, Suggest("withFunc", keys, 2))
	assert.Equal(t, []string{"unwrap"}, Suggest("unwarp", keys, 1))
	assert.Empty(t, Suggest("frobnicate", keys, 3))
	assert.Empty(t, Suggest("skip", keys, 3))
}

func TestRank_Deterministic(t *testing.T) {
	ranked := Rank("ab", []string{"ac", "aa", "ab"})
	assert.Equal(t, "ab", ranked[0].Name)
	assert.Equal(t, "aa", ranked[1].Name)
	assert.Equal(t, "ac", ranked[2].Name)
}

func TestCompatibility(t *testing.T) {
	pkg := types.NewPackage("example.com/store", "store")
	named := func(name string, underlying types.Type) *types.Named {
		return types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil), underlying, nil)
	}

	intT := types.Typ[types.Int]
	int64T := types.Typ[types.Int64]
	stringT := types.Typ[types.String]
	cents := named("Cents", int64T)
	order := named("Order", types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, pkg, "ID", intT, false),
	}, nil))
	dto := named("OrderDTO", types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, pkg, "Code", stringT, false),
	}, nil))

	tests := []struct {
		name   string
		source types.Type
		target types.Type
		want   TypeCompatibility
	}{
		{"identical", intT, intT, TypeIdentical},
		{"numeric conversion", intT, int64T, TypeConvertible},
		{"defined over basic", cents, int64T, TypeConvertible},
		{"string to int", stringT, intT, TypeIncompatible},
		{"distinct structs", order, dto, TypeNeedsConverter},
		{"slice elements differ", types.NewSlice(order), types.NewSlice(dto), TypeIncompatible},
		{"nil source", nil, intT, TypeIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatibility(tt.source, tt.target))
		})
	}

	assert.True(t, TypeAssignable.Direct())
	assert.False(t, TypeConvertible.Direct())
	assert.Equal(t, "needs_converter", TypeNeedsConverter.String())
}
