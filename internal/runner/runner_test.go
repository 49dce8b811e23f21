package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-generator/internal/config"
	"convert-generator/internal/diagnostic"
)

const dtoFile = `package dto

type Order struct {
	ID   int64
	Note string
}
`

const storeFile = `package store

import "example.com/shop/dto"

var _ = dto.Order{}

//convert:into path=dto.Order
//convert:from path=dto.Order
type Order struct {
	ID   int64
	Note *string ` + "`convert:\"unwrap\"`" + `
}
`

// writeModule lays out a throwaway module with a dto and a store package
// and returns its root.
func writeModule(t *testing.T, store string) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]string{
		"go.mod":         "module example.com/shop\n\ngo 1.24\n",
		"dto/dto.go":     dtoFile,
		"store/store.go": store,
	}

	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return root
}

func newRunner(root string, opts ...Option) *Runner {
	return New(config.Default(), zerolog.Nop(), append([]Option{WithDir(root)}, opts...)...)
}

func TestGenerate_DryRun(t *testing.T) {
	root := writeModule(t, storeFile)

	res, err := newRunner(root, WithDryRun(true)).Generate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())

	require.Len(t, res.Plans, 2)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "order_convert.go", res.Files[0].Filename)
	assert.Empty(t, res.Written)

	assert.NoFileExists(t, filepath.Join(root, "store", "order_convert.go"))
}

func TestGenerate_WritesThenChecks(t *testing.T) {
	root := writeModule(t, storeFile)
	r := newRunner(root)
	ctx := context.Background()

	res, err := r.Generate(ctx, "./...")
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	path := filepath.Join(root, "store", "order_convert.go")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func OrderToDtoOrder(in Order) dto.Order {")
	assert.Contains(t, string(content), "func DtoOrderToOrder(in dto.Order) Order {")

	_, err = r.Check(ctx)
	require.NoError(t, err, "a fresh generation is up to date")

	res, err = r.Generate(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Written, "unchanged files are not rewritten")

	require.NoError(t, os.WriteFile(path, []byte("// Code generated by convert-generator. DO NOT EDIT.\n\npackage store\n"), 0o600))

	res, err = r.Check(ctx)
	require.ErrorIs(t, err, ErrStale)
	require.Len(t, res.Written, 1)
	assert.Equal(t, path, res.Written[0].Path())
}

func TestGenerate_ErrorsBlockWrites(t *testing.T) {
	root := writeModule(t, `package store

import "example.com/shop/dto"

var _ = dto.Order{}

//convert:into path=dto.Order default
type Order struct {
	ID   int64
	Nte  string
}
`)

	res, err := newRunner(root).Generate(context.Background())
	require.ErrorIs(t, err, ErrDiagnostics)

	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeUnknownTargetField, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, []string{"Note"}, res.Diagnostics.Errors[0].Suggestions)

	assert.NoFileExists(t, filepath.Join(root, "store", "order_convert.go"))
}

func TestPlan(t *testing.T) {
	root := writeModule(t, storeFile)

	res, err := newRunner(root).Plan(context.Background(), "./store")
	require.NoError(t, err)

	require.Len(t, res.Plans, 2)
	assert.Empty(t, res.Files)
	assert.Equal(t, []string{filepath.Join(root, "store")}, res.Dirs)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	root := writeModule(t, storeFile)
	r := newRunner(root, WithDryRun(true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := 0
	err := r.Watch(ctx, DefaultDebounce, func(res *Result, err error) {
		runs++

		assert.NoError(t, err)
		assert.Len(t, res.Files, 1)
		cancel()
	})

	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestRelevant(t *testing.T) {
	r := New(nil, zerolog.Nop())

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{name: "store/order.go", op: fsnotify.Write, want: true},
		{name: "store/order.go", op: fsnotify.Remove, want: true},
		{name: "store/order.go", op: fsnotify.Chmod, want: false},
		{name: "store/order_convert.go", op: fsnotify.Write, want: false},
		{name: "store/convert_errors.go", op: fsnotify.Create, want: false},
		{name: "store/order_test.go", op: fsnotify.Write, want: false},
		{name: "store/README.md", op: fsnotify.Write, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, r.relevant(fsnotify.Event{Name: tt.name, Op: tt.op}))
		})
	}
}

func TestGenerate_Examples(t *testing.T) {
	r := New(config.Default(), zerolog.Nop(), WithDir("../.."), WithDryRun(true))

	res, err := r.Generate(context.Background(), "./examples/...")
	require.NoError(t, err)
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())
	assert.Empty(t, res.Diagnostics.Warnings)

	// Audit is skipped in both Event conversions.
	require.Len(t, res.Diagnostics.Infos, 2)
	for _, info := range res.Diagnostics.Infos {
		assert.Equal(t, diagnostic.CodeVariantSkipped, info.Code)
		assert.Equal(t, "Audit", info.FieldPath)
	}

	var names []string
	for _, f := range res.Files {
		names = append(names, f.Filename)
	}

	assert.Equal(t, []string{
		"event_convert.go",
		"product_convert.go",
		"customer_convert.go",
		"order_convert.go",
		"order_item_convert.go",
		"cents_convert.go",
		"convert_errors.go",
	}, names)

	contents := make(map[string]string)
	for _, f := range res.Files {
		contents[f.Filename] = string(f.Content)
	}

	assert.Contains(t, contents["order_convert.go"], "out.Status = warehouseStatus(in)")
	assert.Contains(t, contents["order_convert.go"], "out.TotalCents = CentsToWarehouseCents(in.TotalCents)")
	assert.Contains(t, contents["order_convert.go"], "OrderItemToWarehouseOrderLine(in.Items[")
	assert.Contains(t, contents["customer_convert.go"], "ErrMissingValue")
	assert.Contains(t, contents["event_convert.go"], "case Shipped:")
	assert.Contains(t, contents["event_convert.go"], "case warehouse.OrderShipped:")
	assert.NotContains(t, contents["event_convert.go"], "Audit")
}

func TestPlan_NoAnnotatedTypes(t *testing.T) {
	root := writeModule(t, "package store\n\ntype Order struct{ ID int64 }\n")

	res, err := newRunner(root).Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Plans)
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeNoConversions, res.Diagnostics.Warnings[0].Code)
	assert.Contains(t, res.Diagnostics.Warnings[0].Message, "./...")
}
