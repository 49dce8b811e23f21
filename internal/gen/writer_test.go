package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "store")

	files := []GeneratedFile{
		{Dir: pkgDir, Filename: "order_convert.go", Content: []byte("package store\n")},
		{Filename: "loose_convert.go", Content: []byte("package loose\n")},
	}

	require.NoError(t, WriteFiles(files, dir))

	got, err := os.ReadFile(filepath.Join(pkgDir, "order_convert.go"))
	require.NoError(t, err)
	assert.Equal(t, "package store\n", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "loose_convert.go"))
	require.NoError(t, err)
	assert.Equal(t, "package loose\n", string(got))
}

func TestChanged(t *testing.T) {
	dir := t.TempDir()

	same := GeneratedFile{Dir: dir, Filename: "same_convert.go", Content: []byte("package p\n")}
	stale := GeneratedFile{Dir: dir, Filename: "stale_convert.go", Content: []byte("package p\n\nvar x int\n")}
	missing := GeneratedFile{Dir: dir, Filename: "missing_convert.go", Content: []byte("package p\n")}

	require.NoError(t, os.WriteFile(same.Path(), same.Content, 0o600))
	require.NoError(t, os.WriteFile(stale.Path(), []byte("package p\n"), 0o600))

	changed, err := Changed([]GeneratedFile{same, stale, missing})
	require.NoError(t, err)

	require.Len(t, changed, 2)
	assert.Equal(t, "stale_convert.go", changed[0].Filename)
	assert.Equal(t, "missing_convert.go", changed[1].Filename)
}
