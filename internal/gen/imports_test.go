package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportSet(t *testing.T) {
	s := newImportSet("example.com/store")

	assert.Empty(t, s.add("example.com/store", "store"))
	assert.Equal(t, "dto", s.add("example.com/api/dto", "dto"))
	assert.Equal(t, "dto", s.add("example.com/api/dto", "dto"), "repeated imports keep their name")
	assert.Equal(t, "dto2", s.add("example.com/legacy/dto", "dto"))
	assert.Equal(t, "yaml", s.add("gopkg.in/yaml.v3", "yaml"))

	assert.Equal(t, []importSpec{
		{Path: "example.com/api/dto"},
		{Alias: "dto2", Path: "example.com/legacy/dto"},
		{Alias: "yaml", Path: "gopkg.in/yaml.v3"},
	}, s.specs())
}

func TestImportSet_Fork(t *testing.T) {
	s := newImportSet("example.com/store")
	s.add("fmt", "fmt")

	f := s.fork()
	f.add("example.com/dto", "dto")

	assert.Len(t, s.specs(), 1, "forked additions stay out of the parent")
	assert.Len(t, f.specs(), 2)
}
