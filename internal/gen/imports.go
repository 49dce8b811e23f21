package gen

import (
	"go/types"
	"maps"
	"sort"
	"strconv"

	"convert-generator/internal/common"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// importSet tracks the packages referenced by one generated file and the
// names they are referenced by.
type importSet struct {
	local  string
	byPath map[string]string
	byName map[string]string
}

func newImportSet(localPkgPath string) *importSet {
	return &importSet{
		local:  localPkgPath,
		byPath: make(map[string]string),
		byName: make(map[string]string),
	}
}

// fork returns a copy of s to which imports can be added tentatively.
func (s *importSet) fork() *importSet {
	return &importSet{
		local:  s.local,
		byPath: maps.Clone(s.byPath),
		byName: maps.Clone(s.byName),
	}
}

// add records an import and returns the name to qualify its identifiers
// with, or "" for the local package. Clashing names get a numeric suffix.
func (s *importSet) add(pkgPath, pkgName string) string {
	if pkgPath == s.local || pkgPath == "" {
		return ""
	}

	if name, ok := s.byPath[pkgPath]; ok {
		return name
	}

	if pkgName == "" {
		pkgName = common.PkgAlias(pkgPath)
	}

	name := pkgName
	for i := 2; ; i++ {
		if _, taken := s.byName[name]; !taken {
			break
		}

		name = pkgName + strconv.Itoa(i)
	}

	s.byPath[pkgPath] = name
	s.byName[name] = pkgPath

	return name
}

// qualifier is a types.Qualifier recording every package it is asked about.
func (s *importSet) qualifier(pkg *types.Package) string {
	return s.add(pkg.Path(), pkg.Name())
}

// specs returns the imports sorted by path. An alias is only written when
// the name differs from the last path element.
func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))

	for path, name := range s.byPath {
		spec := importSpec{Path: path}
		if name != common.PkgAlias(path) {
			spec.Alias = name
		}

		out = append(out, spec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}
