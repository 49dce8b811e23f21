package directive

import (
	"fmt"
	"go/token"
	"strings"

	"convert-generator/internal/common"
)

// Path is a canonical reference to a named type: its import path plus name.
type Path struct {
	PkgPath string
	Name    string
}

// String returns "import/path.Name".
func (p Path) String() string {
	if p.PkgPath == "" {
		return p.Name
	}

	return p.PkgPath + "." + p.Name
}

// IsZero reports whether the path is unset.
func (p Path) IsZero() bool {
	return p.Name == ""
}

// Qualifier resolves type references written in directives against the
// imports of the file that declares the annotated type, then against the
// imports of its whole package.
type Qualifier struct {
	// PkgPath and PkgName identify the annotated type's own package.
	PkgPath string
	PkgName string
	// Imports maps the local name of every import to its import path.
	Imports map[string]string
	// PackageImports maps package names imported anywhere in the package to
	// their import paths. Names imported under several paths are left out.
	PackageImports map[string]string
}

// Qualify turns "T", "pkg.T" or "import/path.T" into a canonical Path.
func (q Qualifier) Qualify(ref string) (Path, error) {
	if strings.Contains(ref, "/") {
		pkgPath, name := common.SplitQualified(ref)
		if pkgPath == "" || !token.IsIdentifier(name) {
			return Path{}, fmt.Errorf("invalid type path %q", ref)
		}

		return Path{PkgPath: pkgPath, Name: name}, nil
	}

	parts := strings.Split(ref, ".")
	for _, part := range parts {
		if !token.IsIdentifier(part) {
			return Path{}, fmt.Errorf("invalid type path %q", ref)
		}
	}

	switch len(parts) {
	case 1:
		return Path{PkgPath: q.PkgPath, Name: parts[0]}, nil
	case 2:
		if parts[0] == q.PkgName {
			return Path{PkgPath: q.PkgPath, Name: parts[1]}, nil
		}

		pkgPath, ok := q.Imports[parts[0]]
		if !ok {
			pkgPath, ok = q.PackageImports[parts[0]]
		}

		if !ok {
			return Path{}, fmt.Errorf("package %q in type path %q is not imported", parts[0], ref)
		}

		return Path{PkgPath: pkgPath, Name: parts[1]}, nil
	default:
		return Path{}, fmt.Errorf("invalid type path %q", ref)
	}
}
