package common

import (
	"path"
	"strings"
	"unicode"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// SplitQualified splits "import/path.Name" into its package path and name.
// A name without a dot yields an empty package path.
func SplitQualified(s string) (pkgPath, name string) {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return "", s
	}

	return s[:i], s[i+1:]
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}

	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

// SnakeCase converts a Go identifier to snake_case ("OrderItem" -> "order_item").
func SnakeCase(s string) string {
	var b strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
