// Package directive parses conversion directives and resolves the attributes
// in force for each field and variant.
//
// Field directives live in the "convert" struct tag:
//
//	Name string `convert:"rename=Title,into(skip),try_into(path=dto.Book,unwrap)"`
//
// Type, variant and positional-field directives are comment lines on the
// type declaration:
//
//	//convert:into path=dto.Book default
//	//convert:variant rename=Paperback
//	//convert:field with_func=parseISBN
//
// Attributes may be set globally, per method ("into(...)") or per method and
// target ("into(path=dto.Book, ...)"). The narrowest scope wins for every
// attribute independently; skip is the exception and is added up across
// scopes.
package directive
