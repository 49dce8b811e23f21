// Package main provides the CLI entrypoint for convert-generator.
//
// convert-generator is a Go codegen tool that:
//   - Parses Go packages (AST + go/types) to find types annotated with
//     //convert: directives
//   - Resolves field, variant and type-level directives into conversion plans
//   - Generates into/try_into/from/try_from conversion functions next to the
//     annotated types
package main

import (
	"context"
	"os"

	"convert-generator/internal/commands"
	"convert-generator/internal/output"
)

func main() {
	if err := commands.RootCmd().ExecuteContext(context.Background()); err != nil {
		output.New(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}
