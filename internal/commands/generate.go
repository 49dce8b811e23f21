package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"convert-generator/internal/runner"
)

func generateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Write the conversion files of the given packages",
		Long: `Resolve the conversion directives of the packages matching the patterns
(default from the project file, ./... otherwise) and write the generated
files. Nothing is written when any error is reported.`,
		Example: `  convert-generator generate
  convert-generator generate ./internal/store --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runner().Generate(cmd.Context(), args...)
			if res != nil {
				a.out.Diagnostics(res.Diagnostics)
			}

			if err != nil {
				if errors.Is(err, runner.ErrDiagnostics) {
					a.out.Error("Nothing written")
				}

				return err
			}

			if a.flags.dryRun {
				a.out.Info(fmt.Sprintf("Dry run: %d file(s) would be generated", len(res.Files)))

				for _, f := range res.Files {
					a.out.Step(f.Path())
				}

				return nil
			}

			if len(res.Written) == 0 {
				a.out.Success("Generated files are up to date")

				return nil
			}

			a.out.Success(fmt.Sprintf("Wrote %d file(s)", len(res.Written)))

			for _, f := range res.Written {
				a.out.Step(f.Path())
			}

			return nil
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [patterns...]",
		Short: "Fail when generated files are missing or out of date",
		Long: `Run the generator in memory and compare its output with the files on
disk. The exit code is non-zero on error diagnostics or stale files, which
makes the command suitable for CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runner().Check(cmd.Context(), args...)
			if res != nil {
				a.out.Diagnostics(res.Diagnostics)
			}

			if errors.Is(err, runner.ErrStale) {
				a.out.Error("Generated files are out of date; run convert-generator generate")

				for _, f := range res.Written {
					a.out.Step(f.Path())
				}
			}

			if err != nil {
				return err
			}

			a.out.Success(fmt.Sprintf("%d generated file(s) up to date", len(res.Files)))

			return nil
		},
	}
}
