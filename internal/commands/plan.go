package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"convert-generator/internal/plan"
)

const (
	planFormatYAML = "yaml"
	planFormatText = "text"
)

func planCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan [patterns...]",
		Short: "Print the resolved conversion plans",
		Long: `Resolve the conversion directives without emitting code and print every
plan: its direction, types and the method chosen for each field.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != planFormatYAML && format != planFormatText {
				return fmt.Errorf("unknown format %q: use %s or %s", format, planFormatYAML, planFormatText)
			}

			res, err := a.runner().Plan(cmd.Context(), args...)
			if res != nil {
				a.out.Diagnostics(res.Diagnostics)
			}

			if err != nil {
				return err
			}

			if format == planFormatText {
				fmt.Fprint(cmd.OutOrStdout(), plan.FormatReport(res.Plans))

				return nil
			}

			data, err := plan.ExportYAML(res.Plans)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", planFormatYAML, "Output format: yaml or text")

	return cmd
}
