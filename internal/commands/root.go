package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"convert-generator/internal/config"
	"convert-generator/internal/output"
	"convert-generator/internal/runner"
)

// Version is set at build time with
// -ldflags "-X convert-generator/internal/commands.Version=v1.2.3".
var Version = "dev"

// app is the state shared by the subcommands of one invocation.
type app struct {
	flags settings
	cfg   *config.Config
	log   zerolog.Logger
	out   *output.Printer
}

func (a *app) runner() *runner.Runner {
	return runner.New(a.cfg, a.log, runner.WithDryRun(a.flags.dryRun))
}

// RootCmd creates and returns the root command of the CLI.
func RootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "convert-generator",
		Short: "Generate conversion functions from directives on Go types",
		Long: `convert-generator reads //convert: directives and convert:"..." struct tags
on Go types and writes the conversion functions they describe.

	//convert:into path=dto.Order
	//convert:try_from path=dto.Order
	type Order struct {
		ID    int64
		Note  *string ` + "`convert:\"unwrap\"`" + `
	}

Each annotated type gets a <type>_convert.go file in its own package.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = output.New(cmd.OutOrStdout())
			a.out.SetVerbose(a.flags.verbose)

			cfg, err := loadConfig(&a.flags, cmd.Flags())
			if err != nil {
				return err
			}

			log, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg, a.log = cfg, log

			return nil
		},
	}

	a.flags.register(cmd.PersistentFlags())

	cmd.AddCommand(
		generateCmd(a),
		checkCmd(a),
		planCmd(a),
		watchCmd(a),
		versionCmd(),
	)

	return cmd
}
