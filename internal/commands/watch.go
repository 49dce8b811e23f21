package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"convert-generator/internal/runner"
)

func watchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Regenerate whenever a source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.out.Info("Watching for changes, press Ctrl+C to stop")

			return a.runner().Watch(ctx, debounce, func(res *runner.Result, err error) {
				if res != nil {
					a.out.Diagnostics(res.Diagnostics)
				}

				switch {
				case err != nil:
					a.out.Error(err.Error())
				case len(res.Written) > 0:
					a.out.Success(fmt.Sprintf("Wrote %d file(s)", len(res.Written)))
				default:
					a.out.Verbose("No changes")
				}
			}, args...)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", runner.DefaultDebounce, "Quiet period before regenerating")

	return cmd
}
