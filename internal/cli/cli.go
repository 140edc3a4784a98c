// Package cli implements the fxadmin command line interface.
package cli

import (
	"context"
	"net/url"
	"os"
	"os/signal"

	"github.com/cccteam/fxadmin/config"
	"github.com/cccteam/fxadmin/transport"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
)

// Execute runs the CLI and reports whether it failed.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if msg, ok := localizedMessage(err); ok {
			root.PrintErrln("Error:", msg)
		}
		root.PrintErrln(err)

		return 1
	}

	return 0
}

// localizedMessage maps API and network failures onto their Spanish user
// message. Other failures already carry their own message and print as-is.
func localizedMessage(err error) (string, bool) {
	var apiErr *transport.Error
	var netErr *url.Error
	if errors.As(err, &apiErr) || errors.As(err, &netErr) {
		return transport.UserMessage(err), true
	}

	return "", false
}

// NewRootCmd builds the fxadmin command tree.
func NewRootCmd() *cobra.Command {
	// Parent hooks must run before the per-command guards.
	cobra.EnableTraverseRunHooks = true

	app := &App{}

	root := &cobra.Command{
		Use:           "fxadmin",
		Short:         "Administra tasas de cambio y parámetros del sistema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", config.DefaultPath(), "configuration file")

	root.AddCommand(
		loginCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		ratesCmd(app),
		parametersCmd(app),
		configurationCmd(app),
	)

	return root
}
