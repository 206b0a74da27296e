// ABOUTME: Web server subcommand
// ABOUTME: Serves the JSON API and HTML dashboard until interrupted
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/web"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	var quiet bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Port
			}

			directory, err := auth.NewDirectory()
			if err != nil {
				return err
			}

			opts := web.Options{
				Tokens:         auth.NewTokenAuth(a.cfg.JWTSecret, a.cfg.TokenTTL),
				Directory:      directory,
				Logger:         a.logger,
				AllowedOrigins: a.cfg.AllowedOrigins,
				Now:            a.now,
			}
			if !quiet {
				opts.RequestLogger = web.NewRequestLogger(a.version)
			}

			server, err := web.NewServer(a.db, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://localhost:%d\n", port)
			return server.Run(ctx, fmt.Sprintf(":%d", port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (default from config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable request logging")
	return cmd
}
