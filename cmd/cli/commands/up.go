package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/celestiaorg/memberenv/internal/api"
	"github.com/celestiaorg/memberenv/internal/logger"
	"github.com/celestiaorg/memberenv/test"
)

const flagListen = "listen"

func init() {
	upCmd.Flags().StringP(flagListen, "l", "", "Address the fixture server listens on (env: MEMBERENV_LISTEN_ADDR)")
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the stores and serve fixture operations until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen, _ := cmd.Flags().GetString(flagListen)
		if listen == "" {
			listen = cfg.ListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := test.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		if err := env.Setup(ctx); err != nil {
			return fmt.Errorf("failed to set up environment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "DATABASE_URL=%s\n", env.DatabaseURL())
		fmt.Fprintf(out, "REDIS_URL=%s\n", env.CacheURL())
		fmt.Fprintf(out, "MEMBERENV_SERVER_ADDRESS=%s\n", serverURL(listen))

		app := api.NewApp(env.Fixtures())
		serveErr := make(chan error, 1)
		go func() {
			serveErr <- app.Listen(listen)
		}()

		var runErr error
		select {
		case <-ctx.Done():
			logger.Info("Shutting down")
		case err := <-serveErr:
			runErr = fmt.Errorf("fixture server stopped: %w", err)
		}

		if err := app.Shutdown(); err != nil {
			logger.Warnf("Failed to shut down fixture server: %v", err)
		}
		tdErr := env.Teardown(context.WithoutCancel(ctx))
		return multierror.Append(runErr, tdErr).ErrorOrNil()
	},
}

// serverURL turns a listen address into a URL clients can use
func serverURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://localhost" + listen
	}
	return "http://" + listen
}
