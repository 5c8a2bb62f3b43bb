package commands

import (
	"github.com/spf13/cobra"

	"github.com/celestiaorg/memberenv/internal/config"
	"github.com/celestiaorg/memberenv/internal/constants"
	"github.com/celestiaorg/memberenv/internal/logger"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagDatabaseURL   = "database-url"
)

var (
	// serverAddress points at a running fixture server. When empty, commands
	// work directly against databaseURL.
	serverAddress string
	databaseURL   string

	// cfg is loaded before any command runs
	cfg *config.EnvConfig
)

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", "", "Address of a running fixture server (env: "+constants.EnvServerAddress+")")
	RootCmd.PersistentFlags().StringVar(&databaseURL, flagDatabaseURL, "", "Database to seed directly (env: "+constants.EnvDatabaseURL+")")

	RootCmd.AddCommand(upCmd)
	RootCmd.AddCommand(resetCmd)
	RootCmd.AddCommand(seedCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "memberenv",
	Short: "memberenv - ephemeral stores and fixtures for end-to-end tests",
	Long: `memberenv starts throwaway PostgreSQL and Redis containers, migrates the
member schema and seeds members and pending registrations for end-to-end tests.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.InitializeAndConfigure()

		loaded, err := config.LoadEnvConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		// Flag > env var
		if !cmd.Flags().Changed(flagServerAddress) {
			serverAddress = cfg.ServerAddress
		}
		if !cmd.Flags().Changed(flagDatabaseURL) {
			databaseURL = cfg.DatabaseURL
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
