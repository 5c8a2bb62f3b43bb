package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all member, auth and temporary registration rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		target, release, err := openFixtures()
		if err != nil {
			return err
		}
		defer release()

		if err := target.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reset complete")
		return nil
	},
}
