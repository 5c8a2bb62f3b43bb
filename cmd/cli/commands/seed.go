package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Seed flag names
const (
	flagEmail    = "email"
	flagPassword = "password"
	flagCode     = "code"
	flagNickname = "nickname"
)

// seedOutput is printed for every created fixture
type seedOutput struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code,omitempty"`
}

func init() {
	seedCmd.AddCommand(seedMemberCmd)
	seedCmd.AddCommand(seedTempMemberCmd)

	seedMemberCmd.Flags().StringP(flagEmail, "e", "", "Member email")
	seedMemberCmd.Flags().StringP(flagPassword, "p", "", "Plaintext password, stored as a bcrypt hash")
	_ = seedMemberCmd.MarkFlagRequired(flagEmail)
	_ = seedMemberCmd.MarkFlagRequired(flagPassword)

	seedTempMemberCmd.Flags().StringP(flagCode, "c", "", "Verification code")
	seedTempMemberCmd.Flags().StringP(flagNickname, "n", "", "Nickname")
	seedTempMemberCmd.Flags().StringP(flagEmail, "e", "", "Email")
	seedTempMemberCmd.Flags().StringP(flagPassword, "p", "", "Plaintext password, stored as a bcrypt hash")
	for _, name := range []string{flagCode, flagNickname, flagEmail, flagPassword} {
		_ = seedTempMemberCmd.MarkFlagRequired(name)
	}
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fixture rows",
}

var seedMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Insert a member with a local password credential",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString(flagEmail)
		password, _ := cmd.Flags().GetString(flagPassword)

		target, release, err := openFixtures()
		if err != nil {
			return err
		}
		defer release()

		member, err := target.SeedMember(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("failed to seed member: %w", err)
		}
		return printJSON(cmd, seedOutput{ID: member.ID.String(), Email: member.Email})
	},
}

var seedTempMemberCmd = &cobra.Command{
	Use:   "temp-member",
	Short: "Insert a pending registration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		code, _ := cmd.Flags().GetString(flagCode)
		nickname, _ := cmd.Flags().GetString(flagNickname)
		email, _ := cmd.Flags().GetString(flagEmail)
		password, _ := cmd.Flags().GetString(flagPassword)

		target, release, err := openFixtures()
		if err != nil {
			return err
		}
		defer release()

		temp, err := target.SeedTemporaryMember(cmd.Context(), code, nickname, email, password)
		if err != nil {
			return fmt.Errorf("failed to seed temporary member: %w", err)
		}
		return printJSON(cmd, seedOutput{ID: temp.ID.String(), Email: temp.Email, Code: temp.Code})
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
