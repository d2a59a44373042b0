package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "touchsweep"
const keyringUser = "server-token"

const tokenBytes = 32

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Commands for managing the bearer token that protects the server's /rpc and /ws endpoints.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the server auth token",
	Long:  `The token is kept in the operating system keyring. Start the server with --auth to require it.`,
}

var authTokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store a new auth token",
	Long:  `Generates a random token, stores it in the keyring, replacing any previous one, and prints it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := generateToken()
		if err != nil {
			return err
		}

		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var authTokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the stored auth token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := loadServerToken()
		if err != nil {
			return fmt.Errorf("no auth token found for touchsweep")
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var authTokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored auth token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no auth token is stored")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Auth token deleted.")
		return nil
	},
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func loadServerToken() (string, error) {
	return keyring.Get(keyringService, keyringUser)
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd)
	authTokenCmd.AddCommand(authTokenGenerateCmd, authTokenShowCmd, authTokenDeleteCmd)
}
