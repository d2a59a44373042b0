package cli

import (
	"github.com/mobile-next/touchsweep/commands"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Prints the configuration after defaults, the config file and TOUCHSWEEP_* environment variables are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.NewSuccessResponse(map[string]interface{}{
			"threshold":    cfg.Threshold,
			"listen":       cfg.Listen,
			"cors":         cfg.CORS,
			"auth":         cfg.Auth,
			"registrySize": cfg.RegistrySize,
			"verbose":      cfg.Verbose,
			"source":       cfg.Source,
		}))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
