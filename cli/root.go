package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/touchsweep/commands"
	"github.com/mobile-next/touchsweep/config"
	"github.com/mobile-next/touchsweep/server"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/mobile-next/touchsweep/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "touchsweep",
	Short: "Swipe and tap gesture detection for pointer and touch input",
	Long:  `Classifies pointer and touch input into tap and swipe gestures, from the command line, from recorded traces, or over a JSON-RPC server.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// initConfig resolves the configuration and prepares the surface registry
func initConfig(cmd *cobra.Command, args []string) error {
	utils.SetJSON(logJSON)

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	utils.SetVerbose(verbose || cfg.Verbose)
	if cfg.Source != "" {
		utils.Verbose("Loaded configuration from %s", cfg.Source)
	}

	if commands.GetRegistry() == nil {
		registry, err := surface.NewRegistry(cfg.RegistrySize)
		if err != nil {
			return fmt.Errorf("failed to create surface registry: %w", err)
		}
		commands.SetRegistry(registry)
	}

	return nil
}

func init() {
	server.Version = version

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.touchsweep/config.ini)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write log lines as JSON")
}

// Execute runs the root command. Cancelling ctx stops a running server or replay.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(jsonData))
}

// printResponse prints a command response and turns an error status into an error
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
