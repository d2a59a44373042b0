package cli

import (
	"github.com/mobile-next/touchsweep/commands"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [file...]",
	Short: "Replay recorded input traces",
	Long:  `Replays JSON, YAML or plist input traces through a fresh surface each and reports the gestures they produce. Files are replayed in parallel; results keep argument order.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.ReplayRequest{
			Paths:     args,
			Threshold: effectiveThreshold(cmd, replayThreshold),
			Verbose:   replayVerbose,
		}

		return printResponse(commands.ReplayCommand(cmd.Context(), req))
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Float64Var(&replayThreshold, "threshold", 0, "default threshold for traces that do not set one")
	replayCmd.Flags().BoolVar(&replayVerbose, "events", false, "include every emitted event in the output")
}
