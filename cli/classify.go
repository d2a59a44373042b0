package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/touchsweep/commands"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [x1,y1] [x2,y2]",
	Short: "Classify a start and end point as a tap or swipe",
	Long:  `Classifies the movement from x1,y1 to x2,y2 as a tap, a swipe in one of four directions, or no gesture. Coordinates may be fractional.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x1, y1, err := parsePoint(args[0])
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		x2, y2, err := parsePoint(args[1])
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		req := commands.ClassifyRequest{
			X1:        x1,
			Y1:        y1,
			X2:        x2,
			Y2:        y2,
			Threshold: effectiveThreshold(cmd, classifyThreshold),
		}

		return printResponse(commands.ClassifyCommand(req))
	},
}

// parsePoint parses "x,y" into two numbers
func parsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate format. Expected 'x,y', got '%s'", s)
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid coordinate values. x and y must be numbers. Got x='%s', y='%s'", parts[0], parts[1])
	}

	return x, y, nil
}

// effectiveThreshold prefers the --threshold flag over the configured value
func effectiveThreshold(cmd *cobra.Command, flagValue float64) float64 {
	if cmd.Flags().Changed("threshold") {
		return flagValue
	}
	return cfg.Threshold
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", 0, "minimum distance in pixels along the dominant axis for a swipe (default from config, 40)")
}
