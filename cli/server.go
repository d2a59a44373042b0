package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/mobile-next/touchsweep/daemon"
	"github.com/mobile-next/touchsweep/server"
	"github.com/mobile-next/touchsweep/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the touchsweep JSON-RPC server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the touchsweep server",
	Long:  `Starts the touchsweep server. Surfaces are created and fed over JSON-RPC on /rpc, and events can be pushed to WebSocket clients on /ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := cfg.Listen
		if cmd.Flags().Changed("listen") {
			listenAddr, _ = cmd.Flags().GetString("listen")
		}

		// GetBool cannot fail for defined flags
		enableCORS := cfg.CORS
		if cmd.Flags().Changed("cors") {
			enableCORS, _ = cmd.Flags().GetBool("cors")
		}
		requireAuth := cfg.Auth
		if cmd.Flags().Changed("auth") {
			requireAuth, _ = cmd.Flags().GetBool("auth")
		}
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		// the parent process already checked before daemonizing
		if !daemon.IsChild() {
			if err := ensurePortAvailable(listenAddr); err != nil {
				return err
			}
		}

		var token string
		if requireAuth {
			var err error
			token, err = loadServerToken()
			if err != nil {
				return fmt.Errorf("authentication enabled but no token is stored, run 'touchsweep auth token generate': %w", err)
			}
		}

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		return server.StartServer(cmd.Context(), listenAddr, server.Options{
			EnableCORS: enableCORS,
			AuthToken:  token,
		})
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized touchsweep server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC. The stored auth token is sent when there is one.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Listen
		if cmd.Flags().Changed("listen") {
			addr, _ = cmd.Flags().GetString("listen")
		}

		// a missing token is fine for servers started without --auth
		token, _ := loadServerToken()

		err := daemon.KillServer(addr, token)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// ensurePortAvailable fails when addr is already bound, so a daemonized start
// reports the conflict instead of dying silently in the background.
func ensurePortAvailable(addr string) error {
	addr, err := utils.NormalizeListenAddr(addr)
	if err != nil {
		return err
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	// port 0 picks a free port at listen time
	if port == 0 {
		return nil
	}

	if !utils.IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use on %s", port, addr)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().Bool("auth", false, "Require the stored auth token as a bearer token")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default from config, localhost:12000)")
}
