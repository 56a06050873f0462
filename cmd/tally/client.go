package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/storeops/tally/pkg/client"
)

// Flags shared by the device-side subcommands.
var (
	flagURL     string
	flagToken   string
	flagDataDir string
)

func init() {
	for _, cmd := range []*cobra.Command{adjustCmd, syncCmd, statusCmd, loginCmd} {
		cmd.Flags().StringVar(&flagURL, "url", os.Getenv("TALLY_URL"), "central service URL")
		cmd.Flags().StringVar(&flagDataDir, "data-dir", defaultDataDir(), "local data directory")
	}
	for _, cmd := range []*cobra.Command{adjustCmd, syncCmd, statusCmd} {
		cmd.Flags().StringVar(&flagToken, "token", os.Getenv("TALLY_TOKEN"), "bearer token from login")
	}
	adjustCmd.Flags().String("notes", "", "optional free-text note")
	rootCmd.AddCommand(adjustCmd, syncCmd, statusCmd, loginCmd)
}

func defaultDataDir() string {
	if v := os.Getenv("TALLY_DATA_DIR"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tally"
	}
	return filepath.Join(home, ".tally")
}

func newClient(offline bool) (*client.Client, error) {
	return client.New(client.Config{
		DataDir:     flagDataDir,
		BaseURL:     flagURL,
		Token:       flagToken,
		OfflineMode: offline,
	})
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Exchange the shared credential for a bearer token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := client.Login(cmd.Context(), flagURL, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <item-id> <delta>",
	Short: "Queue an inventory adjustment in base units",
	Long: `Queue an inventory adjustment. The event is durably stored in the
local outbox and delivered on the next sync; no network access is needed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var delta float64
		if _, err := fmt.Sscanf(args[1], "%f", &delta); err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		notes, _ := cmd.Flags().GetString("notes")

		c, err := newClient(true)
		if err != nil {
			return err
		}
		defer c.Close()

		evt, err := c.QueueAdjustment(client.AdjustmentParams{
			ItemID:         args[0],
			DeltaBaseUnits: delta,
			Notes:          notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("queued %s (%+g base units)\n", evt.ClientEventID, evt.DeltaBaseUnits)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one push/pull cycle against the central service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(false)
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Sync(cmd.Context())
		if stats != nil {
			fmt.Printf("pushed %d, pulled %d in %s\n", stats.Pushed, stats.Pulled, stats.Duration.Round(time.Millisecond))
		}
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local outbox and cursor state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(true)
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("device:    %s\n", stats.DeviceID)
		fmt.Printf("pending:   %d\n", stats.PendingCount)
		fmt.Printf("last pull: %s\n", stats.LastPull)
		return nil
	},
}
