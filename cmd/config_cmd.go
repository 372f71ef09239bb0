package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	d, err := dsn()
	if err != nil {
		return err
	}

	fmt.Println("  [General]")
	fmt.Printf("    Owner:     %s\n", ownerName())
	fmt.Printf("    Database:  %s\n", maskDSN(d))
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Currency:  %s\n", cfg.Display.Currency)
	fmt.Printf("    Theme:     %s\n", cfg.Display.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:   %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:  %s\n", cfg.Daemon.Interval)
	fmt.Printf("    Workers:   %d\n", cfg.Daemon.Workers)
	fmt.Println()

	fmt.Println("  [Alerts]")
	fmt.Printf("    Threshold: %s\n", cli.FormatMoney(cfg.Alerts.Threshold, cfg.Display.Currency))
	token := config.GetDiscordToken(cfg)
	switch {
	case token == "" || cfg.Alerts.DiscordChannelID == "":
		fmt.Println("    Discord:   not configured")
	default:
		fmt.Printf("    Discord:   channel %s, token %s\n", cfg.Alerts.DiscordChannelID, maskSecret(token))
	}
	fmt.Println()

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}

// maskDSN hides the password of a database URL. SQLite paths pass through.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
