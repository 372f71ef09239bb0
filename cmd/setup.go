package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	day, err := today()
	if err != nil {
		return err
	}

	vals := &tui.SetupValues{
		Owner:    ownerName(),
		Currency: cfg.Display.Currency,
		Theme:    cfg.Display.Theme,
	}
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		return err
	}
	amount, err := vals.StartingAmount()
	if err != nil {
		return err
	}
	owner := strings.TrimSpace(vals.Owner)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := st.CreateOwner(ctx, owner, day); err != nil && !errors.Is(err, store.ErrExists) {
		return err
	}
	funds, err := st.Seed(ctx, owner, amount)
	if err != nil {
		return err
	}

	cfg.General.Owner = owner
	if c := strings.TrimSpace(vals.Currency); c != "" {
		cfg.Display.Currency = c
	}
	cfg.Display.Theme = vals.Theme
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Println(cli.RenderKeyValue("Owner", owner))
	fmt.Println(cli.RenderKeyValue("Spending", cli.FormatMoney(funds.Spending, cfg.Display.Currency)))
	fmt.Printf("\n  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Next: add your bills and paychecks with `runway schedule add` or `runway import`.")
	fmt.Println()
	return nil
}
