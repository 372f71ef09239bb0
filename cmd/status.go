package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Bring the books up to date and show the projected low point",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	day, err := today()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	owner := ownerName()
	rep, err := pipeline.RefreshOwner(ctx, st, owner, day)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNotSeeded):
		fmt.Println()
		fmt.Printf("  %s has no starting balance yet.\n\n", owner)
		fmt.Println("  Get started with:")
		fmt.Println("    runway setup                       (interactive)")
		fmt.Printf("    runway seed 1200.00 --owner %s   (one-shot)\n\n", owner)
		return nil
	case err != nil:
		return err
	}

	cur := cfg.Display.Currency
	threshold := cfg.Alerts.Threshold
	proj := rep.Projection

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RUNWAY · %s · %s", owner, cli.FormatDate(day))))
	fmt.Println()
	fmt.Println(cli.RenderKeyValue("Spending", cli.RenderMoney(rep.Funds.Spending, threshold, cur)))
	fmt.Println(cli.RenderKeyValue("Savings", cli.FormatMoney(rep.Funds.Savings, cur)))
	fmt.Println()
	fmt.Println(cli.RenderKeyValue("Projected low", cli.RenderMoney(proj.MinSpending, threshold, cur)))
	fmt.Println(cli.RenderKeyValue("Savings at low", cli.FormatMoney(proj.SavingsAtMin, cur)))
	fmt.Println(cli.RenderKeyValue("Low date", cli.FormatDate(proj.LowDate)))
	fmt.Println(cli.RenderKeyValue("Horizon", cli.FormatDate(proj.Horizon)))
	fmt.Println()

	if rep.Applied > 0 {
		fmt.Printf("  Caught up %d scheduled occurrence(s).\n", rep.Applied)
	}
	if pipeline.Shortfall(proj, threshold) {
		fmt.Printf("  Warning: spending drops below %s on %s.\n", cli.FormatMoney(threshold, cur), cli.FormatDate(proj.LowDate))
	}
	fmt.Println()
	return nil
}
