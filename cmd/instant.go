package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var (
	instantKind string
	instantDest string
)

var instantCmd = &cobra.Command{
	Use:   "instant AMOUNT",
	Short: "Record a one-off movement that happens right now",
	Example: "  runway instant 42.50                 (a purchase)\n" +
		"  runway instant 300 --kind credit     (money received)\n" +
		"  runway instant 100 --kind credit --dest savings   (move spending into savings)",
	Args: cobra.ExactArgs(1),
	RunE: runInstant,
}

func init() {
	instantCmd.Flags().StringVar(&instantKind, "kind", "debit", "credit or debit")
	instantCmd.Flags().StringVar(&instantDest, "dest", "spending", "spending or savings")
	rootCmd.AddCommand(instantCmd)
}

func runInstant(_ *cobra.Command, args []string) error {
	day, err := today()
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[0], err)
	}
	kind, err := model.ParseKind(instantKind)
	if err != nil {
		return err
	}
	dest, err := model.ParseDestination(instantDest)
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

	t := model.Transaction{Value: amount, Kind: kind, Destination: dest}
	funds, err := pipeline.Instant(ctx, st, ownerName(), t, day)
	if err != nil {
		return err
	}

	cur := cfg.Display.Currency
	fmt.Printf("  %s %s\n", cli.FormatMovement(t), cli.FormatSigned(t, cur))
	fmt.Println(cli.RenderKeyValue("Spending", cli.RenderMoney(funds.Spending, cfg.Alerts.Threshold, cur)))
	fmt.Println(cli.RenderKeyValue("Savings", cli.FormatMoney(funds.Savings, cur)))
	return nil
}
