package cmd

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var flagThrough string

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show projected balances on every day with scheduled activity",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagThrough, "through", "", "Last date to show (YYYY-MM-DD, default the projection horizon)")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	day, err := today()
	if err != nil {
		return err
	}
	var through civil.Date
	if flagThrough != "" {
		if through, err = civil.ParseDate(flagThrough); err != nil {
			return fmt.Errorf("--through: %w", err)
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	owner := ownerName()
	funds, err := st.GetFunds(ctx, owner)
	if err != nil {
		return err
	}
	txns, err := st.ListTransactions(ctx, owner)
	if err != nil {
		return err
	}

	// Read-only: the catch-up is recomputed, not persisted.
	through, points, err := pipeline.Forecast(funds, txns, day, through)
	if err != nil {
		return err
	}

	cur := cfg.Display.Currency
	threshold := cfg.Alerts.Threshold

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST · %s → %s", cli.FormatDate(day), cli.FormatDate(through))))
	fmt.Println()

	if len(points) == 0 {
		fmt.Println("  No scheduled activity in range.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, len(points))
	spark := make([]float64, len(points))
	for i, p := range points {
		flag := ""
		if p.Spending.LessThan(threshold) {
			flag = "low"
		}
		rows[i] = []string{
			cli.FormatDate(p.Date),
			flag,
			cli.FormatMoney(p.Spending, cur),
			cli.FormatMoney(p.Savings, cur),
		}
		spark[i] = p.Spending.InexactFloat64()
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "", "Spending", "Savings"},
		Rows:    rows,
		Left:    2,
	}))
	fmt.Printf("\n  Spending  %s\n\n", cli.RenderSparkline(spark))
	return nil
}
