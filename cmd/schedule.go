package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui"
)

var (
	flagJSONL bool
	addEntry  source.RawEntry
	addAmount string
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"ls"},
	Short:   "List scheduled transactions by next occurrence",
	RunE:    runScheduleList,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a transaction (interactive without --amount)",
	Example: "  runway schedule add --amount 1200 --kind debit --frequency monthly --start 2024-02-01\n" +
		"  runway schedule add --amount 50 --kind credit --dest savings --frequency weekly --stride 2",
	RunE: runScheduleAdd,
}

var scheduleRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Remove a scheduled transaction",
	Args:    cobra.ExactArgs(1),
	RunE:    runScheduleRm,
}

func init() {
	scheduleCmd.Flags().BoolVar(&flagJSONL, "jsonl", false, "Write the schedule as importable JSON lines")

	f := scheduleAddCmd.Flags()
	f.StringVar(&addAmount, "amount", "", "Amount, e.g. 1200.00")
	f.StringVar(&addEntry.Kind, "kind", "debit", "credit or debit")
	f.StringVar(&addEntry.Destination, "dest", "spending", "spending or savings")
	f.StringVar(&addEntry.Frequency, "frequency", "once", "once, daily, weekly, monthly or yearly")
	f.StringVar(&addEntry.Start, "start", "", "First occurrence (YYYY-MM-DD, default today)")
	f.StringVar(&addEntry.Monthly, "monthly", "day", "Monthly rule: first, last or day")
	f.IntVar(&addEntry.Stride, "stride", 1, "Weekly interval, 1 through 4")
	f.StringVar(&addEntry.LeapFallback, "leap-fallback", "", "For Feb 29 yearly starts: feb28 or mar1")

	scheduleCmd.AddCommand(scheduleAddCmd, scheduleRmCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleList(_ *cobra.Command, _ []string) error {
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
	txns, err := st.ListTransactions(ctx, owner)
	if err != nil {
		return err
	}
	if flagJSONL {
		return source.Encode(os.Stdout, txns)
	}

	entries, err := pipeline.Upcoming(txns, day)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("\n  Nothing scheduled for %s. Add one with `runway schedule add`.\n\n", owner)
		return nil
	}

	cur := cfg.Display.Currency
	credits, debits := pipeline.SplitIncome(entries)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCHEDULE · %s", owner)))
	fmt.Println()
	for _, group := range []struct {
		title   string
		entries []pipeline.Entry
	}{
		{"Money in", credits},
		{"Money out", debits},
	} {
		if len(group.entries) == 0 {
			continue
		}
		total := decimal.Zero
		rows := make([][]string, 0, len(group.entries)+2)
		for _, e := range group.entries {
			tx := e.Transaction
			if tx.IsIncome() {
				total = total.Add(tx.Value)
			} else {
				total = total.Sub(tx.Value)
			}
			rows = append(rows, []string{
				cli.FormatDate(e.Next),
				cli.FormatMovement(tx),
				cli.FormatFrequency(tx.Pattern, tx.Day, e.Next),
				tx.ID,
				cli.FormatSigned(tx, cur),
			})
		}
		rows = append(rows, []string{"---"}, []string{"Total", "", "", "", cli.FormatMoney(total, cur)})
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   group.title,
			Headers: []string{"Next", "Type", "Frequency", "ID", "Amount"},
			Rows:    rows,
			Left:    4,
		}))
	}
	return nil
}

func runScheduleAdd(_ *cobra.Command, _ []string) error {
	day, err := today()
	if err != nil {
		return err
	}

	var t model.Transaction
	if addAmount == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.New("--amount is required when not running in a terminal")
		}
		vals := &tui.TransactionValues{}
		if err := tui.NewTransactionForm(vals, day).Run(); err != nil {
			return err
		}
		t, err = vals.Transaction()
	} else {
		raw := addEntry
		raw.Value, err = decimal.NewFromString(addAmount)
		if err != nil {
			return fmt.Errorf("--amount %q: %w", addAmount, err)
		}
		if raw.Start == "" {
			raw.Start = day.String()
		}
		t, err = raw.Transaction()
	}
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

	created, err := st.CreateTransaction(ctx, ownerName(), t)
	if err != nil {
		return err
	}
	next, err := pipeline.Upcoming([]model.Transaction{created}, day)
	if err != nil {
		return err
	}

	fmt.Printf("  Added %s %s (%s), next on %s\n",
		cli.FormatMovement(created),
		cli.FormatSigned(created, cfg.Display.Currency),
		cli.FormatFrequency(created.Pattern, created.Day, next[0].Next),
		cli.FormatDate(next[0].Next),
	)
	fmt.Printf("  ID: %s\n", created.ID)
	return nil
}

func runScheduleRm(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := st.DeleteTransaction(ctx, ownerName(), args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no scheduled transaction %s for %s", args[0], ownerName())
		}
		return err
	}
	fmt.Printf("  Removed %s\n", args[0])
	return nil
}
