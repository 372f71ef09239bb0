package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
)

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List owners and their balances",
	RunE:  runOwners,
}

var ownersAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create an owner with zero balances",
	Args:  cobra.ExactArgs(1),
	RunE:  runOwnersAdd,
}

var seedCmd = &cobra.Command{
	Use:   "seed AMOUNT",
	Short: "Add a starting amount to spending",
	Long: "Seeding adds AMOUNT to the spending balance and marks the owner ready for\n" +
		"refreshes. Seeding again adds again.",
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	ownersCmd.AddCommand(ownersAddCmd)
	rootCmd.AddCommand(ownersCmd, seedCmd)
}

func runOwners(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	owners, err := st.ListOwners(ctx)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		fmt.Println("  No owners yet. Create one with `runway setup` or `runway owners add NAME`.")
		return nil
	}

	cur := cfg.Display.Currency
	rows := make([][]string, 0, len(owners))
	for _, o := range owners {
		f, err := st.GetFunds(ctx, o.Name)
		if err != nil {
			return err
		}
		seeded := "yes"
		if !f.Seeded {
			seeded = "no"
		}
		rows = append(rows, []string{
			o.Name,
			seeded,
			f.LastUpdate.String(),
			cli.FormatMoney(f.Spending, cur),
			cli.FormatMoney(f.Savings, cur),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Owners (%s)", st.Backend()),
		Headers: []string{"Owner", "Seeded", "Updated", "Spending", "Savings"},
		Rows:    rows,
		Left:    3,
	}))
	return nil
}

func runOwnersAdd(_ *cobra.Command, args []string) error {
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

	if err := st.CreateOwner(ctx, args[0], day); err != nil {
		return err
	}
	fmt.Printf("  Created %s. Seed a starting balance with `runway seed AMOUNT --owner %s`.\n", args[0], args[0])
	return nil
}

func runSeed(_ *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[0], err)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	funds, err := st.Seed(ctx, ownerName(), amount)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderKeyValue("Spending", cli.FormatMoney(funds.Spending, cfg.Display.Currency)))
	return nil
}
