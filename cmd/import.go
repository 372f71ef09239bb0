package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/source"
)

var flagDryRun bool

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Add scheduled transactions from a JSONL file or directory",
	Long: "Each line is one transaction, either in words:\n\n" +
		`  {"value":"1200","kind":"debit","destination":"spending","frequency":"monthly","start":"2024-02-01","monthly":"first"}` + "\n\n" +
		"or in the stored form written by `runway schedule --jsonl`. Bad lines are\n" +
		"reported and skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and report without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	files, err := source.ScanPath(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .jsonl files in %s", args[0])
	}

	var parsed []source.ParseResult
	bad := 0
	for _, path := range files {
		res := source.ParseFile(path)
		if res.Err != nil {
			return fmt.Errorf("reading %s: %w", path, res.Err)
		}
		for _, le := range res.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, le)
		}
		bad += res.ParseErrors
		parsed = append(parsed, res)
		log.Debug().Str("file", path).Int("lines", res.Lines).Int("errors", res.ParseErrors).Msg("parsed")
	}

	total := 0
	for _, res := range parsed {
		total += len(res.Transactions)
	}
	if flagDryRun {
		fmt.Printf("  %d transaction(s) ready, %d bad line(s) across %d file(s)\n", total, bad, len(files))
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := commandContext()
	defer cancel()

	owner := ownerName()
	added := 0
	var errs []error
	for _, res := range parsed {
		for _, t := range res.Transactions {
			if _, err := st.CreateTransaction(ctx, owner, t); err != nil {
				errs = append(errs, err)
				continue
			}
			added++
		}
	}

	fmt.Printf("  Imported %d of %d transaction(s) for %s", added, total, owner)
	if bad > 0 {
		fmt.Printf(", skipped %d bad line(s)", bad)
	}
	fmt.Println()
	return errors.Join(errs...)
}
