package tui

import (
	"errors"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// TransactionValues holds the answers of the add-transaction form.
type TransactionValues struct {
	Value        string
	Kind         string
	Destination  string
	Frequency    string
	Start        string
	Monthly      string
	Stride       string
	LeapFallback string
}

// Transaction builds the scheduled transaction the answers describe.
func (v TransactionValues) Transaction() (model.Transaction, error) {
	amount, err := parseAmount(v.Value)
	if err != nil {
		return model.Transaction{}, err
	}
	stride, _ := strconv.Atoi(v.Stride)

	raw := source.RawEntry{
		Value:       amount,
		Kind:        v.Kind,
		Destination: v.Destination,
		Frequency:   v.Frequency,
		Start:       strings.TrimSpace(v.Start),
		Stride:      stride,
	}
	if v.Frequency == "monthly" {
		raw.Monthly = v.Monthly
	}
	if v.Frequency == "yearly" && isLeapDay(raw.Start) {
		raw.LeapFallback = v.LeapFallback
	}
	return raw.Transaction()
}

// NewTransactionForm builds the add-transaction form. Groups that do not
// apply to the chosen frequency are hidden.
func NewTransactionForm(vals *TransactionValues, today civil.Date) *huh.Form {
	if vals.Start == "" {
		vals.Start = today.String()
	}
	if vals.Stride == "" {
		vals.Stride = "1"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&vals.Value).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Credit (money in)", string(model.Credit)),
					huh.NewOption("Debit (money out)", string(model.Debit)),
				).
				Value(&vals.Kind),
			huh.NewSelect[string]().
				Title("Balance").
				Description("Savings credits move money out of spending into savings.").
				Options(
					huh.NewOption("Spending", string(model.Spending)),
					huh.NewOption("Savings", string(model.Savings)),
				).
				Value(&vals.Destination),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How often?").
				Options(
					huh.NewOption("Once", "once"),
					huh.NewOption("Daily", "daily"),
					huh.NewOption("Weekly", "weekly"),
					huh.NewOption("Monthly", "monthly"),
					huh.NewOption("Yearly", "yearly"),
				).
				Value(&vals.Frequency),
			huh.NewInput().
				Title("First date").
				Description("YYYY-MM-DD").
				Value(&vals.Start).
				Validate(func(s string) error {
					_, err := civil.ParseDate(strings.TrimSpace(s))
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Every").
				Options(
					huh.NewOption("week", "1"),
					huh.NewOption("other week", "2"),
					huh.NewOption("third week", "3"),
					huh.NewOption("fourth week", "4"),
				).
				Value(&vals.Stride),
		).WithHideFunc(func() bool { return vals.Frequency != "weekly" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which day of the month?").
				Options(
					huh.NewOption("Same day as the first date", "day"),
					huh.NewOption("First of the month", "first"),
					huh.NewOption("Last of the month", "last"),
				).
				Value(&vals.Monthly),
		).WithHideFunc(func() bool { return vals.Frequency != "monthly" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("In years without February 29, use").
				Options(
					huh.NewOption("February 28", "feb28"),
					huh.NewOption("March 1", "mar1"),
				).
				Value(&vals.LeapFallback),
		).WithHideFunc(func() bool { return vals.Frequency != "yearly" || !isLeapDay(vals.Start) }),
	)
}

// SetupValues holds the answers of the first-run setup form.
type SetupValues struct {
	Owner    string
	Amount   string
	Currency string
	Theme    string
}

// StartingAmount parses the amount to seed spending with.
func (v SetupValues) StartingAmount() (decimal.Decimal, error) {
	return parseAmount(v.Amount)
}

// NewSetupForm builds the first-run setup form.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description("Tell runway who you are and what is in your spending account today.\n\nPress Enter to begin."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Owner name").
				Value(&vals.Owner).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("owner name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Current spending balance").
				Placeholder("0.00").
				Value(&vals.Amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewInput().
				Title("Currency symbol").
				Value(&vals.Currency),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d.Round(2), nil
}

func isLeapDay(s string) bool {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	return err == nil && d.Month == 2 && d.Day == 29
}
