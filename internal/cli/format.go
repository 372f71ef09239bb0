// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

// FormatMoney formats an amount with thousands separators and two decimals.
// e.g., 1234.5 -> "$1,234.50", -12 -> "-$12.00"
func FormatMoney(d decimal.Decimal, currency string) string {
	sign := ""
	d = d.Round(2)
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + currency + fixed
	}
	return sign + currency + FormatNumber(n) + "." + frac
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatOrdinal returns n with its English suffix: 1st, 2nd, 11th, 122nd.
func FormatOrdinal(n int) string {
	suffix := []string{"th", "st", "nd", "rd", "th"}[min(n%10, 4)]
	if r := n % 100; r >= 11 && r <= 13 {
		suffix = "th"
	}
	return strconv.Itoa(n) + suffix
}

// FormatDate renders a date with its weekday, e.g. "Mon 2024-01-15".
func FormatDate(d civil.Date) string {
	return FormatDayOfWeek(d.In(time.UTC).Weekday()) + " " + d.String()
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(weekday time.Weekday) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && int(weekday) < len(days) {
		return days[weekday]
	}
	return "???"
}

var strideWords = map[int]string{1: "", 2: "other ", 3: "third ", 4: "fourth "}

// FormatFrequency describes a pattern in words. next is the transaction's
// upcoming occurrence, which supplies the weekday and calendar date.
func FormatFrequency(p calendar.Pattern, anchor int, next civil.Date) string {
	switch v := p.(type) {
	case calendar.Single:
		return "Once"
	case calendar.Daily:
		return "Every day"
	case calendar.Weekly:
		return "Every " + strideWords[v.Stride] + next.In(time.UTC).Weekday().String()
	case calendar.Monthly:
		switch v.Rule {
		case calendar.MonthFirst:
			return "First of every month"
		case calendar.MonthLast:
			return "Last of every month"
		default:
			return FormatOrdinal(anchor) + " of every month"
		}
	case calendar.Yearly:
		switch v.Rule {
		case calendar.FebruaryLast:
			return "Annually on 02-29 (02-28)"
		case calendar.LeapDay:
			return "Annually on 02-29 (03-01)"
		default:
			return fmt.Sprintf("Annually on %02d-%02d", int(next.Month), next.Day)
		}
	}
	return "Unknown"
}

// FormatMovement names what a transaction does to the spending balance.
func FormatMovement(t model.Transaction) string {
	switch {
	case t.Destination == model.Savings && t.Kind == model.Credit:
		return "To savings"
	case t.Destination == model.Savings:
		return "From savings"
	case t.Kind == model.Credit:
		return "Income"
	default:
		return "Payment"
	}
}

// FormatSigned formats t's value with the sign of its effect on spending.
func FormatSigned(t model.Transaction, currency string) string {
	if t.IsIncome() {
		return "+" + FormatMoney(t.Value, currency)
	}
	return FormatMoney(t.Value.Neg(), currency)
}
