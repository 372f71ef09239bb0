package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	want := []int{4, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LayoutRow(10, 3) = %v, want %v", got, want)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow(10, 0) should be nil")
	}
}

func TestMetricRowWidth(t *testing.T) {
	row := MetricRow([]Metric{
		{Label: "Spending", Value: "$100.00"},
		{Label: "Savings", Value: "$20.00"},
	}, 60)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
}

func TestSampleMinKeepsLowPoint(t *testing.T) {
	values := []float64{5, 4, 9, -2, 7, 8}
	labels := []string{"a", "b", "c", "d", "e", "f"}

	got, gotLabels := sampleMin(values, labels, 3)
	want := []float64{4, -2, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sampleMin = %v, want %v", got, want)
		}
	}
	if gotLabels[0] != "a" || gotLabels[2] != "f" {
		t.Errorf("labels = %v, want first a and last f", gotLabels)
	}
}

func TestBalanceChartHeight(t *testing.T) {
	chart := BalanceChart([]float64{100, 50, -10, 80}, []string{"Jan 1", "", "", "Jan 4"}, 20, 40, 5)
	lines := strings.Split(chart, "\n")
	// rows + axis + labels
	if len(lines) != 7 {
		t.Fatalf("chart has %d lines, want 7:\n%s", len(lines), chart)
	}
	if !strings.Contains(chart, "-10") {
		t.Errorf("chart should label the negative floor:\n%s", chart)
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{2000, "2k"},
		{2500, "2.5k"},
		{-1500, "-1.5k"},
		{3200000, "3.2M"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
