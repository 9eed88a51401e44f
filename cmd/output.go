package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"promptchart/internal/models"
	"promptchart/pkg/category"
)

const barWidth = 30

// renderCategories prints one row per category with a proportional bar.
func renderCategories(w io.Writer, cats []category.Category) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Percent", ""})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, c := range cats {
		table.Append([]string{c.Name, formatPercent(c.Value), bar(c.Value)})
	}
	table.Render()
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%g%%", v)
}

func bar(v float64) string {
	n := int(v/100*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("#", n)
}

// sourceTag colours the extractor name for terminal output.
func sourceTag(source string) string {
	switch source {
	case "pattern":
		return color.GreenString(source)
	case "model":
		return color.CyanString(source)
	default:
		return color.YellowString(source)
	}
}

func statusTag(status string) string {
	switch status {
	case models.AnalysisStatusDone:
		return color.GreenString(status)
	case models.AnalysisStatusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

// summarize renders categories as "a 60%, b 40%" for one-line listings.
func summarize(cats []category.Category, max int) string {
	parts := make([]string, 0, len(cats))
	for i, c := range cats {
		if i == max {
			parts = append(parts, fmt.Sprintf("+%d more", len(cats)-max))
			break
		}
		parts = append(parts, c.Name+" "+formatPercent(c.Value))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
