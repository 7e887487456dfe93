package analysis

import (
	"fmt"
	"math"
	"strings"
)

// maxCellWidth truncates long preview cells such as multi-line addresses.
const maxCellWidth = 60

// Markdown renders the summary, schema, correlation matrix and preview rows.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n", len(r.Cols))
	fmt.Fprintf(&b, "Missing cells: %d\n\n", r.Missing)

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %d = %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, c.Missing, missPct)
		switch c.Kind {
		case "numeric":
			fmt.Fprintf(&b, "; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
			if c.OutlierThreshold > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
			}
		case "categorical":
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
			}
			if c.Unique > len(c.TopValues) {
				fmt.Fprintf(&b, "; unique=%d", c.Unique)
			}
		case "text":
			fmt.Fprintf(&b, "; unique=%d; e.g., ", c.Unique)
			for i, ex := range c.ExampleTexts {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(clip(safeVal(ex)))
			}
		}
		b.WriteString("\n")
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		b.WriteString("| |")
		for _, name := range r.Corr.Columns {
			fmt.Fprintf(&b, " %s |", name)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---|", len(r.Corr.Columns)))
		b.WriteString("\n")
		for i, name := range r.Corr.Columns {
			fmt.Fprintf(&b, "| %s |", name)
			for _, v := range r.Corr.Values[i] {
				if math.IsNaN(v) {
					b.WriteString(" n/a |")
					continue
				}
				fmt.Fprintf(&b, " %.3f |", v)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("|")
		for _, c := range r.Cols {
			fmt.Fprintf(&b, " %s |", safeName(c.Name))
		}
		b.WriteString("\n|")
		b.WriteString(strings.Repeat("---|", len(r.Cols)))
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("|")
			for i := range r.Cols {
				val := ""
				if i < len(row) {
					val = row[i]
				}
				fmt.Fprintf(&b, " %s |", clip(safeVal(val)))
			}
			b.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func clip(s string) string {
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-3]) + "..."
	}
	return s
}
