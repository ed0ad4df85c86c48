package analysis

import (
	"fmt"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
)

// Report is a markdown-friendly data-gap summary of a view.
type Report struct {
	Name         string          `json:"name"`
	Rows         int             `json:"rows"`
	Years        []int           `json:"years"`
	Cols         []ColumnSummary `json:"columns"`
	Unidentified int             `json:"unidentified_neighborhoods"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures coverage and the most frequent values of one column.
type ColumnSummary struct {
	Name      string          `json:"name"`
	NonNull   int             `json:"non_null"`
	Missing   int             `json:"missing"`
	Unique    int             `json:"unique"`
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// Summarize builds the gap report of v. name labels the source in the output.
func Summarize(name string, v dataset.View) *Report {
	rep := &Report{Name: name, Rows: v.Len(), Years: v.Years()}
	for _, col := range dataset.Columns {
		counts := Tally(v, col, nil)
		nonNull := 0
		for _, c := range counts {
			nonNull += c.Count
		}
		s := ColumnSummary{
			Name:      col.Header(),
			NonNull:   nonNull,
			Missing:   v.Len() - nonNull,
			Unique:    len(counts),
			TopValues: Top(counts, 5),
		}
		if col == dataset.ColNeighborhood {
			for _, c := range counts {
				if isUnidentified(c.Value) {
					rep.Unidentified += c.Count
				}
			}
		}
		rep.Cols = append(rep.Cols, s)
	}
	if rep.Unidentified > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d records with an unidentified neighborhood", rep.Unidentified))
	}
	gaps := false
	for _, c := range rep.Cols {
		if c.Missing > 0 {
			gaps = true
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d records without %s", c.Missing, c.Name))
		}
	}
	if gaps {
		rep.Warnings = append(rep.Warnings, "missing values in several columns can reduce the precision of the analyses")
	}
	return rep
}

// Markdown renders the report in a compact sectioned layout.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	if len(r.Years) > 0 {
		ys := make([]string, len(r.Years))
		for i, y := range r.Years {
			ys[i] = fmt.Sprint(y)
		}
		fmt.Fprintf(&b, "Years: %s\n", strings.Join(ys, ", "))
	}
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: non-null %d, missing %.1f%%", c.Name, c.NonNull, missPct)
		if len(c.TopValues) > 0 {
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
		}
		b.WriteString("\n")
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

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
