// Package report renders bucket counts and catalog ratios for people.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/peekknuf/metastats/internal/bucket"
	"github.com/peekknuf/metastats/internal/profiler"
)

// Mode selects the table format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// HistogramOptions controls the text histogram.
type HistogramOptions struct {
	Width int    // Longest bar in characters; 40 when zero
	Bar   string // Bar glyph; "#" when empty
}

// Histogram writes one line per bucket with a bar proportional to its count.
func Histogram(w io.Writer, counts *bucket.Counts, opts HistogramOptions) error {
	width := opts.Width
	if width <= 0 {
		width = 40
	}
	glyph := opts.Bar
	if glyph == "" {
		glyph = "#"
	}

	pairs := counts.Pairs()
	nameWidth := 0
	for _, p := range pairs {
		if len(p.Name) > nameWidth {
			nameWidth = len(p.Name)
		}
	}
	max := counts.Max()

	for _, p := range pairs {
		n := 0
		if max > 0 {
			n = p.Count * width / max
		}
		if n == 0 && p.Count > 0 {
			n = 1
		}
		_, err := fmt.Fprintf(w, "%*s | %-*s %s\n",
			nameWidth, p.Name, width, strings.Repeat(glyph, n), humanize.Comma(int64(p.Count)))
		if err != nil {
			return err
		}
	}
	return nil
}

// Table writes the counts with each bucket's share of the total and a total
// footer.
func Table(w io.Writer, counts *bucket.Counts, mode Mode, title string) error {
	t := table.NewWriter()
	if mode == ASCII {
		t.SetStyle(table.StyleLight)
	}
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(table.Row{"Bucket", "Datasets", "Share"})

	total := counts.Total()
	for _, p := range counts.Pairs() {
		share := profiler.Ratio{Count: p.Count, Total: total}.Percent()
		t.AppendRow(table.Row{p.Name, humanize.Comma(int64(p.Count)), fmt.Sprintf("%.1f%%", share)})
	}
	t.AppendFooter(table.Row{"Total", humanize.Comma(int64(total)), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	var out string
	switch mode {
	case Markdown:
		out = t.RenderMarkdown()
	default:
		out = t.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// NamedRatio labels a ratio for printing.
type NamedRatio struct {
	Label string
	profiler.Ratio
}

// FormatRatio renders "<count> of <total> (<pct>%)".
func FormatRatio(r profiler.Ratio) string {
	return fmt.Sprintf("%s of %s (%.4g%%)",
		humanize.Comma(int64(r.Count)), humanize.Comma(int64(r.Total)), r.Percent())
}

// Ratios writes one "<label>: <count> of <total> (<pct>%)" line per ratio.
func Ratios(w io.Writer, ratios []NamedRatio) error {
	for _, r := range ratios {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Label, FormatRatio(r.Ratio)); err != nil {
			return err
		}
	}
	return nil
}

// Summary holds the catalog-wide numbers printed above the histogram.
type Summary struct {
	Datasets   int
	Columns    int
	Categories int
	// CategoriesEstimate is printed when it differs from Categories.
	CategoriesEstimate uint64
}

// WriteSummary writes the catalog totals.
func WriteSummary(w io.Writer, s Summary) error {
	lines := []string{
		fmt.Sprintf("Number of datasets: %s", humanize.Comma(int64(s.Datasets))),
		fmt.Sprintf("Number of columns: %s", humanize.Comma(int64(s.Columns))),
		fmt.Sprintf("Total number of categories: %s", humanize.Comma(int64(s.Categories))),
	}
	if s.CategoriesEstimate != 0 && s.CategoriesEstimate != uint64(s.Categories) {
		lines[2] += fmt.Sprintf(" (estimated %s)", humanize.Comma(int64(s.CategoriesEstimate)))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// TopValues writes the most frequent items of a field.
func TopValues(w io.Writer, field string, values []profiler.ValueCount) error {
	if len(values) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Most common %s:\n", field); err != nil {
		return err
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "  %s (%s)\n", v.Value, humanize.Comma(int64(v.Count))); err != nil {
			return err
		}
	}
	return nil
}
