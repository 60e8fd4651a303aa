package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/gitkarma/pkg/mathutil"
)

// maxAuthorRows caps the author rollup table in the text report.
const maxAuthorRows = 15

// TextRenderer writes the audit summary as plain text.
type TextRenderer struct {
	// Thresholds used for both distribution sections.
	Thresholds []int

	// NoColor disables colored section headers.
	NoColor bool
}

// NewTextRenderer creates a text renderer with the default thresholds.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Thresholds: DefaultThresholds}
}

// Render writes the summary lines, both per-threshold distributions, and
// the author rollup table.
func (r *TextRenderer) Render(w io.Writer, s *Stats) error {
	r.writeSummary(w, s)

	r.writeHeader(w, "Same-commit block spans")
	writeDistribution(w, Distribution(s.BlockLengths, s.TotalLines, r.Thresholds))

	r.writeHeader(w, "Cross-commit karma runs")
	writeDistribution(w, Distribution(s.KarmaRuns, s.TotalLines, r.Thresholds))

	if len(s.AuthorLines) > 0 {
		r.writeHeader(w, "Attributed authors")
		writeAuthorTable(w, s.AuthorLines)
	}

	return nil
}

func (r *TextRenderer) writeSummary(w io.Writer, s *Stats) {
	fmt.Fprintf(w, "%d%% files has absolutely good karma (%d/%d)\n",
		roundPercent(s.FilesWithFullKarma, s.FilesTotal), s.FilesWithFullKarma, s.FilesTotal)
	fmt.Fprintf(w, "%d%% of lines has good karma (%d/%d)\n",
		roundPercent(s.TotalKarmaLines, s.TotalLines), s.TotalKarmaLines, s.TotalLines)
}

func (r *TextRenderer) writeHeader(w io.Writer, title string) {
	fmt.Fprintln(w)

	if r.NoColor {
		fmt.Fprintf(w, "%s:\n", title)

		return
	}

	color.New(color.FgBlue).Fprintf(w, "%s:\n", title)
}

func writeDistribution(w io.Writer, rows []Row) {
	for _, row := range rows {
		fmt.Fprintf(w, "%d: %.0f%% groups (%d) %.0f%% lines (%d)\n",
			row.Threshold, row.GroupPct, row.GroupCount, row.LinePct, row.LineCount)
	}
}

func writeAuthorTable(w io.Writer, authorLines map[string]int) {
	type authorRow struct {
		identity string
		lines    int
	}

	rows := make([]authorRow, 0, len(authorLines))
	for identity, lines := range authorLines {
		rows = append(rows, authorRow{identity: identity, lines: lines})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].lines != rows[j].lines {
			return rows[i].lines > rows[j].lines
		}

		return rows[i].identity < rows[j].identity
	})

	shown := mathutil.Min(len(rows), maxAuthorRows)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Author", "Lines"})

	for _, row := range rows[:shown] {
		tbl.AppendRow(table.Row{row.identity, humanize.Comma(int64(row.lines))})
	}

	if len(rows) > shown {
		tbl.AppendFooter(table.Row{"", fmt.Sprintf("and %d more", len(rows)-shown)})
	}

	tbl.Render()
}

func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}

	return int(float64(part)/float64(whole)*percentScale + 0.5)
}
