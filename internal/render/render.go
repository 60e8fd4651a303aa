// Package render writes the static HTML report for a finished audit: one
// index page with histogram charts and the threshold distribution, plus one
// page per audited file with its lines grouped by attribution block.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/gitkarma/internal/audit"
	"github.com/Sumatoshi-tech/gitkarma/pkg/karma"
	"github.com/Sumatoshi-tech/gitkarma/pkg/stats"
)

const (
	// DefaultExtension names report pages when no extension is configured.
	DefaultExtension = ".html"

	indexBaseName = "index"
	shortHashLen  = 8

	dirPerm  = 0o755
	filePerm = 0o644

	blockChartColor = "#4e79a7"
	runChartColor   = "#59a14f"

	commitPlaceholder = "{commit}"
	authorPlaceholder = "{author}"
)

// Options configures the report writer.
type Options struct {
	// Dir is the output directory, created if missing.
	Dir string

	// Extension names the generated pages. Empty means DefaultExtension.
	Extension string

	// CommitURL is a link template with a {commit} placeholder. Empty
	// disables commit links.
	CommitURL string

	// AuthorURL is a link template with an {author} placeholder. Empty
	// disables author links.
	AuthorURL string

	// Thresholds drive the distribution table. Empty means the defaults.
	Thresholds []int

	// AuthorKarma resolves per-block karma badges on file pages.
	AuthorKarma map[string]int
}

// Renderer writes one report per Write call.
type Renderer struct {
	opts Options
}

// NewRenderer creates a report writer, filling in option defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}

	if len(opts.Thresholds) == 0 {
		opts.Thresholds = stats.DefaultThresholds
	}

	return &Renderer{opts: opts}
}

// PageName maps a repository path to its report page name: every path
// separator becomes an underscore and the extension is appended. The result
// depends on nothing but its inputs.
func PageName(repoPath, extension string) string {
	return strings.ReplaceAll(repoPath, "/", "_") + extension
}

// Write renders the index page and one page per collected file into the
// output directory.
func (r *Renderer) Write(result *audit.Result) error {
	err := os.MkdirAll(r.opts.Dir, dirPerm)
	if err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	err = r.writeIndex(result)
	if err != nil {
		return err
	}

	for i := range result.Files {
		err = r.writeFilePage(&result.Files[i])
		if err != nil {
			return err
		}
	}

	return nil
}

// indexView is the template model for the index page.
type indexView struct {
	Style template.CSS

	CommitShort string
	CommitHref  string

	FilesTotal         int
	FilesWithFullKarma int
	FilesPct           string
	TotalLines         int
	TotalKarmaLines    int
	LinesPct           string
	AuthorCount        int

	BlockChart template.HTML
	RunChart   template.HTML

	Distribution []distRow
	Files        []fileLink
}

// distRow presents one threshold over both histograms side by side.
type distRow struct {
	Threshold int

	BlockGroups   int
	BlockGroupPct string
	BlockLines    int
	BlockLinePct  string

	RunGroups   int
	RunGroupPct string
	RunLines    int
	RunLinePct  string
}

type fileLink struct {
	Href     string
	Path     string
	Language string
}

func (r *Renderer) writeIndex(result *audit.Result) error {
	s := result.Stats

	blockChart, err := histogramChart("blocks", s.BlockLengths, blockChartColor)
	if err != nil {
		return err
	}

	runChart, err := histogramChart("runs", s.KarmaRuns, runChartColor)
	if err != nil {
		return err
	}

	view := indexView{
		Style:              pageStyle,
		CommitShort:        shortHash(result.CommitID),
		CommitHref:         expandLink(r.opts.CommitURL, commitPlaceholder, result.CommitID),
		FilesTotal:         s.FilesTotal,
		FilesWithFullKarma: s.FilesWithFullKarma,
		FilesPct:           formatPct(s.FilesWithFullKarma, s.FilesTotal),
		TotalLines:         s.TotalLines,
		TotalKarmaLines:    s.TotalKarmaLines,
		LinesPct:           formatPct(s.TotalKarmaLines, s.TotalLines),
		AuthorCount:        len(s.AuthorLines),
		BlockChart:         blockChart,
		RunChart:           runChart,
		Distribution:       buildDistRows(s, r.opts.Thresholds),
	}

	for i := range result.Files {
		file := &result.Files[i]
		view.Files = append(view.Files, fileLink{
			Href:     PageName(file.Path, r.opts.Extension),
			Path:     file.Path,
			Language: file.Language,
		})
	}

	return r.writePage(indexBaseName+r.opts.Extension, indexTmpl, view)
}

// buildDistRows zips the per-threshold rows of both histograms; Distribution
// returns them in the same threshold order.
func buildDistRows(s *stats.Stats, thresholds []int) []distRow {
	blockRows := stats.Distribution(s.BlockLengths, s.TotalLines, thresholds)
	runRows := stats.Distribution(s.KarmaRuns, s.TotalLines, thresholds)

	rows := make([]distRow, len(blockRows))
	for i, blockRow := range blockRows {
		runRow := runRows[i]

		rows[i] = distRow{
			Threshold:     blockRow.Threshold,
			BlockGroups:   blockRow.GroupCount,
			BlockGroupPct: fmt.Sprintf("%.1f%%", blockRow.GroupPct),
			BlockLines:    blockRow.LineCount,
			BlockLinePct:  fmt.Sprintf("%.1f%%", blockRow.LinePct),
			RunGroups:     runRow.GroupCount,
			RunGroupPct:   fmt.Sprintf("%.1f%%", runRow.GroupPct),
			RunLines:      runRow.LineCount,
			RunLinePct:    fmt.Sprintf("%.1f%%", runRow.LinePct),
		}
	}

	return rows
}

// filePageView is the template model for one file page.
type filePageView struct {
	Style     template.CSS
	Path      string
	Language  string
	IndexHref string
	Blocks    []blockView
}

type blockView struct {
	CommitShort string
	CommitHref  string
	Author      string
	AuthorHref  string
	Summary     string
	Karma       int
	HasKarma    bool
	Lines       []lineView
}

type lineView struct {
	Number int
	Text   string
}

func (r *Renderer) writeFilePage(file *audit.FileResult) error {
	view := filePageView{
		Style:     pageStyle,
		Path:      file.Path,
		Language:  file.Language,
		IndexHref: indexBaseName + r.opts.Extension,
		Blocks:    make([]blockView, 0, len(file.Blocks)),
	}

	for i := range file.Blocks {
		block := &file.Blocks[i]
		value := karma.Resolve(block, r.opts.AuthorKarma)
		identity := karma.Identity(block.Meta)

		blockV := blockView{
			CommitShort: shortHash(block.CommitID),
			CommitHref:  expandLink(r.opts.CommitURL, commitPlaceholder, block.CommitID),
			Author:      block.Meta.Author(),
			AuthorHref:  expandLink(r.opts.AuthorURL, authorPlaceholder, identity),
			Summary:     block.Meta.Summary(),
			Karma:       value,
			HasKarma:    value > 0,
		}

		if blockV.Author == "" {
			blockV.Author = identity
		}

		for _, line := range block.Lines {
			blockV.Lines = append(blockV.Lines, lineView{Number: line.Number, Text: line.Text})
		}

		view.Blocks = append(view.Blocks, blockV)
	}

	return r.writePage(PageName(file.Path, r.opts.Extension), fileTmpl, view)
}

func (r *Renderer) writePage(name string, tmpl *template.Template, view any) error {
	var buf bytes.Buffer

	err := tmpl.Execute(&buf, view)
	if err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}

	target := filepath.Join(r.opts.Dir, name)

	err = os.WriteFile(target, buf.Bytes(), filePerm)
	if err != nil {
		return fmt.Errorf("write page %s: %w", name, err)
	}

	return nil
}

// expandLink substitutes the placeholder in a URL template, escaping the
// value for a path segment. An empty template yields no link.
func expandLink(urlTemplate, placeholder, value string) string {
	if urlTemplate == "" || value == "" {
		return ""
	}

	return strings.ReplaceAll(urlTemplate, placeholder, url.PathEscape(value))
}

// formatPct renders part/whole as a percentage with one decimal, "0.0"
// when the whole is zero.
func formatPct(part, whole int) string {
	if whole == 0 {
		return "0.0"
	}

	return fmt.Sprintf("%.1f", float64(part)/float64(whole)*100)
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}

	return hash[:shortHashLen]
}
