// Package report renders parsed cache-simulation logs as tables, CSV, JSON,
// HTML and Markdown.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/summary"
)

// ErrUnknownFormat is returned by ParseFormat and Write for unsupported formats.
var ErrUnknownFormat = errors.New("report: unknown format")

// NoConfigurations is shown when a log holds no groups.
const NoConfigurations = "No configurations found in the log. Please check the file format."

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatHTML, FormatMarkdown}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	if strings.EqualFold(s, "md") {
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Data is the input of every writer.
type Data struct {
	Source string
	Groups []logparse.Group
	Filter summary.WritePolicyFilter
}

// view is the precomputed form shared by the writers.
type view struct {
	Source string
	Filter summary.WritePolicyFilter
	Groups []groupView
	Rows   []summary.Row
	Series []summary.Series
	Totals summary.Stats
	Empty  bool
	Chart  chart
}

type groupView struct {
	Index   int
	Label   string
	Fields  [][2]string
	Stats   summary.Stats
	HitRate float64
	Entries []string
}

func build(d Data) view {
	filter := d.Filter
	if filter == "" {
		filter = summary.FilterAll
	}
	rows := summary.Compare(d.Groups, filter)

	v := view{
		Source: d.Source,
		Filter: filter,
		Rows:   rows,
		Series: summary.BuildSeries(rows),
		Totals: summary.Totals(rows),
		Empty:  len(d.Groups) == 0,
	}
	for _, r := range rows {
		g := d.Groups[r.Index]
		v.Groups = append(v.Groups, groupView{
			Index:   r.Index,
			Label:   r.Label,
			Fields:  g.Config.Fields(),
			Stats:   r.Stats,
			HitRate: r.HitRate,
			Entries: g.Entries,
		})
	}
	return v
}

// Write renders d in format f.
func Write(w io.Writer, f Format, d Data) error {
	switch f {
	case FormatTable:
		return WriteTable(w, d)
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatHTML:
		return WriteHTML(w, d)
	case FormatMarkdown:
		return WriteMarkdown(w, d)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func percent(r float64) string { return fmt.Sprintf("%.2f%%", r*100) }

func assocString(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
