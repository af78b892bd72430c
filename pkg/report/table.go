package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/summary"
)

// WriteTable prints the comparison table followed by the totals line.
func WriteTable(w io.Writer, d Data) error {
	v := build(d)
	if len(d.Groups) == 0 {
		_, err := fmt.Fprintln(w, NoConfigurations)
		return err
	}
	if len(v.Rows) == 0 {
		_, err := fmt.Fprintf(w, "No data available for Write Policy = '%s'\n", v.Filter)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tASSOC\tREPL\tWRITE\tHITS\tMISSES\tTOTAL\tHIT RATE")
	fmt.Fprintln(tw, "-\t-----\t----\t-----\t----\t------\t-----\t--------")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Index+1, assocString(r.Associativity), orDash(r.ReplacementPolicy), orDash(r.WritePolicy),
			r.Stats.Hits, r.Stats.Misses, r.Stats.Total, percent(r.HitRate))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d group(s), write policy %s: %d hits, %d misses, hit rate %s\n",
		len(v.Rows), v.Filter, v.Totals.Hits, v.Totals.Misses, percent(v.Totals.HitRate()))
	return err
}

// WriteCSV writes a header row and one row per compared group.
func WriteCSV(w io.Writer, d Data) error {
	v := build(d)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"index", "associativity", "replacement_policy", "write_policy",
		"hits", "misses", "total", "hit_rate",
	}); err != nil {
		return err
	}
	for _, r := range v.Rows {
		if err := cw.Write([]string{
			strconv.Itoa(r.Index),
			assocString(r.Associativity),
			r.ReplacementPolicy,
			r.WritePolicy,
			strconv.Itoa(r.Stats.Hits),
			strconv.Itoa(r.Stats.Misses),
			strconv.Itoa(r.Stats.Total),
			strconv.FormatFloat(r.HitRate, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonGroup struct {
	Index   int             `json:"index"`
	Config  logparse.Config `json:"config"`
	Stats   summary.Stats   `json:"stats"`
	HitRate float64         `json:"hit_rate"`
	Entries []string        `json:"entries"`
}

type jsonReport struct {
	Source string                    `json:"source,omitempty"`
	Filter summary.WritePolicyFilter `json:"write_policy"`
	Groups []jsonGroup               `json:"groups"`
	Series []summary.Series          `json:"series"`
	Totals summary.Stats             `json:"totals"`
}

// WriteJSON writes the filtered groups, chart series and totals as indented JSON.
func WriteJSON(w io.Writer, d Data) error {
	v := build(d)
	out := jsonReport{
		Source: v.Source,
		Filter: v.Filter,
		Groups: make([]jsonGroup, 0, len(v.Rows)),
		Series: v.Series,
		Totals: v.Totals,
	}
	for _, r := range v.Rows {
		out.Groups = append(out.Groups, jsonGroup{
			Index:   r.Index,
			Config:  d.Groups[r.Index].Config,
			Stats:   r.Stats,
			HitRate: r.HitRate,
			Entries: d.Groups[r.Index].Entries,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
