package report

import (
	"fmt"
	"io"
	"strings"
)

const mdBarWidth = 20

// WriteMarkdown writes a Markdown summary suitable for terminal rendering.
func WriteMarkdown(w io.Writer, d Data) error {
	v := build(d)
	var b strings.Builder

	b.WriteString("# Cache Simulation Report\n\n")
	if len(d.Groups) == 0 {
		b.WriteString("> " + NoConfigurations + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	if v.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", v.Source)
	}
	if len(v.Rows) == 0 {
		fmt.Fprintf(&b, "> No data available for Write Policy = '%s'\n", v.Filter)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "**Write policy:** %s · **Groups:** %d · **Hits:** %d · **Misses:** %d · **Hit rate:** %s\n\n",
		v.Filter, len(v.Rows), v.Totals.Hits, v.Totals.Misses, percent(v.Totals.HitRate()))

	b.WriteString("## Comparison\n\n")
	b.WriteString("| # | Assoc | Repl | Write | Hits | Misses | Hit rate |\n")
	b.WriteString("|---|------:|------|-------|-----:|-------:|---------:|\n")
	for _, r := range v.Rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %d | %d | %s |\n",
			r.Index+1, assocString(r.Associativity), orDash(r.ReplacementPolicy), orDash(r.WritePolicy),
			r.Stats.Hits, r.Stats.Misses, percent(r.HitRate))
	}

	b.WriteString("\n## Hit rate by associativity\n\n")
	for _, s := range v.Series {
		fmt.Fprintf(&b, "**%s**\n\n```\n", orDash(s.ReplacementPolicy))
		for _, bar := range s.Bars {
			fmt.Fprintf(&b, "assoc %-3d %s %s\n", bar.Associativity, textBar(bar.HitRate, mdBarWidth), percent(bar.HitRate))
		}
		b.WriteString("```\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// textBar draws r in [0..1] as a fixed-width bar of block characters.
func textBar(r float64, width int) string {
	n := int(r*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
