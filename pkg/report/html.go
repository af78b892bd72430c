package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/ja7ad/cachevis/pkg/summary"
)

const (
	chartWidth  = 640.0
	chartHeight = 240.0
	chartPad    = 32.0
	barWidth    = 28.0
	barGap      = 8.0
	seriesGap   = 24.0
)

var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948"}

type chartBar struct {
	X, Y, W, H float64
	Color      string
	Label      string
	Title      string
}

type chartLegend struct {
	Color string
	Name  string
}

type chart struct {
	Width, Height float64
	Baseline      float64
	Bars          []chartBar
	Legend        []chartLegend
}

// layoutChart places one bar per (policy, associativity) cell. Bar height is
// the mean hit rate scaled to the plot area.
func layoutChart(series []summary.Series) chart {
	c := chart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPad}
	plot := chartHeight - 2*chartPad

	x := chartPad
	for i, s := range series {
		color := palette[i%len(palette)]
		c.Legend = append(c.Legend, chartLegend{Color: color, Name: orDash(s.ReplacementPolicy)})
		for _, b := range s.Bars {
			h := b.HitRate * plot
			c.Bars = append(c.Bars, chartBar{
				X:     x,
				Y:     c.Baseline - h,
				W:     barWidth,
				H:     h,
				Color: color,
				Label: fmt.Sprint(b.Associativity),
				Title: fmt.Sprintf("%s, assoc %d: %s over %d group(s)",
					orDash(s.ReplacementPolicy), b.Associativity, percent(b.HitRate), b.Groups),
			})
			x += barWidth + barGap
		}
		x += seriesGap
	}
	if x+chartPad > c.Width {
		c.Width = x + chartPad
	}
	return c
}

// WriteHTML renders a standalone page with configurations, per-group metrics
// and a bar chart of mean hit rate by associativity and replacement policy.
func WriteHTML(w io.Writer, d Data) error {
	v := build(d)
	v.Chart = layoutChart(v.Series)

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var tpl = template.Must(template.New("rep").Funcs(template.FuncMap{
	"percent": percent,
	"inc":     func(i int) int { return i + 1 },
}).Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>Cache Simulation Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2,h3{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px;margin-bottom:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
pre{background:#f5f5f5;padding:8px;border-radius:4px;max-height:240px;overflow:auto}
.small{color:#555}
.warn{background:#fff4e5;border:1px solid #f0c36d;padding:8px;border-radius:4px}
.badge{display:inline-block;background:#eef;border:1px solid #ccd;padding:2px 6px;border-radius:6px;margin-right:6px;}
</style>

<h1>Cache Simulation Report</h1>

{{if .Empty}}
<p class="warn">No configurations found in the log. Please check the file format.</p>
{{else}}
<p class="small">
{{if .Source}}Source: <code>{{.Source}}</code> &nbsp;|&nbsp; {{end}}
Write policy: {{.Filter}} &nbsp;|&nbsp;
Groups: {{len .Rows}} &nbsp;|&nbsp;
Hits: {{.Totals.Hits}} &nbsp;|&nbsp;
Misses: {{.Totals.Misses}} &nbsp;|&nbsp;
Hit rate: {{percent .Totals.HitRate}}
</p>

{{if not .Rows}}
<p class="warn">No data available for Write Policy = '{{.Filter}}'</p>
{{else}}
<h2>Hit rate by associativity and replacement policy</h2>
<svg xmlns="http://www.w3.org/2000/svg" width="{{.Chart.Width}}" height="{{.Chart.Height}}" role="img">
<line x1="0" y1="{{.Chart.Baseline}}" x2="{{.Chart.Width}}" y2="{{.Chart.Baseline}}" stroke="#999"/>
{{range .Chart.Bars}}
<rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="{{.Color}}"><title>{{.Title}}</title></rect>
<text x="{{.X}}" y="{{$.Chart.Baseline}}" dy="14" font-size="11">{{.Label}}</text>
{{end}}
</svg>
<p>{{range .Chart.Legend}}<span class="badge" style="border-color:{{.Color}}">{{.Name}}</span>{{end}}</p>

<h2>Comparison</h2>
<table>
<thead>
<tr><th>#</th><th>configuration</th><th>hits</th><th>misses</th><th>total</th><th>hit rate</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td>{{inc .Index}}</td>
<td style="text-align:left">{{.Label}}</td>
<td>{{.Stats.Hits}}</td>
<td>{{.Stats.Misses}}</td>
<td>{{.Stats.Total}}</td>
<td>{{percent .HitRate}}</td>
</tr>
{{end}}
</tbody>
</table>

<h2>Groups</h2>
{{range .Groups}}
<h3>#{{inc .Index}} {{.Label}}</h3>
<ul>
{{range .Fields}}<li>{{index . 0}}: {{index . 1}}</li>
{{end}}
</ul>
<p class="small">Hits: {{.Stats.Hits}} &nbsp;|&nbsp; Misses: {{.Stats.Misses}} &nbsp;|&nbsp; Hit rate: {{percent .HitRate}}</p>
<pre>{{range .Entries}}{{.}}
{{end}}</pre>
{{end}}
{{end}}
{{end}}
</html>`))
