package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `# Config:
# Cache Size: 8192
# Block Size: 64
# Associativity: 1
# Replacement Policy: LRU
# Write Policy: WT
R: Address: 0x0, Set: 0x0, Tag: 0x0, Clean, Miss, Read Allocated Block (WB or WT)
R: Address: 0x0, Set: 0x0, Tag: 0x0, Clean, Hit
# Config:
# Cache Size: 8192
# Block Size: 64
# Associativity: 4
# Replacement Policy: FIFO
# Write Policy: WB
W: Address: 0x40, Set: 0x1, Tag: 0x0, Dirty, Miss, WB Write-back with Allocation
W: Address: 0x40, Set: 0x1, Tag: 0x0, Dirty, Hit, WB
R: Address: 0x40, Set: 0x1, Tag: 0x0, Dirty, Hit
R: Address: 0x80, Set: 0x2, Tag: 0x0, Clean, Hit
`

func sample(t *testing.T) Data {
	t.Helper()
	groups, err := logparse.ParseReader(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	return Data{Source: "sample.log", Groups: groups}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, got)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), Data{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample(t)))
	out := buf.String()
	t.Log("\n" + out)

	assert.Contains(t, out, "HIT RATE")
	assert.Contains(t, out, "LRU")
	assert.Contains(t, out, "FIFO")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "75.00%")
	assert.Contains(t, out, "2 group(s), write policy All: 4 hits, 2 misses, hit rate 66.67%")
}

func TestWriteTable_EmptyAndFiltered(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Data{}))
	assert.Equal(t, NoConfigurations+"\n", buf.String())

	d := sample(t)
	d.Groups = d.Groups[:1] // WT only
	d.Filter = summary.FilterWB
	buf.Reset()
	require.NoError(t, WriteTable(&buf, d))
	assert.Equal(t, "No data available for Write Policy = 'WB'\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	d := sample(t)
	d.Filter = summary.FilterWB

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hit_rate", recs[0][7])
	assert.Equal(t, []string{"1", "4", "FIFO", "WB", "3", "1", "4", "0.750000"}, recs[1])
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteCSV_WriterError(t *testing.T) {
	boom := errors.New("disk full")
	err := WriteCSV(failingWriter{err: boom}, sample(t))
	assert.ErrorIs(t, err, boom)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(t)))

	var got struct {
		Source string `json:"source"`
		Filter string `json:"write_policy"`
		Groups []struct {
			Index   int             `json:"index"`
			Config  logparse.Config `json:"config"`
			Stats   summary.Stats   `json:"stats"`
			Entries []string        `json:"entries"`
		} `json:"groups"`
		Series []summary.Series `json:"series"`
		Totals summary.Stats    `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "sample.log", got.Source)
	assert.Equal(t, "All", got.Filter)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, 4, *got.Groups[1].Config.Associativity)
	assert.Equal(t, summary.Stats{Hits: 3, Misses: 1, Total: 4}, got.Groups[1].Stats)
	assert.Len(t, got.Groups[0].Entries, 2)
	assert.Len(t, got.Series, 2)
	assert.Equal(t, summary.Stats{Hits: 4, Misses: 2, Total: 6}, got.Totals)
	assert.Contains(t, buf.String(), `"Cache Size": 8192`)
}

func TestWriteJSON_EmptyUsesArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Data{}))
	assert.Contains(t, buf.String(), `"groups": []`)
	assert.Contains(t, buf.String(), `"series": []`)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sample(t)))
	out := buf.String()

	assert.Contains(t, out, "<svg")
	assert.Equal(t, 2, strings.Count(out, "<rect "), "one bar per (policy, associativity) cell")
	assert.Contains(t, out, "Assoc=4, Repl=FIFO, Write=WB")
	assert.Contains(t, out, "Cache Size: 8192")
	assert.Contains(t, out, "Hit rate: 66.67%")
	assert.Contains(t, out, "Tag: 0x0, Clean, Hit")
}

func TestWriteHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Data{}))
	assert.Contains(t, buf.String(), "No configurations found")
	assert.NotContains(t, buf.String(), "<svg")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, sample(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Cache Simulation Report\n"))
	assert.Contains(t, out, "| 2 | 4 | FIFO | WB | 3 | 1 | 75.00% |")
	assert.Contains(t, out, "**LRU**")
	assert.Contains(t, out, "assoc 1   "+textBar(0.5, mdBarWidth)+" 50.00%")
}

func TestTextBar(t *testing.T) {
	assert.Equal(t, "░░░░", textBar(0, 4))
	assert.Equal(t, "██░░", textBar(0.5, 4))
	assert.Equal(t, "████", textBar(1, 4))
	assert.Equal(t, "████", textBar(3, 4))
	assert.Equal(t, "░░░░", textBar(-1, 4))
}

func TestLayoutChart(t *testing.T) {
	series := []summary.Series{
		{ReplacementPolicy: "LRU", Bars: []summary.Bar{{Associativity: 1, HitRate: 1, Groups: 1}, {Associativity: 2, HitRate: 0.5, Groups: 1}}},
		{ReplacementPolicy: "FIFO", Bars: []summary.Bar{{Associativity: 1, HitRate: 0, Groups: 1}}},
	}
	c := layoutChart(series)
	require.Len(t, c.Bars, 3)
	require.Len(t, c.Legend, 2)

	plot := chartHeight - 2*chartPad
	assert.InDelta(t, plot, c.Bars[0].H, 1e-9)
	assert.InDelta(t, plot/2, c.Bars[1].H, 1e-9)
	assert.InDelta(t, 0, c.Bars[2].H, 1e-9)
	assert.InDelta(t, c.Baseline, c.Bars[1].Y+c.Bars[1].H, 1e-9)
	assert.Less(t, c.Bars[1].X, c.Bars[2].X)
	assert.NotEqual(t, c.Bars[0].Color, c.Bars[2].Color)
}
