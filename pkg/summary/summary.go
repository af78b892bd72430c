package summary

import (
	"slices"
	"strings"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/util"
)

const hitMarker = "Hit"

// IsHit reports whether an entry line records a cache hit.
func IsHit(entry string) bool { return strings.Contains(entry, hitMarker) }

// Count classifies entries into hits and misses.
func Count(entries []string) Stats {
	var s Stats
	for _, e := range entries {
		if IsHit(e) {
			s.Hits++
		}
	}
	s.Total = len(entries)
	s.Misses = s.Total - s.Hits
	return s
}

// Accumulator keeps running totals across groups.
type Accumulator struct {
	totals   Stats
	groups   int
	sumRates float64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator { return &Accumulator{} }

// Apply counts g, adds it to the running totals and returns its own Stats.
func (a *Accumulator) Apply(g logparse.Group) Stats {
	s := Count(g.Entries)
	a.totals = a.totals.Add(s)
	a.groups++
	a.sumRates += s.HitRate()
	return s
}

// Totals returns the summed Stats of all applied groups.
func (a *Accumulator) Totals() Stats { return a.totals }

// Groups returns the number of applied groups.
func (a *Accumulator) Groups() int { return a.groups }

// MeanHitRate returns the unweighted mean of per-group hit rates.
// Totals().HitRate() is the access-weighted rate.
func (a *Accumulator) MeanHitRate() float64 {
	return util.SafeDiv(a.sumRates, float64(a.groups))
}

// Compare builds comparison rows for the groups passing f, in input order.
func Compare(groups []logparse.Group, f WritePolicyFilter) []Row {
	rows := make([]Row, 0, len(groups))
	for i, g := range groups {
		if !f.Match(g.Config) {
			continue
		}
		s := Count(g.Entries)
		rows = append(rows, Row{
			Index:             i,
			Label:             g.Config.Label(),
			Associativity:     g.Config.Associativity,
			ReplacementPolicy: g.Config.ReplacementPolicyValue(),
			WritePolicy:       g.Config.WritePolicyValue(),
			Stats:             s,
			HitRate:           s.HitRate(),
		})
	}
	return rows
}

// Totals sums the Stats of rows.
func Totals(rows []Row) Stats {
	var s Stats
	for _, r := range rows {
		s = s.Add(r.Stats)
	}
	return s
}

// BuildSeries averages hit rates per (replacement policy, associativity).
// Policies keep first-seen order; rows without an associativity are skipped.
func BuildSeries(rows []Row) []Series {
	type cell struct {
		sum float64
		n   int
	}
	var order []string
	cells := map[string]map[int]*cell{}

	for _, r := range rows {
		if r.Associativity == nil {
			continue
		}
		byAssoc, ok := cells[r.ReplacementPolicy]
		if !ok {
			byAssoc = map[int]*cell{}
			cells[r.ReplacementPolicy] = byAssoc
			order = append(order, r.ReplacementPolicy)
		}
		c, ok := byAssoc[*r.Associativity]
		if !ok {
			c = &cell{}
			byAssoc[*r.Associativity] = c
		}
		c.sum += r.HitRate
		c.n++
	}

	out := make([]Series, 0, len(order))
	for _, policy := range order {
		byAssoc := cells[policy]
		assocs := make([]int, 0, len(byAssoc))
		for a := range byAssoc {
			assocs = append(assocs, a)
		}
		slices.Sort(assocs)

		s := Series{ReplacementPolicy: policy}
		for _, a := range assocs {
			c := byAssoc[a]
			s.Bars = append(s.Bars, Bar{
				Associativity: a,
				HitRate:       util.SafeDiv(c.sum, float64(c.n)),
				Groups:        c.n,
			})
		}
		out = append(out, s)
	}
	return out
}

// Timeline returns the EMA-smoothed hit indicator after each entry.
func Timeline(entries []string, alpha float64) []float64 {
	ema := util.NewEMA(alpha)
	out := make([]float64, len(entries))
	for i, e := range entries {
		var v float64
		if IsHit(e) {
			v = 1
		}
		out[i] = ema.Next(v)
	}
	return out
}
