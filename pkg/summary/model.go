package summary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/util"
)

// ErrUnknownWritePolicy is returned by ParseWritePolicy for values outside {All, WT, WB}.
var ErrUnknownWritePolicy = errors.New("summary: unknown write policy filter")

// Stats counts hits and misses of one or more groups.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Total  int `json:"total"`
}

// HitRate returns Hits/Total in [0..1], 0 when nothing was counted.
func (s Stats) HitRate() float64 { return util.Ratio(s.Hits, s.Total) }

// MissRate returns Misses/Total in [0..1], 0 when nothing was counted.
func (s Stats) MissRate() float64 { return util.Ratio(s.Misses, s.Total) }

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{Hits: s.Hits + o.Hits, Misses: s.Misses + o.Misses, Total: s.Total + o.Total}
}

// WritePolicyFilter selects groups by their Write Policy header.
type WritePolicyFilter string

const (
	FilterAll WritePolicyFilter = "All"
	FilterWT  WritePolicyFilter = "WT"
	FilterWB  WritePolicyFilter = "WB"
)

// WritePolicyFilters is the fixed cycle offered to users.
var WritePolicyFilters = []WritePolicyFilter{FilterAll, FilterWT, FilterWB}

// ParseWritePolicy maps user input to a filter. Matching is case-insensitive
// and an empty string means All.
func ParseWritePolicy(s string) (WritePolicyFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range WritePolicyFilters {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of All, WT, WB)", ErrUnknownWritePolicy, s)
}

// Match reports whether cfg passes the filter. A group without a Write Policy
// only passes All.
func (f WritePolicyFilter) Match(cfg logparse.Config) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return cfg.WritePolicy != nil && *cfg.WritePolicy == string(f)
}

// Next returns the filter after f in WritePolicyFilters, wrapping around.
func (f WritePolicyFilter) Next() WritePolicyFilter {
	for i, v := range WritePolicyFilters {
		if v == f {
			return WritePolicyFilters[(i+1)%len(WritePolicyFilters)]
		}
	}
	return FilterAll
}

// Row is one line of the comparison table.
type Row struct {
	Index             int     `json:"index"` // position in the parse result
	Label             string  `json:"label"`
	Associativity     *int    `json:"associativity,omitempty"`
	ReplacementPolicy string  `json:"replacement_policy,omitempty"`
	WritePolicy       string  `json:"write_policy,omitempty"`
	Stats             Stats   `json:"stats"`
	HitRate           float64 `json:"hit_rate"`
}

// Bar is one cell of the hit-rate chart.
type Bar struct {
	Associativity int     `json:"associativity"`
	HitRate       float64 `json:"hit_rate"` // mean over the groups in the cell
	Groups        int     `json:"groups"`
}

// Series holds the bars of one replacement policy, associativity ascending.
type Series struct {
	ReplacementPolicy string `json:"replacement_policy"`
	Bars              []Bar  `json:"bars"`
}
