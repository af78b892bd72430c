package logparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	commentMarker = "#"
	configMarker  = "# Config:"

	maxLineSize = 1 << 20
)

// Group pairs a configuration with the entries logged under it.
type Group struct {
	Config  Config   `json:"config"`
	Entries []string `json:"entries"`
}

// state of the grouping machine. Accumulating entries of a committed
// configuration happens in stateScanning.
type state int

const (
	stateScanning state = iota
	stateReadingConfig
)

func (s state) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateReadingConfig:
		return "reading-config"
	default:
		return "unknown"
	}
}

// grouper holds the accumulators of a single Parse call.
type grouper struct {
	state     state
	pending   Config
	current   Config
	committed bool
	block     []string
	groups    []Group
}

// Parse groups log lines into (configuration, entries) pairs in input order.
//
// Lines are trimmed before classification. A "# Config:" line starts a new
// header block; recognized "# <Field>: <value>" lines fill it; the first blank
// or non-comment line commits it, and a non-blank terminator is also the first
// entry of the block. Other comment lines are ignored. A group is emitted only
// when a configuration has been committed and at least one entry was seen.
//
// The only failure is a non-integer value for an integer field, reported as a
// *FieldError matching ErrMalformedNumericField.
func Parse(lines []string) ([]Group, error) {
	g := &grouper{groups: []Group{}}
	for i, raw := range lines {
		if err := g.feed(strings.TrimSpace(raw)); err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.Line = i + 1
			}
			return nil, err
		}
	}
	g.flush()
	return g.groups, nil
}

// ParseReader reads r line by line and parses the result with Parse.
func ParseReader(r io.Reader) ([]Group, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("logparse: read: %w", err)
	}
	return Parse(lines)
}

func (g *grouper) feed(line string) error {
	if line == configMarker {
		g.flush()
		g.state = stateReadingConfig
		g.pending = Config{}
		return nil
	}

	switch g.state {
	case stateReadingConfig:
		if f, ok := lookupField(line); ok {
			return f.set(&g.pending, fieldValue(line))
		}
		if line == "" || !strings.HasPrefix(line, commentMarker) {
			g.current = g.pending
			g.committed = true
			g.state = stateScanning
			if line != "" {
				g.block = append(g.block, line)
			}
		}
	case stateScanning:
		if line != "" && !strings.HasPrefix(line, commentMarker) {
			g.block = append(g.block, line)
		}
	}
	return nil
}

// flush emits the committed configuration when it has entries.
func (g *grouper) flush() {
	if !g.committed || len(g.block) == 0 {
		return
	}
	g.groups = append(g.groups, Group{Config: g.current, Entries: g.block})
	g.block = nil
}
