package logparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Header labels as they appear in the log, after the comment marker.
const (
	FieldCacheSize         = "Cache Size"
	FieldBlockSize         = "Block Size"
	FieldAssociativity     = "Associativity"
	FieldReplacementPolicy = "Replacement Policy"
	FieldWritePolicy       = "Write Policy"
)

// Config is the cache configuration of one simulation run.
// A nil field was not present in the header block.
type Config struct {
	CacheSize         *int    `json:"Cache Size,omitempty"`
	BlockSize         *int    `json:"Block Size,omitempty"`
	Associativity     *int    `json:"Associativity,omitempty"`
	ReplacementPolicy *string `json:"Replacement Policy,omitempty"`
	WritePolicy       *string `json:"Write Policy,omitempty"`
}

// Label renders the short form used to pick a configuration from a list.
func (c Config) Label() string {
	return fmt.Sprintf("Assoc=%s, Repl=%s, Write=%s",
		intOrDash(c.Associativity), strOrDash(c.ReplacementPolicy), strOrDash(c.WritePolicy))
}

// String lists every present field, one "Label: value" per line, in header order.
func (c Config) String() string {
	var b strings.Builder
	for _, f := range fields {
		if v, ok := f.get(c); ok {
			fmt.Fprintf(&b, "%s: %s\n", f.name, v)
		}
	}
	return b.String()
}

// Fields returns the present fields as label/value pairs in header order.
func (c Config) Fields() [][2]string {
	var out [][2]string
	for _, f := range fields {
		if v, ok := f.get(c); ok {
			out = append(out, [2]string{f.name, v})
		}
	}
	return out
}

// WritePolicyValue returns the write policy or "" when absent.
func (c Config) WritePolicyValue() string {
	if c.WritePolicy == nil {
		return ""
	}
	return *c.WritePolicy
}

// ReplacementPolicyValue returns the replacement policy or "" when absent.
func (c Config) ReplacementPolicyValue() string {
	if c.ReplacementPolicy == nil {
		return ""
	}
	return *c.ReplacementPolicy
}

// field is one row of the header dispatch table.
type field struct {
	name   string
	prefix string
	set    func(c *Config, raw string) error
	get    func(c Config) (string, bool)
}

// fields is ordered as the simulator writes them.
var fields = []field{
	intField(FieldCacheSize, func(c *Config) **int { return &c.CacheSize }),
	intField(FieldBlockSize, func(c *Config) **int { return &c.BlockSize }),
	intField(FieldAssociativity, func(c *Config) **int { return &c.Associativity }),
	stringField(FieldReplacementPolicy, func(c *Config) **string { return &c.ReplacementPolicy }),
	stringField(FieldWritePolicy, func(c *Config) **string { return &c.WritePolicy }),
}

func intField(name string, slot func(*Config) **int) field {
	return field{
		name:   name,
		prefix: commentMarker + " " + name + ":",
		set: func(c *Config, raw string) error {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return &FieldError{Field: name, Value: raw, Err: err}
			}
			*slot(c) = &v
			return nil
		},
		get: func(c Config) (string, bool) {
			p := *slot(&c)
			if p == nil {
				return "", false
			}
			return strconv.Itoa(*p), true
		},
	}
}

func stringField(name string, slot func(*Config) **string) field {
	return field{
		name:   name,
		prefix: commentMarker + " " + name + ":",
		set: func(c *Config, raw string) error {
			*slot(c) = &raw
			return nil
		},
		get: func(c Config) (string, bool) {
			p := *slot(&c)
			if p == nil {
				return "", false
			}
			return *p, true
		},
	}
}

// lookupField returns the table row whose prefix starts line.
func lookupField(line string) (field, bool) {
	for _, f := range fields {
		if strings.HasPrefix(line, f.prefix) {
			return f, true
		}
	}
	return field{}, false
}

// fieldValue extracts the text between the first and second colon, trimmed.
func fieldValue(line string) string {
	_, rest, _ := strings.Cut(line, ":")
	v, _, _ := strings.Cut(rest, ":")
	return strings.TrimSpace(v)
}

func intOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func strOrDash(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
