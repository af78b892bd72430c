package logparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int       { return &v }
func sp(v string) *string { return &v }

func lines(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}

func TestParse_EndToEnd(t *testing.T) {
	in := lines(`
# Config:
# Associativity: 4
# Replacement Policy: LRU
# Write Policy: WB
R Hit
W Miss`)

	groups, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	want := Config{
		Associativity:     ip(4),
		ReplacementPolicy: sp("LRU"),
		WritePolicy:       sp("WB"),
	}
	assert.Equal(t, want, groups[0].Config)
	assert.Nil(t, groups[0].Config.CacheSize)
	assert.Nil(t, groups[0].Config.BlockSize)
	assert.Equal(t, []string{"R Hit", "W Miss"}, groups[0].Entries)
}

func TestParse_AllFields(t *testing.T) {
	in := lines(`
# Config:
# Cache Size: 8192
# Block Size: 64
# Associativity: 2
# Replacement Policy: FIFO
# Write Policy: WT

R: Address: 0x10, Set: 0x1, Tag: 0x0, Clean, Miss, Read Allocated Block (WB or WT)
R: Address: 0x10, Set: 0x1, Tag: 0x0, Clean, Hit`)

	groups, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	cfg := groups[0].Config
	require.NotNil(t, cfg.CacheSize)
	require.NotNil(t, cfg.BlockSize)
	assert.Equal(t, 8192, *cfg.CacheSize)
	assert.Equal(t, 64, *cfg.BlockSize)
	assert.Equal(t, 2, *cfg.Associativity)
	assert.Equal(t, "FIFO", *cfg.ReplacementPolicy)
	assert.Equal(t, "WT", *cfg.WritePolicy)
	assert.Len(t, groups[0].Entries, 2, "blank terminator must not become an entry")
}

func TestParse_OrderAndCount(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "# Config:\n# Associativity: %d\n", i)
		for j := 0; j < i; j++ {
			fmt.Fprintf(&b, "R 0x%x Hit\n", j)
		}
	}

	groups, err := Parse(strings.Split(b.String(), "\n"))
	require.NoError(t, err)
	require.Len(t, groups, 5)
	for i, g := range groups {
		assert.Equal(t, i+1, *g.Config.Associativity, "group %d out of order", i)
		assert.Len(t, g.Entries, i+1)
	}
}

func TestParse_GroupCountMatchesMarkersWithEntries(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"no marker", "R Hit\nW Miss", 0},
		{"empty input", "", 0},
		{"marker only", "# Config:", 0},
		{"marker then marker", "# Config:\n# Config:\n# Write Policy: WB\nR Hit", 1},
		{"empty middle block", "# Config:\n# Associativity: 1\nR Hit\n# Config:\n# Associativity: 2\n\n# Config:\n# Associativity: 4\nW Miss", 2},
		{"empty trailing block", "# Config:\n# Associativity: 1\nR Hit\n# Config:\n# Associativity: 2\n", 1},
		{"unterminated trailing header", "# Config:\n# Associativity: 1\nR Hit\n# Config:\n# Associativity: 2", 1},
		{"comments only after header", "# Config:\n# Associativity: 1\n\n# note\n# another", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups, err := Parse(strings.Split(tc.in, "\n"))
			require.NoError(t, err)
			assert.Len(t, groups, tc.want)
		})
	}
}

func TestParse_MarkerFollowedByMarker(t *testing.T) {
	in := lines(`
# Config:
# Config:
# Associativity: 8
R Hit`)

	groups, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 8, *groups[0].Config.Associativity)
}

func TestParse_ZeroFieldHeaderStillCommits(t *testing.T) {
	groups, err := Parse([]string{"# Config:", "R Hit", "W Miss"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, Config{}, groups[0].Config)
	assert.Equal(t, []string{"R Hit", "W Miss"}, groups[0].Entries)
}

func TestParse_IgnoresUnknownCommentsInHeader(t *testing.T) {
	in := lines(`
# Config:
# Cache Size: 1024
# Simulator build: abc
# Write Policy: WT
#
R Hit
# trailing comment in block
W Miss`)

	groups, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1024, *groups[0].Config.CacheSize)
	assert.Equal(t, "WT", *groups[0].Config.WritePolicy)
	assert.Equal(t, []string{"R Hit", "W Miss"}, groups[0].Entries)
}

func TestParse_TrimsLines(t *testing.T) {
	in := []string{"  # Config:  ", "\t# Replacement Policy:   LRU  ", "  R Hit \r", ""}
	groups, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "LRU", *groups[0].Config.ReplacementPolicy)
	assert.Equal(t, []string{"R Hit"}, groups[0].Entries)
}

func TestParse_ValueStopsAtSecondColon(t *testing.T) {
	groups, err := Parse([]string{"# Config:", "# Replacement Policy: LRU: extra", "R Hit"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "LRU", *groups[0].Config.ReplacementPolicy)
}

func TestParse_HeaderKeysAreCaseSensitive(t *testing.T) {
	groups, err := Parse([]string{"# Config:", "# associativity: 4", "R Hit"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Nil(t, groups[0].Config.Associativity)
}

func TestParse_EntriesBeforeFirstHeaderJoinFirstBlock(t *testing.T) {
	groups, err := Parse([]string{"R early", "# Config:", "# Associativity: 1", "R Hit"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"R early", "R Hit"}, groups[0].Entries)
}

func TestParse_MalformedNumericField(t *testing.T) {
	in := []string{"# Config:", "# Cache Size: 64", "# Associativity: four", "R Hit"}

	groups, err := Parse(in)
	require.Error(t, err)
	assert.Nil(t, groups)

	assert.ErrorIs(t, err, ErrMalformedNumericField)
	assert.ErrorIs(t, err, strconv.ErrSyntax)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldAssociativity, fe.Field)
	assert.Equal(t, "four", fe.Value)
	assert.Equal(t, 3, fe.Line)
	assert.Contains(t, err.Error(), "Associativity")
	assert.Contains(t, err.Error(), "four")
}

func TestParse_MalformedFieldsAllIntKinds(t *testing.T) {
	for _, name := range []string{FieldCacheSize, FieldBlockSize, FieldAssociativity} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]string{"# Config:", "# " + name + ": 1.5", "R Hit"})
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, name, fe.Field)
			assert.Equal(t, "1.5", fe.Value)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	in := lines(`
# Config:
# Associativity: 1
# Write Policy: WT
R Hit
# Config:
# Associativity: 2
# Write Policy: WB
W Miss
R Hit`)

	a, err := Parse(in)
	require.NoError(t, err)
	b, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_EmptyResultIsNonNil(t *testing.T) {
	groups, err := Parse(nil)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestParseReader(t *testing.T) {
	r := strings.NewReader("# Config:\r\n# Block Size: 16\r\nR Hit\r\nW Miss\r\n")
	groups, err := ParseReader(r)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 16, *groups[0].Config.BlockSize)
	assert.Equal(t, []string{"R Hit", "W Miss"}, groups[0].Entries)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NotErrorIs(t, err, ErrMalformedNumericField)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "scanning", stateScanning.String())
	assert.Equal(t, "reading-config", stateReadingConfig.String())
	assert.Equal(t, "unknown", state(42).String())
}
