package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Bytes
		want string
	}{
		{Bytes(0), "0 B"},
		{Bytes(64), "64 B"},
		{Bytes(1023), "1023 B"},              // just below 1 KiB
		{Bytes(1024), "1 KB"},                // exactly 1 KiB
		{Bytes(1536), "1.50 KB"},             // non-round
		{Bytes(8192), "8 KB"},                // typical L1
		{Bytes(32168), "31.41 KB"},           // non power of two from the sample config
		{Bytes(1024*1024 - 1), "1024.00 KB"}, // just below 1 MiB
		{Bytes(1 << 20), "1 MB"},             // simulator maximum
		{Bytes(3 << 30), "3 GB"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, uint64(tc.in)), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestBytes_PowerOfTwo(t *testing.T) {
	for _, v := range []Bytes{1, 2, 64, 8192, 1 << 20} {
		assert.True(t, v.IsPowerOfTwo(), "%d", v)
	}
	for _, v := range []Bytes{0, 3, 96, 32168} {
		assert.False(t, v.IsPowerOfTwo(), "%d", v)
	}
}

func TestBytes_Log2(t *testing.T) {
	assert.Equal(t, 0, Bytes(0).Log2())
	assert.Equal(t, 0, Bytes(1).Log2())
	assert.Equal(t, 6, Bytes(64).Log2())
	assert.Equal(t, 14, Bytes(32168).Log2())
}
