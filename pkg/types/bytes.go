package types

import (
	"fmt"
	"math/bits"
)

// Bytes is a size in bytes, as used for cache and block sizes.
type Bytes uint64

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB).
// Whole multiples print without decimals ("8 KB"), others with two ("1.50 KB").
func (b Bytes) Humanized() string {
	units := []struct {
		size Bytes
		name string
	}{
		{1 << 30, "GB"},
		{1 << 20, "MB"},
		{1 << 10, "KB"},
	}
	for _, u := range units {
		if b < u.size {
			continue
		}
		if b%u.size == 0 {
			return fmt.Sprintf("%d %s", b/u.size, u.name)
		}
		return fmt.Sprintf("%.2f %s", float64(b)/float64(u.size), u.name)
	}
	return fmt.Sprintf("%d B", uint64(b))
}

// IsPowerOfTwo reports whether b is a non-zero power of two.
func (b Bytes) IsPowerOfTwo() bool { return b != 0 && b&(b-1) == 0 }

// Log2 returns floor(log2(b)), or 0 for b == 0.
func (b Bytes) Log2() int {
	if b == 0 {
		return 0
	}
	return bits.Len64(uint64(b)) - 1
}
