package summary

import (
	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/types"
)

// Geometry is the address split implied by a configuration.
// Associativity 0 means fully associative (one set).
type Geometry struct {
	Blocks     int `json:"blocks"`
	Sets       int `json:"sets"`
	OffsetBits int `json:"offset_bits"`
	IndexBits  int `json:"index_bits"`
}

// GeometryOf derives the geometry of cfg. ok is false when Cache Size,
// Block Size or Associativity is missing, the block size or set count is not
// a power of two, or the sizes do not divide.
func GeometryOf(cfg logparse.Config) (Geometry, bool) {
	if cfg.CacheSize == nil || cfg.BlockSize == nil || cfg.Associativity == nil {
		return Geometry{}, false
	}
	size, block, assoc := *cfg.CacheSize, *cfg.BlockSize, *cfg.Associativity
	if size <= 0 || block <= 0 || assoc < 0 || !types.Bytes(block).IsPowerOfTwo() {
		return Geometry{}, false
	}
	if size%block != 0 {
		return Geometry{}, false
	}

	g := Geometry{
		Blocks:     size / block,
		OffsetBits: types.Bytes(block).Log2(),
	}
	switch {
	case g.Blocks == 0:
		return Geometry{}, false
	case assoc == 0:
		g.Sets = 1
	default:
		if g.Blocks%assoc != 0 {
			return Geometry{}, false
		}
		g.Sets = g.Blocks / assoc
		if !types.Bytes(g.Sets).IsPowerOfTwo() {
			return Geometry{}, false
		}
		g.IndexBits = types.Bytes(g.Sets).Log2()
	}
	return g, true
}
