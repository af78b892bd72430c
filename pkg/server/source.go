package server

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/ja7ad/cachevis/pkg/logparse"
	"golang.org/x/sync/singleflight"
)

// snapshot is one parse of the log file.
type snapshot struct {
	groups []logparse.Group
	sum    uint64 // xxhash of the file contents
}

// logSource parses the log file on demand and caches the result until
// Invalidate. Concurrent loads share a single parse.
type logSource struct {
	path    string
	metrics Metrics

	mu     sync.RWMutex
	cached *snapshot
	gen    uint64
	sf     singleflight.Group
}

func newLogSource(path string, m Metrics) *logSource {
	return &logSource{path: path, metrics: m}
}

// Load returns the cached snapshot or parses the file.
func (s *logSource) Load() (*snapshot, error) {
	s.mu.RLock()
	snap, gen := s.cached, s.gen
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, _ := s.sf.Do(fmt.Sprint(gen), func() (any, error) {
		snap, err := s.parse()
		s.metrics.Parse(err == nil)
		if err != nil {
			return nil, err
		}
		s.metrics.Groups(len(snap.groups))

		s.mu.Lock()
		if s.gen == gen {
			s.cached = snap
		}
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

// Invalidate drops the cached snapshot; the next Load parses again.
func (s *logSource) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.gen++
	s.mu.Unlock()
}

func (s *logSource) parse() (*snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	groups, err := logparse.ParseReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &snapshot{groups: groups, sum: xxhash.Sum64(data)}, nil
}

// etag identifies the response for one snapshot and view variant.
func (snap *snapshot) etag(variant string) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%016x/%s", snap.sum, variant)
	return fmt.Sprintf(`"%016x"`, h.Sum64())
}
