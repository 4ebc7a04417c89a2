package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequenceGenerator generates "<prefix>-0001", "<prefix>-0002", ...
// It satisfies store.Generator and never runs out.
//
// Thread-safety: Generate is safe for concurrent use.
type SequenceGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceGenerator creates a generator. An empty prefix means "run".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}
