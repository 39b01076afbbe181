package corels

import (
	"fmt"

	"github.com/corels/corels/pmap"
	"github.com/corels/corels/queue"
)

/*
Config carries the search parameters. The zero value is not usable;
start from DefaultConfig and override what the run needs.
*/
type Config struct {
	// C is the complexity penalty added to the objective per rule in
	// the prefix. Must satisfy 0 < C < 1.
	C float64
	// MaxNodes caps the number of live trie nodes; the search stops
	// expanding once the cap is reached and the incumbent is returned
	// without a certificate of optimality.
	MaxNodes int
	// Ablation suppresses bounds for A/B runs: 0 none, 1 suppresses
	// the support bounds, 2 suppresses the lookahead bound.
	Ablation int
	// Map selects the symmetry-aware map variant.
	Map pmap.Kind
	// Policy selects the priority-queue ordering.
	Policy queue.Policy
	// CalculateSize toggles side-band size bookkeeping only; it never
	// affects the search outcome.
	CalculateSize bool
}

// DefaultConfig mirrors the reference defaults: c=0.01, a node budget
// of 100000, BFS ordering and no symmetry map.
func DefaultConfig() Config {
	return Config{
		C:        0.01,
		MaxNodes: 100000,
		Policy:   queue.BFS,
		Map:      pmap.None,
	}
}

func (c Config) validate() error {
	if c.C <= 0 || c.C >= 1 {
		return fmt.Errorf("invalid configuration: regularization must be in (0, 1), got %g", c.C)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("invalid configuration: node budget must not be negative, got %d", c.MaxNodes)
	}
	if c.Ablation < 0 || c.Ablation > 2 {
		return fmt.Errorf("invalid configuration: ablation must be 0, 1 or 2, got %d", c.Ablation)
	}
	switch c.Map {
	case pmap.None, pmap.Prefix, pmap.Captured:
	default:
		return fmt.Errorf("invalid configuration: unknown symmetry map kind %d", int(c.Map))
	}
	switch c.Policy {
	case queue.BFS, queue.DFS, queue.Curious, queue.LowerBound, queue.Objective:
	default:
		return fmt.Errorf("invalid configuration: unknown queue policy %d", int(c.Policy))
	}
	return nil
}
