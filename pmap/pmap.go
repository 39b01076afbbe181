/*
Package pmap implements the symmetry-aware maps that prune permutations
of already-explored prefixes. Two prefixes made of the same rules in
different orders capture the same sample set, so only the ordering with
the smallest lower bound needs to survive; the maps memoise the best
lower bound seen per canonical key and demolish the weaker trie branch
when a better permutation arrives.

Three variants exist: PrefixMap keys on the sorted rule-id multiset,
CapturedMap keys on the exact not-captured bit-vector, and NoMap
disables symmetry pruning altogether.
*/
package pmap

import (
	"fmt"
	"sort"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/trie"
)

/*
Map is the symmetry-pruning contract the search driver programs
against. Insert is handed every candidate child that survived the bound
battery, together with the context needed to construct its trie node.

Insert returns the freshly constructed (still unattached) child when
the candidate should live, and nil when the candidate is dominated by
an already-seen permutation; on a nil return the caller must neither
attach nor enqueue anything. When the candidate dominates a previously
stored permutation, the older branch is detached from the trie and its
subtree demolished (leaves lazily, so queued references stay valid)
before the new child is returned.
*/
type Map interface {
	Insert(newRuleID uint16, prediction, defaultPrediction bool,
		lowerBound, objective float64, parent *trie.Node, numNotCaptured int,
		equivalentMinority float64, t *trie.Tree,
		notCaptured *bitvector.Vector, parentPrefix []uint16) *trie.Node
	// Size returns the number of canonical keys stored.
	Size() int
	// Stats returns the pruning counters accumulated so far.
	Stats() Stats
}

/*
Stats carries the symmetry-map bookkeeping the caller can assert on:
Insertions counts every Insert call, Discards counts pruned branches
(a dominated challenger thrown away, or a stored witness demolished in
favour of a better permutation), and Nulls counts witnesses that had
already vanished from the trie by the time a better permutation tried
to demolish them.
*/
type Stats struct {
	Insertions int
	Discards   int
	Nulls      int
}

// Kind names a symmetry-map variant.
type Kind int

const (
	// None disables symmetry pruning.
	None Kind = iota
	// Prefix keys on the sorted rule-id multiset of the prefix.
	Prefix
	// Captured keys on the exact not-captured bit-vector.
	Captured
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Prefix:
		return "prefix"
	case Captured:
		return "captured"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a variant name (none, prefix, captured) to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "none":
		return None, nil
	case "prefix":
		return Prefix, nil
	case "captured":
		return Captured, nil
	}
	return 0, fmt.Errorf("unknown symmetry map type %q", s)
}

// New returns an empty symmetry map of the given kind.
func New(kind Kind) (Map, error) {
	switch kind {
	case None:
		return &NoMap{}, nil
	case Prefix:
		return NewPrefixMap(), nil
	case Captured:
		return NewCapturedMap(), nil
	}
	return nil, fmt.Errorf("unknown symmetry map kind %d", int(kind))
}

type prefixEntry struct {
	lowerBound float64
	// indices[i] is the position, within the permutation that realised
	// lowerBound, of the i-th smallest rule id of the canonical key;
	// inverting it over the sorted key reconstructs that permutation.
	indices []uint16
}

// PrefixMap memoises prefixes under their sorted rule-id multiset.
type PrefixMap struct {
	entries map[string]*prefixEntry
	stats   Stats
}

// NewPrefixMap returns an empty PrefixMap.
func NewPrefixMap() *PrefixMap {
	return &PrefixMap{entries: make(map[string]*prefixEntry)}
}

// Size returns the number of canonical prefixes stored.
func (m *PrefixMap) Size() int {
	return len(m.entries)
}

// Stats returns the pruning counters accumulated so far.
func (m *PrefixMap) Stats() Stats {
	return m.stats
}

/*
Insert canonicalises parentPrefix extended by newRuleID, then applies
the first-seen-wins memo discipline: a miss stores the candidate and
constructs its node; a hit with a stored lower bound at most the
candidate's discards the candidate; a hit with a worse stored lower
bound demolishes the stored permutation's trie branch and replaces the
entry with the candidate.
*/
func (m *PrefixMap) Insert(newRuleID uint16, prediction, defaultPrediction bool,
	lowerBound, objective float64, parent *trie.Node, numNotCaptured int,
	equivalentMinority float64, t *trie.Tree,
	notCaptured *bitvector.Vector, parentPrefix []uint16) *trie.Node {
	m.stats.Insertions++

	prefix := make([]uint16, 0, len(parentPrefix)+1)
	prefix = append(prefix, parentPrefix...)
	prefix = append(prefix, newRuleID)

	// indices[i] is the position within the inserted permutation of the
	// i-th smallest rule id, so sorted[i] == prefix[indices[i]].
	indices := make([]uint16, len(prefix))
	for i := range indices {
		indices[i] = uint16(i)
	}
	sort.Slice(indices, func(i, j int) bool { return prefix[indices[i]] < prefix[indices[j]] })

	sorted := make([]uint16, len(prefix))
	copy(sorted, prefix)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	key := encodeIDs(sorted)
	entry, ok := m.entries[key]
	if !ok {
		m.entries[key] = &prefixEntry{lowerBound: lowerBound, indices: indices}
		return t.ConstructNode(newRuleID, prediction, defaultPrediction,
			lowerBound, objective, parent, numNotCaptured, equivalentMinority)
	}
	if lowerBound >= entry.lowerBound {
		m.stats.Discards++
		return nil
	}

	// Invert the stored permutation: the i-th smallest id of the
	// canonical key sits at position indices[i] of the witness prefix.
	witness := make([]uint16, len(sorted))
	for i, idx := range entry.indices {
		witness[idx] = sorted[i]
	}
	if node := t.CheckPrefix(witness); node != nil {
		node.Parent().DeleteChild(node.RuleID)
		t.DeleteSubtree(node, false)
		m.stats.Discards++
	} else {
		m.stats.Nulls++
	}
	entry.lowerBound = lowerBound
	entry.indices = indices
	return t.ConstructNode(newRuleID, prediction, defaultPrediction,
		lowerBound, objective, parent, numNotCaptured, equivalentMinority)
}

type capturedEntry struct {
	lowerBound float64
	prefix     []uint16
}

// CapturedMap memoises prefixes under the exact not-captured vector
// they leave behind.
type CapturedMap struct {
	entries map[string]*capturedEntry
	stats   Stats
}

// NewCapturedMap returns an empty CapturedMap.
func NewCapturedMap() *CapturedMap {
	return &CapturedMap{entries: make(map[string]*capturedEntry)}
}

// Size returns the number of distinct captured sets stored.
func (m *CapturedMap) Size() int {
	return len(m.entries)
}

// Stats returns the pruning counters accumulated so far.
func (m *CapturedMap) Stats() Stats {
	return m.stats
}

/*
Insert keys the candidate on its not-captured vector. The memo
discipline matches PrefixMap's; the witness payload is the literal
rule-id sequence that realised the stored lower bound.
*/
func (m *CapturedMap) Insert(newRuleID uint16, prediction, defaultPrediction bool,
	lowerBound, objective float64, parent *trie.Node, numNotCaptured int,
	equivalentMinority float64, t *trie.Tree,
	notCaptured *bitvector.Vector, parentPrefix []uint16) *trie.Node {
	m.stats.Insertions++

	prefix := make([]uint16, 0, len(parentPrefix)+1)
	prefix = append(prefix, parentPrefix...)
	prefix = append(prefix, newRuleID)

	key := notCaptured.Key()
	entry, ok := m.entries[key]
	if !ok {
		m.entries[key] = &capturedEntry{lowerBound: lowerBound, prefix: prefix}
		return t.ConstructNode(newRuleID, prediction, defaultPrediction,
			lowerBound, objective, parent, numNotCaptured, equivalentMinority)
	}
	if lowerBound >= entry.lowerBound {
		m.stats.Discards++
		return nil
	}

	if node := t.CheckPrefix(entry.prefix); node != nil {
		node.Parent().DeleteChild(node.RuleID)
		t.DeleteSubtree(node, false)
		m.stats.Discards++
	} else {
		m.stats.Nulls++
	}
	entry.lowerBound = lowerBound
	entry.prefix = prefix
	return t.ConstructNode(newRuleID, prediction, defaultPrediction,
		lowerBound, objective, parent, numNotCaptured, equivalentMinority)
}

// NoMap constructs every candidate unconditionally.
type NoMap struct {
	stats Stats
}

// Insert constructs the child without any deduplication.
func (m *NoMap) Insert(newRuleID uint16, prediction, defaultPrediction bool,
	lowerBound, objective float64, parent *trie.Node, numNotCaptured int,
	equivalentMinority float64, t *trie.Tree,
	notCaptured *bitvector.Vector, parentPrefix []uint16) *trie.Node {
	m.stats.Insertions++
	return t.ConstructNode(newRuleID, prediction, defaultPrediction,
		lowerBound, objective, parent, numNotCaptured, equivalentMinority)
}

// Size always returns 0: nothing is memoised.
func (m *NoMap) Size() int {
	return 0
}

// Stats returns the insertion count; NoMap never discards.
func (m *NoMap) Stats() Stats {
	return m.stats
}

// encodeIDs packs rule ids into a string key, two bytes per id.
func encodeIDs(ids []uint16) string {
	b := make([]byte, 2*len(ids))
	for i, id := range ids {
		b[2*i] = byte(id)
		b[2*i+1] = byte(id >> 8)
	}
	return string(b)
}
