package trie

import "sort"

/*
Node is a node of the prefix trie. The path of rule ids from the root
down to a node spells out a prefix rule list; the node caches the bounds
and bookkeeping computed when that prefix was evaluated.

Nodes are exclusively owned by the Tree they were inserted into. The
priority queue holds non-owning references and relies on the deleted
tombstone to find out a leaf was pruned while queued.
*/
type Node struct {
	// RuleID is the one rule this node contributes to the prefix; 0 at
	// the root.
	RuleID uint16
	// Prediction is the prediction for samples captured by RuleID at
	// this position in the prefix.
	Prediction bool
	// DefaultPrediction is the default-rule prediction for samples the
	// prefix leaves uncaptured.
	DefaultPrediction bool
	// LowerBound is a valid under-estimate of the best objective any
	// extension of this prefix can achieve.
	LowerBound float64
	// Objective is the regularised misclassification of this prefix
	// with its implied default rule.
	Objective float64
	// Curiosity is the priority of this node under the curious queue
	// policy; zero under every other policy.
	Curiosity float64
	// EquivalentMinority is the equivalent-points contribution folded
	// into LowerBound.
	EquivalentMinority float64
	// Depth equals the prefix length; the root has depth 0.
	Depth int
	// NumCaptured is the number of samples captured by the whole
	// prefix ending at this node.
	NumCaptured int

	done    bool
	deleted bool

	parent   *Node
	children map[uint16]*Node
}

// Parent returns the node's parent; nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Child returns the child reached through the given rule id, or nil.
func (n *Node) Child(id uint16) *Node {
	return n.children[id]
}

// NumChildren returns the number of children currently attached.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildIDs returns the attached child rule ids in ascending order.
func (n *Node) ChildIDs() []uint16 {
	ids := make([]uint16, 0, len(n.children))
	for id := range n.children {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DeleteChild detaches the child reached through the given rule id
// without destroying it.
func (n *Node) DeleteChild(id uint16) {
	delete(n.children, id)
}

// Done reports whether the node's children have been enumerated. Once
// done, the child set is frozen.
func (n *Node) Done() bool {
	return n.done
}

// SetDone marks the node as an interior node with a frozen child set.
func (n *Node) SetDone() {
	n.done = true
}

// Deleted reports whether the node has been lazily tombstoned for the
// queue to reap.
func (n *Node) Deleted() bool {
	return n.deleted
}

// SetDeleted tombstones the node. Tombstones are never cleared.
func (n *Node) SetDeleted() {
	n.deleted = true
}

/*
PrefixAndPredictions walks from the node up to the root and returns the
prefix rule ids and per-rule predictions in root-to-node order.
*/
func (n *Node) PrefixAndPredictions() ([]uint16, []bool) {
	prefix := make([]uint16, n.Depth)
	predictions := make([]bool, n.Depth)
	node := n
	for i := n.Depth - 1; i >= 0; i-- {
		prefix[i] = node.RuleID
		predictions[i] = node.Prediction
		node = node.parent
	}
	return prefix, predictions
}
