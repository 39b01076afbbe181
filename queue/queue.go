/*
Package queue implements the priority work queue of the rule-list
search: a binary heap of live trie leaves whose ordering policy decides
which prefix is expanded next.

The queue holds non-owning references. Nodes pruned from the trie while
queued are tombstoned there and reaped here: Select is the only place a
lazily deleted node is finally destroyed.
*/
package queue

import (
	"container/heap"
	"fmt"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/trie"
)

// Policy selects the heap ordering.
type Policy int

const (
	// BFS expands shallowest prefixes first.
	BFS Policy = iota
	// DFS expands deepest prefixes first.
	DFS
	// Curious expands the smallest curiosity score first.
	Curious
	// LowerBound expands the smallest lower bound first.
	LowerBound
	// Objective expands the smallest objective first.
	Objective
)

func (p Policy) String() string {
	switch p {
	case BFS:
		return "bfs"
	case DFS:
		return "dfs"
	case Curious:
		return "curious"
	case LowerBound:
		return "lower_bound"
	case Objective:
		return "objective"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

/*
ParsePolicy maps a policy name to its Policy value. Valid names are
bfs, dfs, curious, lower_bound (or lb) and objective.
*/
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "bfs":
		return BFS, nil
	case "dfs":
		return DFS, nil
	case "curious":
		return Curious, nil
	case "lower_bound", "lb":
		return LowerBound, nil
	case "objective":
		return Objective, nil
	}
	return 0, fmt.Errorf("unknown queue policy %q", s)
}

type nodeHeap struct {
	nodes  []*trie.Node
	policy Policy
}

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.nodes[i], h.nodes[j]
	switch h.policy {
	case DFS:
		return a.Depth > b.Depth
	case Curious:
		return a.Curiosity < b.Curiosity
	case LowerBound:
		return a.LowerBound < b.LowerBound
	case Objective:
		return a.Objective < b.Objective
	default:
		return a.Depth < b.Depth
	}
}

func (h *nodeHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
}

func (h *nodeHeap) Push(x interface{}) {
	h.nodes = append(h.nodes, x.(*trie.Node))
}

func (h *nodeHeap) Pop() interface{} {
	old := h.nodes
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	h.nodes = old[:n-1]
	return x
}

// Queue is a priority queue of trie leaves under a fixed policy.
type Queue struct {
	h *nodeHeap
}

// New returns an empty queue ordered by the given policy.
func New(policy Policy) *Queue {
	return &Queue{h: &nodeHeap{policy: policy}}
}

// Policy returns the ordering policy the queue was built with.
func (q *Queue) Policy() Policy {
	return q.h.policy
}

// Push enqueues a node.
func (q *Queue) Push(n *trie.Node) {
	heap.Push(q.h, n)
}

// Pop removes and returns the highest-priority node.
func (q *Queue) Pop() *trie.Node {
	return heap.Pop(q.h).(*trie.Node)
}

// Front returns the highest-priority node without removing it.
func (q *Queue) Front() *trie.Node {
	return q.h.nodes[0]
}

// Size returns the number of queued nodes, including tombstoned ones
// that have not been reaped yet.
func (q *Queue) Size() int {
	return q.h.Len()
}

// Empty reports whether the queue holds no nodes.
func (q *Queue) Empty() bool {
	return q.h.Len() == 0
}

/*
Select pops nodes until it finds a live one: tombstoned nodes and nodes
whose effective lower bound (lower bound plus c, or the bare lower bound
when the lookahead bound is ablated) has reached the incumbent objective
are destroyed on the spot, with the trie's node count decremented. This
is the only place lazy tombstones are reaped.

For the selected node, Select rebuilds into captured the set of samples
its prefix captures by OR-ing the rule truth-tables along the path to
the root, and returns the node together with the prefix rule ids in
root-to-leaf order. When the queue empties without yielding a live node
it returns (nil, nil).
*/
func (q *Queue) Select(t *trie.Tree, captured *bitvector.Vector) (*trie.Node, []uint16) {
	var selected *trie.Node
	for !q.Empty() {
		node := q.Pop()
		lb := node.LowerBound
		if t.Ablation() != 2 {
			lb += t.C()
		}
		if node.Deleted() || lb >= t.MinObjective() {
			// Tombstoned nodes were already detached when their branch
			// was demolished; bound-dead ones are still attached.
			if !node.Deleted() && node.Parent() != nil {
				node.Parent().DeleteChild(node.RuleID)
			}
			t.DecrementNumNodes()
			continue
		}
		selected = node
		break
	}
	if selected == nil {
		return nil, nil
	}

	captured.Clear()
	prefix := make([]uint16, selected.Depth)
	node := selected
	for i := selected.Depth - 1; i >= 0; i-- {
		captured.Or(captured, t.Rule(int(node.RuleID)).Truthtable)
		prefix[i] = node.RuleID
		node = node.Parent()
	}
	return selected, prefix
}
