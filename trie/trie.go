/*
Package trie implements the cache trie at the heart of the rule-list
search: an in-memory trie of explored prefixes whose nodes cache the
bounds computed for them, together with the incumbent (the best rule
list seen so far and its objective).

A single goroutine drives every mutation; the structure is deliberately
not safe for concurrent use.
*/
package trie

import (
	"github.com/corels/corels/rule"
)

/*
Tree is the cache trie for one search. It owns the root and all nodes
transitively, tracks node and evaluation counts, and holds the incumbent
rule list together with min objective, the monotonically non-increasing
bound from above.
*/
type Tree struct {
	root      *Node
	catalogue *rule.Catalogue
	c         float64
	ablation  int
	curious   bool
	// calculateSize only toggles side-band bookkeeping in callers; the
	// trie stores it so every component sees one consistent value.
	calculateSize bool

	numNodes     int
	numEvaluated int

	minObjective   float64
	optRuleList    []uint16
	optPredictions []bool
}

/*
New returns a tree over the given catalogue with complexity penalty c.
The ablation flag suppresses the support bounds (1) or the lookahead
bound (2); curious makes ConstructNode compute the curiosity priority.
*/
func New(catalogue *rule.Catalogue, c float64, ablation int, curious, calculateSize bool) *Tree {
	return &Tree{
		catalogue:     catalogue,
		c:             c,
		ablation:      ablation,
		curious:       curious,
		calculateSize: calculateSize,
		minObjective:  0.5,
	}
}

// Root returns the root node; nil before InsertRoot.
func (t *Tree) Root() *Node {
	return t.root
}

// C returns the complexity penalty.
func (t *Tree) C() float64 {
	return t.c
}

// Ablation returns the ablation flag: 0 none, 1 no support bounds, 2 no
// lookahead bound.
func (t *Tree) Ablation() int {
	return t.ablation
}

// CalculateSize reports whether side-band size bookkeeping was requested.
func (t *Tree) CalculateSize() bool {
	return t.calculateSize
}

// NSamples returns the catalogue sample count.
func (t *Tree) NSamples() int {
	return t.catalogue.NSamples()
}

// NRules returns the catalogue rule count including the default rule.
func (t *Tree) NRules() int {
	return t.catalogue.NRules()
}

// Rule returns catalogue rule i.
func (t *Tree) Rule(i int) rule.Rule {
	return t.catalogue.Rule(i)
}

// Label returns catalogue label row i.
func (t *Tree) Label(i int) rule.Rule {
	return t.catalogue.Label(i)
}

// HasMinority reports whether the catalogue carries a minority row.
func (t *Tree) HasMinority() bool {
	return t.catalogue.HasMinority()
}

// Minority returns the catalogue minority row.
func (t *Tree) Minority() *rule.Rule {
	return t.catalogue.Minority()
}

// NumNodes returns the number of live nodes.
func (t *Tree) NumNodes() int {
	return t.numNodes
}

// NumEvaluated returns the number of prefixes whose children have been
// evaluated.
func (t *Tree) NumEvaluated() int {
	return t.numEvaluated
}

// IncrementNumEvaluated records one more evaluated prefix.
func (t *Tree) IncrementNumEvaluated() {
	t.numEvaluated++
}

// DecrementNumNodes records the destruction of one node.
func (t *Tree) DecrementNumNodes() {
	t.numNodes--
}

// MinObjective returns the incumbent objective.
func (t *Tree) MinObjective() float64 {
	return t.minObjective
}

// OptRuleList returns the incumbent prefix rule ids.
func (t *Tree) OptRuleList() []uint16 {
	return t.optRuleList
}

// OptPredictions returns the incumbent predictions; the last entry is
// the default-rule prediction.
func (t *Tree) OptPredictions() []bool {
	return t.optPredictions
}

// UpdateMinObjective lowers the incumbent objective.
func (t *Tree) UpdateMinObjective(objective float64) {
	t.minObjective = objective
}

// UpdateOptRuleList replaces the incumbent prefix with parentPrefix
// extended by newRuleID.
func (t *Tree) UpdateOptRuleList(parentPrefix []uint16, newRuleID uint16) {
	t.optRuleList = make([]uint16, 0, len(parentPrefix)+1)
	t.optRuleList = append(t.optRuleList, parentPrefix...)
	t.optRuleList = append(t.optRuleList, newRuleID)
}

/*
UpdateOptPredictions replaces the incumbent predictions with the
predictions along parent's path followed by newPred and the default-rule
prediction newDefaultPred.
*/
func (t *Tree) UpdateOptPredictions(parent *Node, newPred, newDefaultPred bool) {
	predictions := make([]bool, parent.Depth, parent.Depth+2)
	node := parent
	for i := parent.Depth - 1; i >= 0; i-- {
		predictions[i] = node.Prediction
		node = node.parent
	}
	predictions = append(predictions, newPred, newDefaultPred)
	t.optPredictions = predictions
}

/*
InsertRoot creates the root node and seeds the incumbent with the
default-rule-only list: the majority class becomes the default
prediction and its error rate the objective. The root's lower bound is
the equivalent-minority rate of the whole sample space when a minority
row is present.
*/
func (t *Tree) InsertRoot() {
	nsamples := t.catalogue.NSamples()
	d0 := t.catalogue.Label(0).Support
	d1 := nsamples - d0
	var defaultPrediction bool
	var objective float64
	if d0 > d1 {
		defaultPrediction = false
		objective = float64(d1) / float64(nsamples)
	} else {
		defaultPrediction = true
		objective = float64(d0) / float64(nsamples)
	}
	equivalentMinority := 0.0
	if t.catalogue.HasMinority() {
		equivalentMinority = float64(t.catalogue.Minority().Truthtable.Count()) / float64(nsamples)
	}
	t.root = &Node{
		DefaultPrediction:  defaultPrediction,
		LowerBound:         equivalentMinority,
		Objective:          objective,
		EquivalentMinority: equivalentMinority,
		children:           make(map[uint16]*Node),
	}
	t.minObjective = objective
	t.numNodes++
	t.optRuleList = nil
	t.optPredictions = []bool{defaultPrediction}
}

/*
ConstructNode allocates a leaf for the prefix that extends parent with
newRuleID. The node is not attached; Insert attaches it. Under the
curious policy the curiosity priority is derived here from the lower
bound, the equivalent-minority contribution and the captured count.
*/
func (t *Tree) ConstructNode(newRuleID uint16, prediction, defaultPrediction bool,
	lowerBound, objective float64, parent *Node, numNotCaptured int, equivalentMinority float64) *Node {
	nsamples := t.catalogue.NSamples()
	numCaptured := nsamples - numNotCaptured
	n := &Node{
		RuleID:             newRuleID,
		Prediction:         prediction,
		DefaultPrediction:  defaultPrediction,
		LowerBound:         lowerBound,
		Objective:          objective,
		EquivalentMinority: equivalentMinority,
		Depth:              parent.Depth + 1,
		NumCaptured:        numCaptured,
		parent:             parent,
		children:           make(map[uint16]*Node),
	}
	if t.curious {
		n.Curiosity = (lowerBound - equivalentMinority) * float64(nsamples) / float64(numCaptured)
	}
	return n
}

// Insert attaches a constructed node under its parent.
func (t *Tree) Insert(n *Node) {
	n.parent.children[n.RuleID] = n
	t.numNodes++
}

/*
CheckPrefix walks the trie from the root along the given rule ids and
returns the node the prefix ends at, or nil if any edge is missing.
*/
func (t *Tree) CheckPrefix(prefix []uint16) *Node {
	node := t.root
	for _, id := range prefix {
		node = node.Child(id)
		if node == nil {
			return nil
		}
	}
	return node
}

/*
PruneUp deletes the given node and its ancestors for as long as they
have no remaining children, stopping at the first node with another
child. Reaching the root only decrements the node count.
*/
func (t *Tree) PruneUp(node *Node) {
	depth := node.Depth
	for node.NumChildren() == 0 {
		if depth == 0 {
			t.numNodes--
			break
		}
		parent := node.parent
		parent.DeleteChild(node.RuleID)
		t.numNodes--
		node = parent
		depth--
	}
}

/*
GarbageCollect walks the whole trie and detaches every subtree whose
effective lower bound (lower bound plus c, or the bare lower bound when
the lookahead bound is ablated) has reached the incumbent objective.
Detached leaves are tombstoned for the queue; interior nodes are
destroyed.
*/
func (t *Tree) GarbageCollect() {
	if t.root != nil {
		t.gcHelper(t.root)
	}
}

func (t *Tree) gcHelper(node *Node) {
	for _, id := range node.ChildIDs() {
		child := node.Child(id)
		lb := child.LowerBound
		if t.ablation != 2 {
			lb += t.c
		}
		if lb >= t.minObjective {
			node.DeleteChild(id)
			t.DeleteSubtree(child, false)
		} else {
			t.gcHelper(child)
		}
	}
}

/*
DeleteSubtree destroys the subtree rooted at node. Interior nodes
(done) are always destroyed after their children. Leaves are destroyed
only in destructive mode; otherwise they are tombstoned so the queue
reaps them on selection, which keeps every queued reference valid.
*/
func (t *Tree) DeleteSubtree(node *Node, destructive bool) {
	if node.Done() {
		for _, id := range node.ChildIDs() {
			t.DeleteSubtree(node.Child(id), destructive)
		}
		t.numNodes--
		node.parent = nil
		node.children = nil
		return
	}
	if destructive {
		t.numNodes--
		node.parent = nil
		node.children = nil
		return
	}
	node.SetDeleted()
}
