package trie

import (
	"strings"
	"testing"

	"github.com/corels/corels/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogue(t *testing.T, rulesText, labelsText, minorityText string) *rule.Catalogue {
	t.Helper()
	mined, _, err := rule.Read(strings.NewReader(rulesText))
	require.NoError(t, err)
	labels, _, err := rule.Read(strings.NewReader(labelsText))
	require.NoError(t, err)
	var minority *rule.Rule
	if minorityText != "" {
		minorityRules, _, err := rule.Read(strings.NewReader(minorityText))
		require.NoError(t, err)
		minority = &minorityRules[0]
	}
	c, err := rule.NewCatalogue(mined, labels, minority)
	require.NoError(t, err)
	return c
}

func fourSampleCatalogue(t *testing.T) *rule.Catalogue {
	return testCatalogue(t,
		"{a} 1100\n{b} 0011\n{c} 1010\n{d} 0101\n{e} 1001\n",
		"{label=0} 0011\n{label=1} 1100\n",
		"")
}

// chain builds and attaches a path of nodes under the root following
// the given rule ids, and returns the nodes root-first.
func chain(t *Tree, ids ...uint16) []*Node {
	nodes := make([]*Node, 0, len(ids))
	parent := t.Root()
	for _, id := range ids {
		n := t.ConstructNode(id, true, false, 0.1, 0.5, parent, 0, 0.0)
		t.Insert(n)
		nodes = append(nodes, n)
		parent = n
	}
	return nodes
}

func TestInsertRootSeedsDefaultIncumbent(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()

	root := tree.Root()
	require.NotNil(t, root)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, uint16(0), root.RuleID)
	// Balanced labels: class 1 wins the tie and half the samples are
	// misclassified by the default-only list.
	assert.True(t, root.DefaultPrediction)
	assert.Equal(t, 0.5, tree.MinObjective())
	assert.Equal(t, 0.5, root.Objective)
	assert.Equal(t, 1, tree.NumNodes())
	assert.Empty(t, tree.OptRuleList())
	assert.Equal(t, []bool{true}, tree.OptPredictions())
}

func TestInsertRootMajorityClassZero(t *testing.T) {
	cat := testCatalogue(t,
		"{a} 10000000\n",
		"{label=0} 11111111\n{label=1} 00000000\n",
		"")
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	assert.False(t, tree.Root().DefaultPrediction)
	assert.Equal(t, 0.0, tree.MinObjective())
	assert.Equal(t, []bool{false}, tree.OptPredictions())
}

func TestInsertRootRecordsEquivalentMinority(t *testing.T) {
	cat := testCatalogue(t,
		"{a} 1100\n",
		"{label=0} 0011\n{label=1} 1100\n",
		"minority 0100\n")
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	assert.Equal(t, 0.25, tree.Root().EquivalentMinority)
	assert.Equal(t, 0.25, tree.Root().LowerBound)
}

func TestConstructNodeLinksAndCounts(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()

	n := tree.ConstructNode(2, true, false, 0.26, 0.51, tree.Root(), 1, 0.0)
	assert.Equal(t, 1, n.Depth)
	assert.Equal(t, 3, n.NumCaptured)
	assert.Equal(t, tree.Root(), n.Parent())
	assert.Equal(t, 0.0, n.Curiosity)
	// Not attached yet.
	assert.Nil(t, tree.Root().Child(2))
	assert.Equal(t, 1, tree.NumNodes())

	tree.Insert(n)
	assert.Equal(t, n, tree.Root().Child(2))
	assert.Equal(t, 2, tree.NumNodes())
}

func TestConstructNodeCuriosity(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, true, false)
	tree.InsertRoot()

	// (lower_bound - equivalent_minority) * nsamples / num_captured
	n := tree.ConstructNode(1, true, false, 0.26, 0.51, tree.Root(), 2, 0.06)
	assert.InDelta(t, (0.26-0.06)*4.0/2.0, n.Curiosity, 1e-12)
}

func TestTrieParentChildConsistency(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2, 3)

	for _, n := range nodes {
		p := n.Parent()
		require.NotNil(t, p)
		assert.Equal(t, n, p.Child(n.RuleID))
		assert.Equal(t, p.Depth+1, n.Depth)
	}
}

func TestCheckPrefixRoundTrip(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2, 3)

	assert.Equal(t, nodes[2], tree.CheckPrefix([]uint16{1, 2, 3}))
	assert.Equal(t, nodes[0], tree.CheckPrefix([]uint16{1}))
	assert.Equal(t, tree.Root(), tree.CheckPrefix(nil))
	assert.Nil(t, tree.CheckPrefix([]uint16{2, 1}))
	assert.Nil(t, tree.CheckPrefix([]uint16{1, 2, 4}))

	prefix, _ := nodes[2].PrefixAndPredictions()
	assert.Equal(t, []uint16{1, 2, 3}, prefix)
}

func TestPruneUpStopsAtSiblings(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2, 3)
	sibling := tree.ConstructNode(4, true, false, 0.1, 0.5, tree.Root(), 0, 0.0)
	tree.Insert(sibling)
	require.Equal(t, 5, tree.NumNodes())

	tree.PruneUp(nodes[2])
	// The childless chain 1-2-3 disappears; the root keeps its other
	// child.
	assert.Equal(t, 2, tree.NumNodes())
	assert.Nil(t, tree.Root().Child(1))
	assert.Equal(t, sibling, tree.Root().Child(4))
}

func TestPruneUpReachesRoot(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1)
	require.Equal(t, 2, tree.NumNodes())

	tree.PruneUp(nodes[0])
	assert.Equal(t, 0, tree.NumNodes())
}

func TestDeleteSubtreeTombstonesLeaves(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2)
	interior, leaf := nodes[0], nodes[1]
	interior.SetDone()
	require.Equal(t, 3, tree.NumNodes())

	tree.Root().DeleteChild(interior.RuleID)
	tree.DeleteSubtree(interior, false)
	// The interior node is destroyed, the leaf only tombstoned: the
	// queue may still reference it.
	assert.Equal(t, 2, tree.NumNodes())
	assert.True(t, leaf.Deleted())
	assert.Nil(t, tree.CheckPrefix([]uint16{1, 2}))
}

func TestDeleteSubtreeDestructive(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2)
	nodes[0].SetDone()

	tree.Root().DeleteChild(1)
	tree.DeleteSubtree(nodes[0], true)
	assert.Equal(t, 1, tree.NumNodes())
	assert.False(t, nodes[1].Deleted())
}

func TestGarbageCollectPrunesDeadBounds(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()

	live := tree.ConstructNode(1, true, false, 0.10, 0.5, tree.Root(), 0, 0.0)
	tree.Insert(live)
	dead := tree.ConstructNode(2, true, false, 0.50, 0.6, tree.Root(), 0, 0.0)
	tree.Insert(dead)
	tree.UpdateMinObjective(0.3)

	tree.GarbageCollect()
	assert.Equal(t, live, tree.Root().Child(1))
	assert.Nil(t, tree.Root().Child(2))
	assert.True(t, dead.Deleted())
	assert.False(t, live.Deleted())
}

func TestGarbageCollectHonoursLookaheadAblation(t *testing.T) {
	cat := fourSampleCatalogue(t)
	// lower_bound 0.295 + c crosses min objective 0.3 only when the
	// lookahead term is applied.
	tree := New(cat, 0.01, 2, false, false)
	tree.InsertRoot()
	n := tree.ConstructNode(1, true, false, 0.295, 0.5, tree.Root(), 0, 0.0)
	tree.Insert(n)
	tree.UpdateMinObjective(0.3)

	tree.GarbageCollect()
	assert.Equal(t, n, tree.Root().Child(1))
	assert.False(t, n.Deleted())
}

func TestUpdateIncumbent(t *testing.T) {
	cat := fourSampleCatalogue(t)
	tree := New(cat, 0.01, 0, false, false)
	tree.InsertRoot()
	nodes := chain(tree, 1, 2)
	nodes[0].Prediction = true
	nodes[1].Prediction = false

	tree.UpdateMinObjective(0.12)
	tree.UpdateOptRuleList([]uint16{1, 2}, 3)
	tree.UpdateOptPredictions(nodes[1], true, false)

	assert.Equal(t, 0.12, tree.MinObjective())
	assert.Equal(t, []uint16{1, 2, 3}, tree.OptRuleList())
	assert.Equal(t, []bool{true, false, true, false}, tree.OptPredictions())
}
