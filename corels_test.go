package corels

import (
	"context"
	"strings"
	"testing"

	"github.com/corels/corels/pmap"
	"github.com/corels/corels/queue"
	"github.com/corels/corels/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogueFrom(t *testing.T, rulesText, labelsText, minorityText string) *rule.Catalogue {
	t.Helper()
	var mined []rule.Rule
	var err error
	if rulesText != "" {
		mined, _, err = rule.Read(strings.NewReader(rulesText))
		require.NoError(t, err)
	}
	labels, _, err := rule.Read(strings.NewReader(labelsText))
	require.NoError(t, err)
	var minority *rule.Rule
	if minorityText != "" {
		minorityRules, _, err := rule.Read(strings.NewReader(minorityText))
		require.NoError(t, err)
		minority = &minorityRules[0]
	}
	cat, err := rule.NewCatalogue(mined, labels, minority)
	require.NoError(t, err)
	return cat
}

// overlapCatalogue holds three rules that only jointly classify the
// data, so optimal lists are three rules long and permutations of
// explored prefixes genuinely reach the symmetry map.
func overlapCatalogue(t *testing.T) *rule.Catalogue {
	return catalogueFrom(t,
		"{a} 11000000\n{b} 00100000\n{c} 00000100\n",
		"{label=0} 00011011\n{label=1} 11100100\n",
		"")
}

func runSearch(t *testing.T, cat *rule.Catalogue, conf Config) *Result {
	t.Helper()
	s, err := New(cat, conf, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	return s.Finish(false)
}

func TestDefaultRuleOnlyCatalogue(t *testing.T) {
	// All samples carry label 0 and there is nothing but the default
	// rule: the optimal list is empty and perfect.
	cat := catalogueFrom(t, "", "{label=0} 11111111\n{label=1} 00000000\n", "")
	conf := DefaultConfig()

	res := runSearch(t, cat, conf)
	assert.Empty(t, res.RuleList)
	assert.Equal(t, []bool{false}, res.Predictions)
	assert.Equal(t, 0.0, res.MinObjective)
	assert.True(t, res.Certified)
}

func TestSingleRulePerfectSeparator(t *testing.T) {
	cat := catalogueFrom(t, "{a} 1100\n", "{label=0} 0011\n{label=1} 1100\n", "")
	conf := DefaultConfig()

	res := runSearch(t, cat, conf)
	assert.Equal(t, []uint16{1}, res.RuleList)
	assert.Equal(t, []bool{true, false}, res.Predictions)
	assert.InDelta(t, 0.01, res.MinObjective, 1e-12)
	assert.InDelta(t, 1.0, res.Accuracy, 1e-12)
	assert.True(t, res.Certified)
	assert.Equal(t, 1, res.NumEvaluated)
}

func TestSymmetryPruning(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001
	conf.Map = pmap.Prefix

	res := runSearch(t, cat, conf)
	assert.Equal(t, []uint16{1, 2, 3}, res.RuleList)
	assert.Equal(t, []bool{true, true, true, false}, res.Predictions)
	assert.InDelta(t, 0.003, res.MinObjective, 1e-12)
	assert.True(t, res.Certified)
	// Permuted re-derivations of explored prefixes must have hit the
	// map instead of spawning duplicate branches.
	assert.True(t, res.MapStats.Discards+res.MapStats.Nulls >= 1,
		"expected at least one symmetry-map discard, got %+v", res.MapStats)

	conf.Map = pmap.None
	baseline := runSearch(t, cat, conf)
	assert.Equal(t, baseline.MinObjective, res.MinObjective)
	assert.Equal(t, baseline.RuleList, res.RuleList)
}

func TestCapturedMapMatchesBaseline(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001
	conf.Map = pmap.Captured

	res := runSearch(t, cat, conf)
	assert.InDelta(t, 0.003, res.MinObjective, 1e-12)
	assert.Equal(t, []uint16{1, 2, 3}, res.RuleList)
	assert.True(t, res.MapStats.Discards+res.MapStats.Nulls >= 1)
}

func TestBudgetStop(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001
	conf.MaxNodes = 2

	s, err := New(cat, conf, nil)
	require.NoError(t, err)
	// The root is the only node, so exactly one expansion fits before
	// the budget check stops the loop.
	assert.True(t, s.Step())
	assert.False(t, s.Step())

	res := s.Finish(false)
	assert.False(t, res.Certified)
	assert.Equal(t, []uint16{1}, res.RuleList)
	require.Len(t, res.Predictions, 2)
	assert.InDelta(t, 0.251, res.MinObjective, 1e-12)
}

func TestLookaheadAblationEquivalence(t *testing.T) {
	single := catalogueFrom(t, "{a} 1100\n", "{label=0} 0011\n{label=1} 1100\n", "")
	for _, cat := range []*rule.Catalogue{single, overlapCatalogue(t)} {
		conf := DefaultConfig()
		conf.C = 0.001
		base := runSearch(t, cat, conf)
		conf.Ablation = 2
		ablated := runSearch(t, cat, conf)
		assert.Equal(t, base.MinObjective, ablated.MinObjective)
		assert.Equal(t, base.RuleList, ablated.RuleList)
		assert.Equal(t, base.Predictions, ablated.Predictions)
	}
}

func TestSupportAblationEquivalence(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001
	base := runSearch(t, cat, conf)
	conf.Ablation = 1
	ablated := runSearch(t, cat, conf)
	assert.Equal(t, base.MinObjective, ablated.MinObjective)
	assert.Equal(t, base.RuleList, ablated.RuleList)
}

type incumbentRecorder struct {
	NullObserver
	objectives []float64
}

func (r *incumbentRecorder) IncumbentUpdated(objective float64, ruleList []uint16) {
	r.objectives = append(r.objectives, objective)
}

func TestMonotoneIncumbent(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001

	recorder := &incumbentRecorder{}
	s, err := New(cat, conf, recorder)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	s.Finish(false)

	require.NotEmpty(t, recorder.objectives)
	last := 0.5
	for _, objective := range recorder.objectives {
		assert.True(t, objective < last,
			"incumbent went from %g to %g", last, objective)
		last = objective
	}
}

func TestEquivalentPointsBoundPrunesIrreducibleError(t *testing.T) {
	// Samples 0 and 1 are identical under every rule but carry
	// conflicting labels, so 1/4 error is irreducible and the
	// default-only list is already optimal. The minority vector lets
	// the search prove that without expanding a single prefix.
	rules := "{a} 1100\n"
	labels := "{label=0} 0111\n{label=1} 1000\n"

	withMinority := catalogueFrom(t, rules, labels, "minority 1000\n")
	conf := DefaultConfig()
	res := runSearch(t, withMinority, conf)
	assert.Empty(t, res.RuleList)
	assert.Equal(t, 0.25, res.MinObjective)
	assert.Equal(t, 0, res.NumEvaluated)

	without := catalogueFrom(t, rules, labels, "")
	baseline := runSearch(t, without, conf)
	assert.Equal(t, res.MinObjective, baseline.MinObjective)
	assert.Empty(t, baseline.RuleList)
	assert.True(t, baseline.NumEvaluated >= 1)
}

func TestDeterministicRuns(t *testing.T) {
	cat := overlapCatalogue(t)
	for _, policy := range []queue.Policy{queue.BFS, queue.DFS, queue.Curious, queue.LowerBound, queue.Objective} {
		conf := DefaultConfig()
		conf.C = 0.001
		conf.Policy = policy
		conf.Map = pmap.Prefix
		first := runSearch(t, cat, conf)
		second := runSearch(t, cat, conf)
		assert.Equal(t, first.RuleList, second.RuleList, policy.String())
		assert.Equal(t, first.MinObjective, second.MinObjective, policy.String())
		assert.Equal(t, first.NumNodes, second.NumNodes, policy.String())
		assert.Equal(t, first.NumEvaluated, second.NumEvaluated, policy.String())
		assert.InDelta(t, 0.003, first.MinObjective, 1e-12, policy.String())
	}
}

func TestConfigValidation(t *testing.T) {
	cat := catalogueFrom(t, "{a} 1100\n", "{label=0} 0011\n{label=1} 1100\n", "")
	cases := map[string]func(*Config){
		"zero regularization":     func(c *Config) { c.C = 0 },
		"negative regularization": func(c *Config) { c.C = -0.1 },
		"regularization >= 1":     func(c *Config) { c.C = 1 },
		"negative budget":         func(c *Config) { c.MaxNodes = -1 },
		"ablation out of range":   func(c *Config) { c.Ablation = 3 },
		"unknown map":             func(c *Config) { c.Map = pmap.Kind(9) },
		"unknown policy":          func(c *Config) { c.Policy = queue.Policy(9) },
	}
	for name, mutate := range cases {
		conf := DefaultConfig()
		mutate(&conf)
		_, err := New(cat, conf, nil)
		assert.Error(t, err, name)
	}
	_, err := New(nil, DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestEarlyFinishLeavesStateInspectable(t *testing.T) {
	cat := overlapCatalogue(t)
	conf := DefaultConfig()
	conf.C = 0.001
	conf.MaxNodes = 2

	s, err := New(cat, conf, nil)
	require.NoError(t, err)
	for s.Step() {
	}
	res := s.Finish(true)
	require.NotNil(t, res)
	assert.False(t, res.Certified)
	assert.NotNil(t, s.Tree())
	assert.NotNil(t, s.Queue())
	assert.NotNil(t, s.Map())
	assert.True(t, s.Queue().Size() > 0)

	final := s.Finish(false)
	require.NotNil(t, final)
	assert.Nil(t, s.Tree())
	assert.Nil(t, s.Finish(false))
}
