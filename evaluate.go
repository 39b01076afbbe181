package corels

import (
	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/trie"
)

/*
evaluateChildren enumerates every one-rule extension of the selected
prefix and applies the bound battery, in order: antecedent support,
accurate support, hierarchical objective lower bound, incumbent update,
equivalent-points augmentation, lookahead. Survivors are routed through
the symmetry map; a non-nil return there is attached to the trie and
enqueued.

The child lower bound follows the reference arithmetic: the parent's
equivalent-minority contribution is replaced by the child's own, which
is recomputed over the samples the extended prefix leaves uncaptured.
*/
func (s *Search) evaluateChildren(parent *trie.Node, parentPrefix []uint16, parentNotCaptured *bitvector.Vector) {
	t := s.tree
	c := s.conf.C
	nsamples := float64(t.NSamples())
	nrules := t.NRules()

	for i := 1; i < nrules; i++ {
		if prefixContains(parentPrefix, uint16(i)) {
			continue
		}
		r := t.Rule(i)
		numCaptured := s.capturedByRule.And(parentNotCaptured, r.Truthtable)

		// A rule capturing fewer than c*N new samples cannot pay for
		// its own regularisation.
		if t.Ablation() != 1 && float64(numCaptured)/nsamples < c {
			continue
		}

		capturedZeros := s.capturedZeros.AndNot(s.capturedByRule, t.Label(1).Truthtable)
		var prediction bool
		var correct int
		if capturedZeros > numCaptured-capturedZeros {
			prediction = false
			correct = capturedZeros
		} else {
			prediction = true
			correct = numCaptured - capturedZeros
		}

		// Nor can a rule that predicts correctly on fewer than c*N of
		// the samples it captures.
		if t.Ablation() != 1 && float64(correct)/nsamples < c {
			continue
		}

		lowerBound := parent.LowerBound - parent.EquivalentMinority +
			float64(numCaptured-correct)/nsamples + c
		if lowerBound >= t.MinObjective() {
			continue
		}

		numNotCaptured := s.notCapturedAfter.AndNot(parentNotCaptured, s.capturedByRule)
		notCapturedZeros := s.notCapturedZeros.AndNot(s.notCapturedAfter, t.Label(1).Truthtable)
		var defaultPrediction bool
		var defaultCorrect int
		if notCapturedZeros > numNotCaptured-notCapturedZeros {
			defaultPrediction = false
			defaultCorrect = notCapturedZeros
		} else {
			defaultPrediction = true
			defaultCorrect = numNotCaptured - notCapturedZeros
		}

		objective := lowerBound + float64(numNotCaptured-defaultCorrect)/nsamples
		if objective < t.MinObjective() {
			t.UpdateMinObjective(objective)
			t.UpdateOptRuleList(parentPrefix, uint16(i))
			t.UpdateOptPredictions(parent, prediction, defaultPrediction)
		}

		equivalentMinority := 0.0
		if t.HasMinority() {
			count := s.minorityScratch.And(s.notCapturedAfter, t.Minority().Truthtable)
			equivalentMinority = float64(count) / nsamples
			lowerBound += equivalentMinority
		}

		lookaheadBound := lowerBound
		if t.Ablation() != 2 {
			lookaheadBound += c
		}
		if lookaheadBound >= t.MinObjective() {
			continue
		}

		child := s.pm.Insert(uint16(i), prediction, defaultPrediction,
			lowerBound, objective, parent, numNotCaptured,
			equivalentMinority, t, s.notCapturedAfter, parentPrefix)
		if child != nil {
			t.Insert(child)
			s.q.Push(child)
		}
	}

	t.IncrementNumEvaluated()
	if parent.NumChildren() == 0 {
		t.PruneUp(parent)
	} else {
		parent.SetDone()
	}
}

func prefixContains(prefix []uint16, id uint16) bool {
	for _, p := range prefix {
		if p == id {
			return true
		}
	}
	return false
}
