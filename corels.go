/*
Package corels learns certifiably optimal prefix rule lists for binary
classification by branch-and-bound search over a catalogue of pre-mined
rules, following Angelino et al., "Learning Certifiably Optimal Rule
Lists for Categorical Data".

A Search is driven through an explicit begin/loop/end lifecycle: New
validates the configuration and seeds the trie, Step runs one expansion
of the highest-priority prefix, and Finish emits the incumbent rule
list, which carries a certificate of optimality whenever the queue
drained. The search is strictly single-threaded; callers interleave
cancellation, logging or inspection between Step calls.
*/
package corels

import (
	"context"
	"fmt"
	"time"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/pmap"
	"github.com/corels/corels/queue"
	"github.com/corels/corels/rule"
	"github.com/corels/corels/trie"
)

/*
Search is one branch-and-bound run over a rule catalogue. It owns the
cache trie, the priority queue and the symmetry map, and must only be
driven from a single goroutine.
*/
type Search struct {
	conf Config
	cat  *rule.Catalogue
	obs  Observer

	tree *trie.Tree
	q    *queue.Queue
	pm   pmap.Map

	started  time.Time
	finished bool

	// Scratch vectors reused across iterations; owned by the step that
	// fills them.
	captured         *bitvector.Vector
	notCaptured      *bitvector.Vector
	capturedByRule   *bitvector.Vector
	capturedZeros    *bitvector.Vector
	notCapturedAfter *bitvector.Vector
	notCapturedZeros *bitvector.Vector
	minorityScratch  *bitvector.Vector
}

/*
Result is what a finished search hands back to the caller.
*/
type Result struct {
	// RuleList is the optimal (or best-so-far, when uncertified)
	// prefix as catalogue rule ids.
	RuleList []uint16
	// Predictions holds one prediction per rule in RuleList plus the
	// trailing default-rule prediction.
	Predictions []bool
	// MinObjective is the regularised misclassification of RuleList.
	MinObjective float64
	// Accuracy is 1 - MinObjective + c*len(RuleList).
	Accuracy float64
	// Certified reports whether the queue drained: every other rule
	// list was provably eliminated by bounds.
	Certified bool

	NumNodes     int
	NumEvaluated int
	MapStats     pmap.Stats
	Duration     time.Duration
}

/*
New validates the configuration against the catalogue and runs the
begin phase: it builds the trie, queue and symmetry map, inserts the
root with the default-rule-only incumbent and enqueues it. Every
configuration error surfaces here, before any mutable state exists.
*/
func New(cat *rule.Catalogue, conf Config, obs Observer) (*Search, error) {
	if cat == nil {
		return nil, fmt.Errorf("starting search: nil catalogue")
	}
	if obs == nil {
		obs = NullObserver{}
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("starting search: %v", err)
	}
	pm, err := pmap.New(conf.Map)
	if err != nil {
		return nil, fmt.Errorf("starting search: %v", err)
	}
	nsamples := cat.NSamples()
	s := &Search{
		conf:             conf,
		cat:              cat,
		obs:              obs,
		q:                queue.New(conf.Policy),
		pm:               pm,
		started:          time.Now(),
		captured:         bitvector.New(nsamples),
		notCaptured:      bitvector.New(nsamples),
		capturedByRule:   bitvector.New(nsamples),
		capturedZeros:    bitvector.New(nsamples),
		notCapturedAfter: bitvector.New(nsamples),
		notCapturedZeros: bitvector.New(nsamples),
		minorityScratch:  bitvector.New(nsamples),
	}
	s.tree = trie.New(cat, conf.C, conf.Ablation, conf.Policy == queue.Curious, conf.CalculateSize)
	s.tree.InsertRoot()
	s.q.Push(s.tree.Root())
	obs.SearchStarted(cat.NRules(), nsamples, conf)
	return s, nil
}

// Tree exposes the cache trie, mainly for inspection after an early
// Finish and for tests.
func (s *Search) Tree() *trie.Tree {
	return s.tree
}

// Queue exposes the priority queue for inspection.
func (s *Search) Queue() *queue.Queue {
	return s.q
}

// Map exposes the symmetry map for inspection.
func (s *Search) Map() pmap.Map {
	return s.pm
}

/*
Step runs one loop iteration: it selects the next live prefix from the
queue, rebuilds its captured set, and evaluates all one-rule extensions
against the bound battery, inserting survivors into the trie, the queue
and the symmetry map. It returns false once the node budget is hit or
the queue is empty, meaning further calls will do nothing.
*/
func (s *Search) Step() bool {
	if s.finished || s.tree.NumNodes() >= s.conf.MaxNodes || s.q.Empty() {
		return false
	}
	before := s.tree.MinObjective()
	node, prefix := s.q.Select(s.tree, s.captured)
	if node == nil {
		return true
	}
	s.notCaptured.Not(s.captured)
	s.evaluateChildren(node, prefix, s.notCaptured)
	if s.tree.MinObjective() < before {
		s.obs.IncumbentUpdated(s.tree.MinObjective(), s.tree.OptRuleList())
	}
	return true
}

/*
Run drives Step until the search stops on its own, checking the context
between iterations so callers can impose cancellation or deadlines. On
context error the search is left un-finished: call Finish(true) to
inspect the partial state or Finish(false) to tear down.
*/
func (s *Search) Run(ctx context.Context) error {
	for s.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

/*
Finish runs the end phase and returns the result. Unless early is true
it garbage-collects the trie once before reporting and then releases
the trie, queue and map; with early=true everything stays allocated so
the caller can inspect the stopped run through Tree, Queue and Map.
*/
func (s *Search) Finish(early bool) *Result {
	if s.finished {
		return nil
	}
	if !early {
		s.tree.GarbageCollect()
	}
	optList := s.tree.OptRuleList()
	optPredictions := s.tree.OptPredictions()
	res := &Result{
		RuleList:     append([]uint16(nil), optList...),
		Predictions:  append([]bool(nil), optPredictions...),
		MinObjective: s.tree.MinObjective(),
		Accuracy:     1.0 - s.tree.MinObjective() + s.conf.C*float64(len(optList)),
		Certified:    s.q.Empty(),
		NumNodes:     s.tree.NumNodes(),
		NumEvaluated: s.tree.NumEvaluated(),
		MapStats:     s.pm.Stats(),
		Duration:     time.Since(s.started),
	}
	s.obs.SearchFinished(res)
	if !early {
		s.tree = nil
		s.q = nil
		s.pm = nil
		s.finished = true
	}
	return res
}
