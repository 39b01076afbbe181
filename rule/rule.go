/*
Package rule defines the pre-mined rule catalogue the search engine
consumes: an immutable indexed table of rules with their truth-tables
over the sample space, the two label rows and the optional minority row
that underwrites the equivalent-points bound.

Catalogues are built once by a loader or store and never written to
afterwards, so they are safe to share across any number of searches.
*/
package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/corels/corels/bitvector"
)

// DefaultFeatures is the feature expression of the synthetic rule at
// index 0 that captures every sample.
const DefaultFeatures = "default"

/*
Rule is a single pre-mined rule: an opaque feature expression together
with its truth-table over the N samples. Bit s of the truth-table is set
iff the rule matches sample s. Support is the truth-table popcount and
Cardinality the number of conjuncts in the feature expression.
*/
type Rule struct {
	ID          int
	Features    string
	Cardinality int
	Support     int
	Truthtable  *bitvector.Vector
}

/*
Catalogue is the read-only table of rules and labels a search runs over.
Index 0 always holds the synthetic default rule with an all-ones
truth-table; mined rules occupy indices 1..NRules()-1. The two label
rows are complementary over the sample space. The minority row, when
present, marks samples that are minorities within an equivalent-points
class.
*/
type Catalogue struct {
	rules    []Rule
	labels   []Rule
	minority *Rule
	nsamples int
}

/*
NewCatalogue takes the mined rules, the two label rows and an optional
minority row and returns a catalogue with the synthetic default rule
prepended, or an error if the inputs are inconsistent: there must be
exactly two complementary labels and every truth-table must span the
same number of samples. An empty mined set is valid and yields a
catalogue holding only the default rule.
*/
func NewCatalogue(mined []Rule, labels []Rule, minority *Rule) (*Catalogue, error) {
	if len(labels) != 2 {
		return nil, fmt.Errorf("building catalogue: expected 2 labels, got %d", len(labels))
	}
	nsamples := labels[0].Truthtable.Len()
	if nsamples == 0 {
		return nil, fmt.Errorf("building catalogue: labels span no samples")
	}
	if labels[1].Truthtable.Len() != nsamples {
		return nil, fmt.Errorf("building catalogue: label 1 spans %d samples instead of %d", labels[1].Truthtable.Len(), nsamples)
	}
	for i := range mined {
		if mined[i].Truthtable.Len() != nsamples {
			return nil, fmt.Errorf("building catalogue: rule %d spans %d samples instead of %d", i, mined[i].Truthtable.Len(), nsamples)
		}
	}
	complement := bitvector.New(nsamples)
	complement.Not(labels[0].Truthtable)
	if !complement.Equal(labels[1].Truthtable) {
		return nil, fmt.Errorf("building catalogue: label rows are not complementary")
	}
	if minority != nil && minority.Truthtable.Len() != nsamples {
		return nil, fmt.Errorf("building catalogue: minority row spans %d samples instead of %d", minority.Truthtable.Len(), nsamples)
	}

	rules := make([]Rule, 0, len(mined)+1)
	rules = append(rules, Rule{
		ID:          0,
		Features:    DefaultFeatures,
		Cardinality: 0,
		Support:     nsamples,
		Truthtable:  bitvector.Ones(nsamples),
	})
	for i, r := range mined {
		r.ID = i + 1
		rules = append(rules, r)
	}
	ls := make([]Rule, 2)
	copy(ls, labels)
	for i := range ls {
		ls[i].ID = i
	}
	var m *Rule
	if minority != nil {
		mc := *minority
		mc.ID = 0
		m = &mc
	}
	return &Catalogue{rules: rules, labels: ls, minority: m, nsamples: nsamples}, nil
}

// NRules returns the number of rules including the synthetic default.
func (c *Catalogue) NRules() int {
	return len(c.rules)
}

// NSamples returns the width of every truth-table in the catalogue.
func (c *Catalogue) NSamples() int {
	return c.nsamples
}

// Rule returns the rule at index i. Index 0 is the default rule.
func (c *Catalogue) Rule(i int) Rule {
	return c.rules[i]
}

// Mined returns the rules without the synthetic default, in order.
func (c *Catalogue) Mined() []Rule {
	return c.rules[1:]
}

// Label returns label row i (0 or 1).
func (c *Catalogue) Label(i int) Rule {
	return c.labels[i]
}

// Labels returns both label rows in order.
func (c *Catalogue) Labels() []Rule {
	return c.labels
}

// HasMinority reports whether a minority row was supplied.
func (c *Catalogue) HasMinority() bool {
	return c.minority != nil
}

// Minority returns the minority row, or nil when none was supplied.
func (c *Catalogue) Minority() *Rule {
	return c.minority
}

/*
Store is a backend a catalogue can be saved to and loaded from. The
search engine itself never touches a Store; stores exist so mined rule
sets can be shared between runs and machines.
*/
type Store interface {
	// Save persists the catalogue, replacing whatever the store
	// previously held. The synthetic default rule is not persisted.
	Save(ctx context.Context, c *Catalogue) error
	// Load reads the store contents back into a catalogue or returns
	// an error if the store is empty or inconsistent.
	Load(ctx context.Context) (*Catalogue, error)
}

/*
CardinalityOf derives the conjunct count from a feature expression:
conjuncts are comma-separated within the expression, and the synthetic
default expression has no conjuncts at all.
*/
func CardinalityOf(features string) int {
	if features == "" || features == DefaultFeatures {
		return 0
	}
	return 1 + strings.Count(features, ",")
}
