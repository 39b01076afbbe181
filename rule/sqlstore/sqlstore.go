/*
Package sqlstore provides a rule.Store over a SQL database through a
small Adapter interface, so the same store logic works on PostgreSQL
and SQLite3 backends (see the pgadapter and sqlite3adapter
subpackages).
*/
package sqlstore

import (
	"context"
	"fmt"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/rule"
)

// Row kinds stored in the rules table.
const (
	KindRule     = "rule"
	KindLabel    = "label"
	KindMinority = "minority"
)

// Row is one persisted rule row.
type Row struct {
	Kind     string
	Position int
	Features string
	Bits     string
}

/*
Adapter is an interface providing the methods needed to implement a
rule.Store with a SQL database backend.
*/
type Adapter interface {
	// CreateRuleTable ensures the backing table exists.
	CreateRuleTable(ctx context.Context) error
	// DeleteRows removes every row of the given kind.
	DeleteRows(ctx context.Context, kind string) error
	// AddRows inserts the given rows.
	AddRows(ctx context.Context, rows []Row) error
	// ListRows returns the rows of the given kind ordered by position.
	ListRows(ctx context.Context, kind string) ([]Row, error)
}

type sqlStore struct {
	db Adapter
}

// New builds a rule.Store on top of the given adapter, ensuring the
// backing table exists.
func New(ctx context.Context, db Adapter) (rule.Store, error) {
	if err := db.CreateRuleTable(ctx); err != nil {
		return nil, fmt.Errorf("opening sql rule store: %v", err)
	}
	return &sqlStore{db: db}, nil
}

func (ss *sqlStore) Save(ctx context.Context, c *rule.Catalogue) error {
	for _, kind := range []string{KindRule, KindLabel, KindMinority} {
		if err := ss.db.DeleteRows(ctx, kind); err != nil {
			return fmt.Errorf("saving catalogue: clearing %s rows: %v", kind, err)
		}
	}
	rows := make([]Row, 0, c.NRules()+2)
	for i, r := range c.Mined() {
		rows = append(rows, Row{Kind: KindRule, Position: i, Features: r.Features, Bits: r.Truthtable.BitString()})
	}
	for i, l := range c.Labels() {
		rows = append(rows, Row{Kind: KindLabel, Position: i, Features: l.Features, Bits: l.Truthtable.BitString()})
	}
	if c.HasMinority() {
		m := c.Minority()
		rows = append(rows, Row{Kind: KindMinority, Position: 0, Features: m.Features, Bits: m.Truthtable.BitString()})
	}
	if err := ss.db.AddRows(ctx, rows); err != nil {
		return fmt.Errorf("saving catalogue: %v", err)
	}
	return nil
}

func (ss *sqlStore) Load(ctx context.Context) (*rule.Catalogue, error) {
	mined, err := ss.loadKind(ctx, KindRule)
	if err != nil {
		return nil, err
	}
	labels, err := ss.loadKind(ctx, KindLabel)
	if err != nil {
		return nil, err
	}
	minorityRules, err := ss.loadKind(ctx, KindMinority)
	if err != nil {
		return nil, err
	}
	var minority *rule.Rule
	if len(minorityRules) > 0 {
		minority = &minorityRules[0]
	}
	c, err := rule.NewCatalogue(mined, labels, minority)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %v", err)
	}
	return c, nil
}

func (ss *sqlStore) loadKind(ctx context.Context, kind string) ([]rule.Rule, error) {
	rows, err := ss.db.ListRows(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: listing %s rows: %v", kind, err)
	}
	rules := make([]rule.Rule, 0, len(rows))
	for _, row := range rows {
		tt, ones, err := bitvector.FromBitString(row.Bits)
		if err != nil {
			return nil, fmt.Errorf("loading catalogue: %s row %d: %v", kind, row.Position, err)
		}
		rules = append(rules, rule.Rule{
			Features:    row.Features,
			Cardinality: rule.CardinalityOf(row.Features),
			Support:     ones,
			Truthtable:  tt,
		})
	}
	return rules, nil
}
