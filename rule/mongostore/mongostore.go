/*
Package mongostore provides an implementation of rule.Store that uses a
MongoDB database as backend.
*/
package mongostore

import (
	"context"
	"fmt"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/rule"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const rulesCollectionName = "rules"

const (
	kindRule     = "rule"
	kindLabel    = "label"
	kindMinority = "minority"
)

type mongoStore struct {
	session *mgo.Session
}

type ruleDoc struct {
	Kind     string `bson:"kind"`
	Position int    `bson:"position"`
	Features string `bson:"features"`
	Bits     string `bson:"bits"`
}

/*
Open takes a MongoDB database session and returns a rule.Store that
works on the default database for that session, or an error if the
backing collection cannot be indexed.
*/
func Open(ctx context.Context, session *mgo.Session) (rule.Store, error) {
	ms := &mongoStore{session: session}
	err := ms.rulesCollection().EnsureIndex(mgo.Index{
		Key:        []string{"kind", "position"},
		Unique:     true,
		Background: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening mongo rule store: %v", err)
	}
	return ms, nil
}

func (ms *mongoStore) Save(ctx context.Context, c *rule.Catalogue) error {
	col := ms.rulesCollection()
	if _, err := col.RemoveAll(bson.M{}); err != nil {
		return fmt.Errorf("saving catalogue to mongo: clearing collection: %v", err)
	}
	docs := make([]interface{}, 0, c.NRules()+2)
	for i, r := range c.Mined() {
		docs = append(docs, ruleDoc{Kind: kindRule, Position: i, Features: r.Features, Bits: r.Truthtable.BitString()})
	}
	for i, l := range c.Labels() {
		docs = append(docs, ruleDoc{Kind: kindLabel, Position: i, Features: l.Features, Bits: l.Truthtable.BitString()})
	}
	if c.HasMinority() {
		m := c.Minority()
		docs = append(docs, ruleDoc{Kind: kindMinority, Position: 0, Features: m.Features, Bits: m.Truthtable.BitString()})
	}
	if err := col.Insert(docs...); err != nil {
		return fmt.Errorf("saving catalogue to mongo: %v", err)
	}
	return nil
}

func (ms *mongoStore) Load(ctx context.Context) (*rule.Catalogue, error) {
	mined, err := ms.loadKind(kindRule)
	if err != nil {
		return nil, err
	}
	labels, err := ms.loadKind(kindLabel)
	if err != nil {
		return nil, err
	}
	minorityRules, err := ms.loadKind(kindMinority)
	if err != nil {
		return nil, err
	}
	var minority *rule.Rule
	if len(minorityRules) > 0 {
		minority = &minorityRules[0]
	}
	c, err := rule.NewCatalogue(mined, labels, minority)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue from mongo: %v", err)
	}
	return c, nil
}

func (ms *mongoStore) loadKind(kind string) ([]rule.Rule, error) {
	var rules []rule.Rule
	var doc ruleDoc
	iter := ms.rulesCollection().Find(bson.M{"kind": kind}).Sort("position").Iter()
	defer iter.Close()
	for iter.Next(&doc) {
		tt, ones, err := bitvector.FromBitString(doc.Bits)
		if err != nil {
			return nil, fmt.Errorf("loading catalogue from mongo: %s row %d: %v", kind, doc.Position, err)
		}
		rules = append(rules, rule.Rule{
			Features:    doc.Features,
			Cardinality: rule.CardinalityOf(doc.Features),
			Support:     ones,
			Truthtable:  tt,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("loading catalogue from mongo: iterating over %s rows: %v", kind, err)
	}
	return rules, nil
}

func (ms *mongoStore) rulesCollection() *mgo.Collection {
	return ms.session.DB("").C(rulesCollectionName)
}
