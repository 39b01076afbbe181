/*
Package redisstore provides a rule.Store backed by a redis database, so
mined rule catalogues can be shared between machines without copying
files around.

The store keeps three lists under the configured prefix:
  - prefix:rules holds one "features bitstring" entry per mined rule
  - prefix:labels holds the two label rows
  - prefix:minority holds the optional minority row
*/
package redisstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/corels/corels/rule"
	redis "gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

// New builds a rule.Store that keeps catalogues on the given redis
// client under the given key prefix.
func New(rc *redis.Client, prefix string) rule.Store {
	return &redisStore{rc: rc, prefix: prefix}
}

func (rs *redisStore) Save(ctx context.Context, c *rule.Catalogue) error {
	if err := rs.replaceList(ctx, rs.rulesKey(), c.Mined()); err != nil {
		return fmt.Errorf("saving catalogue to redis: %v", err)
	}
	if err := rs.replaceList(ctx, rs.labelsKey(), c.Labels()); err != nil {
		return fmt.Errorf("saving catalogue to redis: %v", err)
	}
	var minority []rule.Rule
	if c.HasMinority() {
		minority = []rule.Rule{*c.Minority()}
	}
	if err := rs.replaceList(ctx, rs.minorityKey(), minority); err != nil {
		return fmt.Errorf("saving catalogue to redis: %v", err)
	}
	return nil
}

func (rs *redisStore) Load(ctx context.Context) (*rule.Catalogue, error) {
	mined, err := rs.readList(ctx, rs.rulesKey())
	if err != nil {
		return nil, fmt.Errorf("loading catalogue from redis: %v", err)
	}
	labels, err := rs.readList(ctx, rs.labelsKey())
	if err != nil {
		return nil, fmt.Errorf("loading catalogue from redis: %v", err)
	}
	minorityRules, err := rs.readList(ctx, rs.minorityKey())
	if err != nil {
		return nil, fmt.Errorf("loading catalogue from redis: %v", err)
	}
	var minority *rule.Rule
	if len(minorityRules) > 0 {
		minority = &minorityRules[0]
	}
	c, err := rule.NewCatalogue(mined, labels, minority)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue from redis: %v", err)
	}
	return c, nil
}

func (rs *redisStore) replaceList(ctx context.Context, key string, rules []rule.Rule) error {
	if err := rs.rc.Del(key).Err(); err != nil {
		return fmt.Errorf("clearing %q: %v", key, err)
	}
	if len(rules) == 0 {
		return nil
	}
	entries := make([]interface{}, 0, len(rules))
	for _, r := range rules {
		entries = append(entries, fmt.Sprintf("%s %s", r.Features, r.Truthtable.BitString()))
	}
	if err := rs.rc.RPush(key, entries...).Err(); err != nil {
		return fmt.Errorf("pushing to %q: %v", key, err)
	}
	return nil
}

func (rs *redisStore) readList(ctx context.Context, key string) ([]rule.Rule, error) {
	entries, err := rs.rc.LRange(key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %v", key, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	rules, _, err := rule.Read(strings.NewReader(strings.Join(entries, "\n")))
	if err != nil {
		return nil, fmt.Errorf("parsing entries of %q: %v", key, err)
	}
	return rules, nil
}

func (rs *redisStore) rulesKey() string {
	return fmt.Sprintf("%s:rules", rs.prefix)
}

func (rs *redisStore) labelsKey() string {
	return fmt.Sprintf("%s:labels", rs.prefix)
}

func (rs *redisStore) minorityKey() string {
	return fmt.Sprintf("%s:minority", rs.prefix)
}
