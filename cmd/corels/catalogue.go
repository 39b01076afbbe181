package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/corels/corels/rule"
	"github.com/corels/corels/rule/mongostore"
	"github.com/corels/corels/rule/redisstore"
	"github.com/corels/corels/rule/sqlstore"
	"github.com/corels/corels/rule/sqlstore/pgadapter"
	"github.com/corels/corels/rule/sqlstore/sqlite3adapter"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

// redisKeyPrefix prefixes every key a redis-backed catalogue store
// uses.
const redisKeyPrefix = "corels:catalogue"

/*
catalogueStore maps a source string to a rule.Store: PostgreSQL
connection URLs, redis URLs, MongoDB URLs and .db SQLite3 file paths
each select their backend. It returns a nil store when the source is a
plain file path.
*/
func catalogueStore(ctx context.Context, source string) (rule.Store, error) {
	switch {
	case strings.HasPrefix(source, "postgresql://") || strings.HasPrefix(source, "postgres://"):
		adapter, err := pgadapter.New(source)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL adapter for %s: %v", source, err)
		}
		return sqlstore.New(ctx, adapter)
	case strings.HasSuffix(source, ".db"):
		adapter, err := sqlite3adapter.New(source, 0)
		if err != nil {
			return nil, fmt.Errorf("creating SQLite3 adapter for %s: %v", source, err)
		}
		return sqlstore.New(ctx, adapter)
	case strings.HasPrefix(source, "redis://"):
		opts, err := redisOptions(source)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL %s: %v", source, err)
		}
		return redisstore.New(redis.NewClient(opts), redisKeyPrefix), nil
	case strings.HasPrefix(source, "mongodb://"):
		session, err := mgo.Dial(source)
		if err != nil {
			return nil, fmt.Errorf("connecting to MongoDB at %s: %v", source, err)
		}
		return mongostore.Open(ctx, session)
	}
	return nil, nil
}

// redisOptions maps a redis:// URL to client options: host and port,
// optional password and optional numeric database path.
func redisOptions(source string) (*redis.Options, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}
	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		db, err := strconv.Atoi(path)
		if err != nil {
			return nil, fmt.Errorf("invalid redis database %q: %v", path, err)
		}
		opts.DB = db
	}
	return opts, nil
}

/*
loadCatalogue builds a catalogue from a source: a store URL loads the
whole catalogue from the store, while a plain path reads the rules file
and the labels and minority files given alongside it. A minority file
whose sample count does not match the rules is skipped with a warning,
per the reference loader.
*/
func (c *rootCmdConfig) loadCatalogue(ctx context.Context, source, labelsPath, minorityPath string) (*rule.Catalogue, error) {
	store, err := catalogueStore(ctx, source)
	if err != nil {
		return nil, err
	}
	if store != nil {
		c.log.WithField("source", source).Debug("loading catalogue from store")
		return store.Load(ctx)
	}

	if labelsPath == "" {
		return nil, fmt.Errorf("source %s is a rules file and requires a labels file", source)
	}
	mined, nsamples, err := rule.ReadFromFilePath(source)
	if err != nil {
		return nil, err
	}
	labels, nsamplesLabels, err := rule.ReadFromFilePath(labelsPath)
	if err != nil {
		return nil, err
	}
	if nsamplesLabels != nsamples {
		return nil, fmt.Errorf("sample count mismatch between rules file (%d) and labels file (%d)", nsamples, nsamplesLabels)
	}
	var minority *rule.Rule
	if minorityPath != "" {
		minorityRules, nsamplesMinority, err := rule.ReadFromFilePath(minorityPath)
		if err != nil || nsamplesMinority != nsamples || len(minorityRules) != 1 {
			c.log.WithField("path", minorityPath).Warn("skipping minority file: sample count mismatch or unreadable")
		} else {
			minority = &minorityRules[0]
		}
	}
	return rule.NewCatalogue(mined, labels, minority)
}
