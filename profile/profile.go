/*
Package profile parses YAML search profiles: reusable documents that
carry the parameters of a search so runs can be reproduced without
repeating command-line flags.

A profile document looks like:

	search:
	  regularization: 0.01
	  max_nodes: 100000
	  policy: curious
	  map: prefix
	  ablation: 0
	  calculate_size: false

Omitted properties keep their defaults.
*/
package profile

import (
	"fmt"
	"io/ioutil"

	corels "github.com/corels/corels"
	"github.com/corels/corels/pmap"
	"github.com/corels/corels/queue"
	yaml "gopkg.in/yaml.v2"
)

type document struct {
	Search struct {
		Regularization *float64 `yaml:"regularization"`
		MaxNodes       *int     `yaml:"max_nodes"`
		Policy         *string  `yaml:"policy"`
		Map            *string  `yaml:"map"`
		Ablation       *int     `yaml:"ablation"`
		CalculateSize  *bool    `yaml:"calculate_size"`
	} `yaml:"search"`
}

/*
Read takes a slice of bytes with a YAML search profile and returns the
corels.Config it describes, starting from corels.DefaultConfig, or an
error if the document cannot be parsed or names an unknown policy or
map type.
*/
func Read(data []byte) (corels.Config, error) {
	conf := corels.DefaultConfig()
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return conf, fmt.Errorf("parsing search profile: %v", err)
	}
	s := doc.Search
	if s.Regularization != nil {
		conf.C = *s.Regularization
	}
	if s.MaxNodes != nil {
		conf.MaxNodes = *s.MaxNodes
	}
	if s.Policy != nil {
		policy, err := queue.ParsePolicy(*s.Policy)
		if err != nil {
			return conf, fmt.Errorf("parsing search profile: %v", err)
		}
		conf.Policy = policy
	}
	if s.Map != nil {
		kind, err := pmap.ParseKind(*s.Map)
		if err != nil {
			return conf, fmt.Errorf("parsing search profile: %v", err)
		}
		conf.Map = kind
	}
	if s.Ablation != nil {
		conf.Ablation = *s.Ablation
	}
	if s.CalculateSize != nil {
		conf.CalculateSize = *s.CalculateSize
	}
	return conf, nil
}

/*
ReadFromFile reads the file at the given path and parses it with Read.
*/
func ReadFromFile(path string) (corels.Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return corels.DefaultConfig(), fmt.Errorf("reading search profile %s: %v", path, err)
	}
	return Read(data)
}
