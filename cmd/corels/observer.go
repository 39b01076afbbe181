package main

import (
	corels "github.com/corels/corels"
	"github.com/sirupsen/logrus"
)

// searchLogger adapts a logrus logger to the search's Observer
// interface.
type searchLogger struct {
	log *logrus.Logger
}

func (l searchLogger) SearchStarted(nrules, nsamples int, conf corels.Config) {
	l.log.WithFields(logrus.Fields{
		"rules":          nrules,
		"samples":        nsamples,
		"regularization": conf.C,
		"policy":         conf.Policy.String(),
		"map":            conf.Map.String(),
		"ablation":       conf.Ablation,
		"max_nodes":      conf.MaxNodes,
	}).Info("search started")
}

func (l searchLogger) IncumbentUpdated(objective float64, ruleList []uint16) {
	l.log.WithFields(logrus.Fields{
		"objective": objective,
		"length":    len(ruleList),
	}).Debug("incumbent updated")
}

func (l searchLogger) SearchFinished(res *corels.Result) {
	l.log.WithFields(logrus.Fields{
		"objective":     res.MinObjective,
		"accuracy":      res.Accuracy,
		"length":        len(res.RuleList),
		"certified":     res.Certified,
		"num_nodes":     res.NumNodes,
		"num_evaluated": res.NumEvaluated,
		"map_discards":  res.MapStats.Discards,
		"duration":      res.Duration,
	}).Info("search finished")
}
