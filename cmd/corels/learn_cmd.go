package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	corels "github.com/corels/corels"
	"github.com/corels/corels/pmap"
	"github.com/corels/corels/profile"
	"github.com/corels/corels/queue"
	"github.com/corels/corels/rule"
	"github.com/spf13/cobra"
)

type learnCmdConfig struct {
	*rootCmdConfig
	rulesInput    string
	labelsInput   string
	minorityInput string
	output        string
	profileInput  string

	regularization float64
	maxNodes       int
	policyName     string
	mapName        string
	ablation       int
	calculateSize  bool
}

func learnCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &learnCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn an optimal rule list from a catalogue",
		Long:  `Learn a certifiably optimal prefix rule list from a catalogue of pre-mined rules and binary labels.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			conf, err := config.searchConfig(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			ctx, cancel := interruptContext()
			defer cancel()
			catalogue, err := config.loadCatalogue(ctx, config.rulesInput, config.labelsInput, config.minorityInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			search, err := corels.New(catalogue, conf, searchLogger{config.log})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			if err = search.Run(ctx); err != nil {
				config.log.WithField("cause", err).Warn("search stopped early, reporting best rule list so far")
			}
			result := search.Finish(false)
			if err = config.writeResult(catalogue, result); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.rulesInput), "input", "i", "", "path to a rules file, or a redis://, postgresql://, mongodb:// URL or SQLite3 (.db) file with a stored catalogue (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelsInput), "labels", "l", "", "path to a labels file with exactly two rows (required with a rules file input)")
	cmd.PersistentFlags().StringVarP(&(config.minorityInput), "minority", "m", "", "path to a minority file enabling the equivalent-points bound")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the learned rule list will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVar(&(config.profileInput), "profile", "", "path to a YAML search profile with defaults for the search parameters")
	cmd.PersistentFlags().Float64VarP(&(config.regularization), "regularization", "r", 0.01, "complexity penalty per rule in the list, in (0, 1)")
	cmd.PersistentFlags().IntVarP(&(config.maxNodes), "max-nodes", "n", 100000, "cap on live search nodes; hitting it returns the best list found without an optimality certificate")
	cmd.PersistentFlags().StringVarP(&(config.policyName), "policy", "p", "bfs", "queue policy: bfs, dfs, curious, lower_bound or objective")
	cmd.PersistentFlags().StringVar(&(config.mapName), "map", "none", "symmetry map: none, prefix or captured")
	cmd.PersistentFlags().IntVarP(&(config.ablation), "ablation", "a", 0, "bound ablation: 0 none, 1 no support bounds, 2 no lookahead bound")
	cmd.PersistentFlags().BoolVarP(&(config.calculateSize), "calculate-size", "s", false, "keep side-band size bookkeeping during the search")
	return cmd
}

func (lcc *learnCmdConfig) Validate() error {
	if lcc.rulesInput == "" {
		return fmt.Errorf("required input flag was not set")
	}
	return nil
}

/*
searchConfig builds the search configuration: profile values first,
then any flag the user set explicitly on the command line.
*/
func (lcc *learnCmdConfig) searchConfig(cmd *cobra.Command) (corels.Config, error) {
	conf := corels.DefaultConfig()
	var err error
	if lcc.profileInput != "" {
		conf, err = profile.ReadFromFile(lcc.profileInput)
		if err != nil {
			return conf, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("regularization") {
		conf.C = lcc.regularization
	}
	if flags.Changed("max-nodes") {
		conf.MaxNodes = lcc.maxNodes
	}
	if flags.Changed("policy") {
		conf.Policy, err = queue.ParsePolicy(lcc.policyName)
		if err != nil {
			return conf, err
		}
	}
	if flags.Changed("map") {
		conf.Map, err = pmap.ParseKind(lcc.mapName)
		if err != nil {
			return conf, err
		}
	}
	if flags.Changed("ablation") {
		conf.Ablation = lcc.ablation
	}
	if flags.Changed("calculate-size") {
		conf.CalculateSize = lcc.calculateSize
	}
	return conf, nil
}

func (lcc *learnCmdConfig) writeResult(catalogue *rule.Catalogue, result *corels.Result) error {
	var f *os.File
	var err error
	if lcc.output == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(lcc.output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %v", lcc.output, err)
		}
		defer f.Close()
	}
	return corels.WriteRuleList(f, catalogue, result.RuleList, result.Predictions)
}

func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}
