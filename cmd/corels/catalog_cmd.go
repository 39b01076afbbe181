package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type catalogCmdConfig struct {
	*rootCmdConfig
	rulesInput    string
	labelsInput   string
	minorityInput string
	output        string
}

func catalogCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &catalogCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Copy a rule catalogue into a store",
		Long: `Copy a rule catalogue from files or another store into a redis://,
postgresql://, mongodb:// or SQLite3 (.db) store, so mined rule sets can
be shared between runs without passing files around`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx, cancel := interruptContext()
			defer cancel()
			catalogue, err := config.loadCatalogue(ctx, config.rulesInput, config.labelsInput, config.minorityInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			store, err := catalogueStore(ctx, config.output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if store == nil {
				fmt.Fprintf(os.Stderr, "output %s is not a store URL or .db path\n", config.output)
				os.Exit(3)
			}
			if err = store.Save(ctx, catalogue); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.log.WithField("rules", catalogue.NRules()-1).Info("catalogue stored")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.rulesInput), "input", "i", "", "path to a rules file, or a store URL with an existing catalogue (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelsInput), "labels", "l", "", "path to a labels file (required with a rules file input)")
	cmd.PersistentFlags().StringVarP(&(config.minorityInput), "minority", "m", "", "path to a minority file")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "destination store: redis://, postgresql://, mongodb:// URL or SQLite3 (.db) path (required)")
	return cmd
}

func (ccc *catalogCmdConfig) Validate() error {
	if ccc.rulesInput == "" {
		return fmt.Errorf("required input flag was not set")
	}
	if ccc.output == "" {
		return fmt.Errorf("required output flag was not set")
	}
	return nil
}
