package main

import (
	"fmt"
	"os"

	corels "github.com/corels/corels"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	rulesInput    string
	labelsInput   string
	ruleListInput string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a rule list",
		Long:  `Test a learned rule list against a catalogue of rules and labels and report its accuracy`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx, cancel := interruptContext()
			defer cancel()
			catalogue, err := config.loadCatalogue(ctx, config.rulesInput, config.labelsInput, "")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			f, err := os.Open(config.ruleListInput)
			if err != nil {
				fmt.Fprintf(os.Stderr, "opening rule list at %s: %v\n", config.ruleListInput, err)
				os.Exit(3)
			}
			defer f.Close()
			ruleList, predictions, err := corels.ReadRuleList(f, catalogue)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			accuracy, err := corels.EvaluateRuleList(catalogue, ruleList, predictions)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			fmt.Printf("%d rules, accuracy %.5f\n", len(ruleList), accuracy)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.rulesInput), "input", "i", "", "path to a rules file, or a redis://, postgresql://, mongodb:// URL or SQLite3 (.db) file with a stored catalogue (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelsInput), "labels", "l", "", "path to a labels file with exactly two rows (required with a rules file input)")
	cmd.PersistentFlags().StringVarP(&(config.ruleListInput), "rulelist", "t", "", "path to a rule list written by the learn command (required)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.rulesInput == "" {
		return fmt.Errorf("required input flag was not set")
	}
	if tcc.ruleListInput == "" {
		return fmt.Errorf("required rulelist flag was not set")
	}
	return nil
}
