package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
	log     *logrus.Logger
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corels",
		Short: "corels learns certifiably optimal rule lists",
		Long:  `A tool to learn certifiably optimal prefix rule lists for binary classification from pre-mined rules, test them, and manage rule catalogues`,
	}
	config := &rootCmdConfig{log: logrus.New()}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log search progress to STDERR")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		config.log.SetOutput(os.Stderr)
		if config.verbose {
			config.log.SetLevel(logrus.DebugLevel)
		} else {
			config.log.SetLevel(logrus.InfoLevel)
		}
	}
	rootCmd.AddCommand(versionCmd(), learnCmd(config), testCmd(config), catalogCmd(config))
	return rootCmd
}
