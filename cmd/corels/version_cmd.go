package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in corels' version
	VersionMajor = 0
	// VersionMinor is the minor number in corels' version
	VersionMinor = 1
	// VersionPatch is the patch number in corels' version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of corels",
		Long:  `All software has versions. This is corels'`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("corels v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
