package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/roadtest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of roadtest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "roadtest version %s\n", strings.TrimSpace(roadtest.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
