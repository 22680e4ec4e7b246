package main

import (
	"fmt"
	"io"

	"github.com/aretw0/roadtest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario-file>...",
	Short: "Check scenario documents without a simulator",
	Long:  `Builds every scenario file against an empty environment, reporting unknown leaf types, bad parameters and malformed trees.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		return runValidate(cmd.OutOrStdout(), args, quiet)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("quiet", "q", false, "Do not print the expanded trees")
}

func runValidate(w io.Writer, paths []string, quiet bool) error {
	for _, path := range paths {
		tree, err := roadtest.InspectFile(path, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !quiet {
			fmt.Fprint(w, tree.String())
		}
		fmt.Fprintf(w, "%s is valid ✅\n", path)
	}
	return nil
}
