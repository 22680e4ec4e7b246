package main

import (
	"fmt"

	"github.com/aretw0/roadtest"
	"github.com/aretw0/roadtest/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scenario-file>",
	Short: "Export the scenario tree visualization",
	Long:  `Builds the scenario and outputs a Mermaid diagram (graph TD) of its behavior tree, including the timeout guard and criteria.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := roadtest.InspectFile(args[0], nil)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree.Tree, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
