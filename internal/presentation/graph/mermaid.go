package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/roadtest/pkg/behavior"
)

// Overlay selects which node statuses are highlighted.
type Overlay struct {
	// Statuses colors every node by its current status.
	Statuses bool
}

// GenerateMermaid produces a Mermaid flowchart of a behavior tree.
// Shapes:
// - Sequence: [Rectangle]
// - ParallelAny: {{Hexagon}}
// - ParallelAll: [[Subroutine]]
// - Leaf: ([Stadium])
// Node ids are assigned in walk order since node names need not be unique.
func GenerateMermaid(tree *behavior.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[*behavior.Node]string)
	var classes []string
	tree.Walk(func(n *behavior.Node, _ int) bool {
		id := fmt.Sprintf("n%d", len(ids))
		ids[n] = id

		opener, closer := "([", "])"
		switch n.Policy() {
		case behavior.PolicySequence:
			opener, closer = "[", "]"
		case behavior.PolicyParallelAny:
			opener, closer = "{{", "}}"
		case behavior.PolicyParallelAll:
			opener, closer = "[[", "]]"
		}
		label := escapeLabel(n.Name())
		if !n.IsLeaf() {
			label += " <br/> " + n.Policy().String()
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		if overlay != nil && overlay.Statuses {
			classes = append(classes, fmt.Sprintf("    class %s %s;\n", id, strings.ToLower(n.Status().String())))
		}
		return true
	})

	tree.Walk(func(n *behavior.Node, _ int) bool {
		for i, c := range n.Children() {
			arrow := "-->"
			if n.Policy() == behavior.PolicySequence {
				arrow = fmt.Sprintf("-- \"%d\" -->", i+1)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", ids[n], arrow, ids[c])
		}
		return true
	})

	if overlay != nil && overlay.Statuses {
		sb.WriteString("\n    %% Status Styles\n")
		sb.WriteString("    classDef invalid fill:#eeeeee,stroke:#9e9e9e,color:#000;\n")
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#2e7d32,color:#000;\n")
		sb.WriteString("    classDef failure fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")
		for _, c := range classes {
			sb.WriteString(c)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
