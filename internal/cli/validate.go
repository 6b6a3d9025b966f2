package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// validateCommand creates the validate command, which checks a saved graph
// for duplicate node ids and dangling edges.
func (c *CLI) validateCommand() *cobra.Command {
	var renderable bool

	cmd := &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Check a lineage graph for referential integrity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			g, err := readGraph(data, renderable)
			if err != nil {
				return lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "read graph %s", args[0])
			}
			return reportValidation(g, lineage.Validate(g))
		},
	}

	cmd.Flags().BoolVar(&renderable, "renderable", false, "input is in renderable form (as written by get -f renderable)")
	return cmd
}

// reportValidation prints the result and returns an error when the graph is
// invalid, so the exit status reflects it.
func reportValidation(g *lineage.Graph, res lineage.ValidationResult) error {
	if res.IsValid {
		printSuccess("Graph is valid")
		printDetail("%d nodes, %d edges", g.NodeCount(), g.EdgeCount())
		return nil
	}
	for _, e := range res.Errors {
		printError("%s", e)
	}
	return fmt.Errorf("graph has %d integrity error(s)", len(res.Errors))
}
