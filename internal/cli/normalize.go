package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/pkg/graph"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/normalize"
)

// normalizeOpts holds the command-line flags for the normalize command.
type normalizeOpts struct {
	output    string
	format    string
	root      string
	direction string
	depth     int
}

// normalizeCommand creates the normalize command, which converts a raw
// backend payload of either shape into the canonical graph offline.
func (c *CLI) normalizeCommand() *cobra.Command {
	opts := normalizeOpts{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "normalize <payload.json>",
		Short: "Convert a raw backend payload into a canonical lineage graph",
		Long: `Convert a raw backend payload into a canonical lineage graph.

Both payload shapes are accepted: an object with an "edges" key is read as
the node/edge shape, anything else as the legacy relationship shape.
Missing fields are filled with defaults and reported as warnings. Use "-"
to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runNormalize(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, renderable, dot, svg")
	cmd.Flags().StringVar(&opts.root, "root", "", "root entity id recorded in the traversal")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "traversal direction recorded when the payload has none")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "traversal depth recorded when the payload has none")

	return cmd
}

func (c *CLI) runNormalize(cmd *cobra.Command, path string, opts normalizeOpts) error {
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	dir, err := lineage.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	q := lineage.Options{Direction: dir, Depth: opts.depth}.WithDefaults()
	if err := q.Validate(); err != nil {
		return err
	}

	g, report, err := normalize.Decode(data, q.Traversal(opts.root))
	if err != nil {
		return err
	}

	c.Logger.Info("normalized payload", "shape", report.Shape, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	for _, w := range report.Warnings {
		c.Logger.Warn("payload incomplete", "detail", w)
	}
	if res := lineage.Validate(g); !res.IsValid {
		for _, e := range res.Errors {
			c.Logger.Warn("integrity", "detail", e)
		}
	}

	out, err := encodeGraph(cmd.Context(), g, getOpts{format: opts.format})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil || opts.output == "" {
		return err
	}
	printSuccess("Normalized %s payload", StyleHighlight.Render(string(report.Shape)))
	printFile(opts.output)
	return nil
}

// readInput reads path, or in when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readGraph decodes a canonical or renderable graph from data.
func readGraph(data []byte, renderable bool) (*lineage.Graph, error) {
	if renderable {
		r, err := graph.UnmarshalRenderable(data)
		if err != nil {
			return nil, err
		}
		return graph.ToLineage(r), nil
	}
	return graph.ReadGraph(bytes.NewReader(data))
}
