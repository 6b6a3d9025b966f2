package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/pkg/graph"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/pipeline"
	"github.com/lineagekit/lineagekit/pkg/render/nodelink"
)

// Output formats for lineage graphs.
const (
	formatJSON       = "json"
	formatRenderable = "renderable"
	formatDOT        = "dot"
	formatSVG        = "svg"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatJSON: true, formatRenderable: true, formatDOT: true, formatSVG: true}

// getOpts holds the command-line flags for the get command.
type getOpts struct {
	output   string // output file path; stdout when empty
	format   string // json, renderable, dot or svg
	refresh  bool   // skip the freshness check
	detailed bool   // show columns and metadata in dot/svg output
	rankDir  string // graphviz rank direction
}

// getCommand creates the get command. Several ids are fetched and merged
// into one graph.
func (c *CLI) getCommand() *cobra.Command {
	opts := getOpts{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "get <entity-id>...",
		Short: "Fetch the lineage graph of one or more entities",
		Long: `Fetch the lineage graph of one or more entities through the cache.

A cached graph younger than the freshness window is returned without a
network call. When a refetch fails, a stale graph inside the retention
window is returned instead of the error. Several ids are fetched
concurrently and merged into one graph.`,
		Example: `  lineagekit get tbl_orders
  lineagekit get tbl_orders --direction upstream --depth 2 -f renderable
  lineagekit get tbl_orders tbl_customers -f svg -o lineage.svg
  lineagekit --mode mock get tbl_customers -f dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runGet(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, renderable, dot, svg")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore the freshness window and refetch")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show columns and metadata (dot, svg)")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "graphviz rank direction: LR (default), TB, RL, BT")
	cmd.Flags().String("direction", "", "traversal direction: upstream, downstream, both (default)")
	cmd.Flags().Int("depth", 0, "traversal depth (default 3)")

	cmd.ValidArgsFunction = c.completeEntityIDs
	registerLineageFlagCompletions(cmd)
	return cmd
}

func (c *CLI) runGet(cmd *cobra.Command, ids []string, opts getOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	q := cfg.LineageOptions()
	q.Refresh = opts.refresh

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Fetching lineage for "+strings.Join(ids, ", ")+"...")
	spinner.Start()
	g, info, err := fetchGraph(ctx, runner, ids, q)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("fetched lineage", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "cache", info.Status)

	data, err := encodeGraph(ctx, g, opts)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil || opts.output == "" {
		return err
	}

	printSuccess("Lineage for %s", StyleHighlight.Render(strings.Join(ids, ", ")))
	printStats(g.NodeCount(), g.EdgeCount(), info)
	printFile(opts.output)
	return nil
}

func fetchGraph(ctx context.Context, r *pipeline.Runner, ids []string, q lineage.Options) (*lineage.Graph, pipeline.CacheInfo, error) {
	if len(ids) == 1 {
		return r.GetLineageWithInfo(ctx, ids[0], q)
	}
	return r.GetMultipleLineageWithInfo(ctx, ids, q)
}

// encodeGraph serializes g in the requested format.
func encodeGraph(ctx context.Context, g *lineage.Graph, opts getOpts) ([]byte, error) {
	switch opts.format {
	case formatRenderable:
		return graph.MarshalRenderable(g)
	case formatDOT:
		return []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, RankDir: opts.rankDir})), nil
	case formatSVG:
		return nodelink.Render(ctx, g, nodelink.Options{Detailed: opts.detailed, RankDir: opts.rankDir})
	default:
		return graph.MarshalGraph(g)
	}
}

// validateFormat checks that format is one of validFormats.
func validateFormat(format string) error {
	if !validFormats[format] {
		return fmt.Errorf("invalid format: %s (must be 'json', 'renderable', 'dot', or 'svg')", format)
	}
	return nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
