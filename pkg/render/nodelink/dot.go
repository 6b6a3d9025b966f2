package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds kind, columns and metadata to node labels.
	// When false, only the display label is shown.
	Detailed bool

	// RankDir is the Graphviz rank direction. Empty means "LR", which
	// reads upstream to downstream.
	RankDir string
}

// kindStyle is the node treatment per entity kind.
type kindStyle struct {
	shape string
	fill  string
}

var kindStyles = map[string]kindStyle{
	lineage.KindTable:     {"box", "#eff6ff"},
	lineage.KindView:      {"box", "#f0fdf4"},
	lineage.KindDashboard: {"component", "#fef3c7"},
	lineage.KindNotebook:  {"note", "#f5f3ff"},
	lineage.KindDocument:  {"folder", "#f3f4f6"},
	lineage.KindTerm:      {"ellipse", "#fdf2f8"},
}

var defaultKindStyle = kindStyle{"box", "white"}

// ToDOT converts a lineage graph to Graphviz DOT.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Edges keep their resolved visual style: stroke color, width and dashing.
// Nodes are shaped by kind; the root entities are drawn with a bold outline.
func ToDOT(g *lineage.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}
	roots := map[string]bool{g.Traversal.RootEntityID: true}
	for _, id := range g.Traversal.RootEntityIDs {
		roots[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtNodeAttrs(n, fmtLabel(n, opts.Detailed), roots[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.SourceID, e.TargetID, strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n lineage.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{label}
	if n.Kind != "" {
		parts = append(parts, "kind: "+n.Kind)
	}
	for _, c := range n.Columns {
		col := c.Name
		if c.DataType != "" {
			col += " " + c.DataType
		}
		if c.Classification != "" {
			col += " [" + c.Classification + "]"
		}
		parts = append(parts, col)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
		if s, ok := scalar(n.Metadata[k]); ok {
			parts = append(parts, fmt.Sprintf("%s: %s", k, s))
		}
	}
	return strings.Join(parts, "\n")
}

func fmtNodeAttrs(n lineage.Node, label string, root bool) []string {
	ks, ok := kindStyles[n.Kind]
	if !ok {
		ks = defaultKindStyle
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		"shape=" + ks.shape,
		fmt.Sprintf("fillcolor=%q", ks.fill),
	}
	if root {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

func fmtEdgeAttrs(e lineage.Edge) []string {
	attrs := []string{
		fmt.Sprintf("color=%q", e.Style.StrokeColor),
		fmt.Sprintf("penwidth=%d", e.Style.StrokeWidth),
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Style.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// scalar formats strings, numbers and booleans; nested values are skipped.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int, int64:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render converts g straight to SVG.
func Render(ctx context.Context, g *lineage.Graph, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(g, opts))
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
