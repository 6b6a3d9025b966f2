// Package nodelink renders lineage graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz:
// entities are shaped by kind (tables and views as boxes, dashboards as
// components, notebooks as notes, terms as ellipses) and edges carry the
// stroke color, width and dashing resolved for their relationship kind.
// It is the static export counterpart of the interactive console view.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// or in one step:
//
//	svg, err := nodelink.Render(ctx, g, nodelink.Options{})
//
// # Options
//
//   - Detailed: node labels include kind, columns and scalar metadata
//   - RankDir: Graphviz rank direction, "LR" by default
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
