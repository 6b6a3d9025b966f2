package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// =============================================================================
// Canonical Graph Serialization API
// =============================================================================

// MarshalGraph converts a canonical lineage graph to indented JSON bytes.
func MarshalGraph(g *lineage.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a canonical lineage graph as JSON to an io.Writer.
func WriteGraph(g *lineage.Graph, w io.Writer) error {
	return encodeTo(g, w)
}

// WriteGraphFile writes a canonical lineage graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *lineage.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return encodeTo(g, w) })
}

// ReadGraph decodes a canonical lineage graph from an io.Reader.
// Edge styles are re-derived from the relationship kind.
func ReadGraph(r io.Reader) (*lineage.Graph, error) {
	var g lineage.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []lineage.Node{}
	}
	if g.Edges == nil {
		g.Edges = []lineage.Edge{}
	}
	for i := range g.Edges {
		g.Edges[i].Style = lineage.StyleFor(g.Edges[i].RelationshipKind)
	}
	return &g, nil
}

// ReadGraphFile reads a JSON file and returns the decoded lineage graph.
func ReadGraphFile(path string) (*lineage.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Renderable Serialization API
// =============================================================================

// MarshalRenderable converts a lineage graph to renderer-shaped JSON bytes.
func MarshalRenderable(g *lineage.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(FromLineage(g), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRenderable writes a lineage graph in renderer form to an io.Writer.
// Use MarshalRenderable for in-memory serialization or WriteRenderableFile for files.
func WriteRenderable(g *lineage.Graph, w io.Writer) error {
	return encodeTo(FromLineage(g), w)
}

// WriteRenderableFile writes a lineage graph in renderer form to a JSON file.
func WriteRenderableFile(g *lineage.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteRenderable(g, w) })
}

// ReadRenderable decodes a renderer-shaped graph and converts it back to
// the canonical form.
func ReadRenderable(r io.Reader) (*lineage.Graph, error) {
	var data Renderable
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToLineage(data), nil
}

// ReadRenderableFile reads a renderer-shaped JSON file.
func ReadRenderableFile(path string) (*lineage.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRenderable(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encodeTo(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
