package normalize

import (
	"maps"
	"strconv"

	"github.com/google/uuid"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// edgeNamespace seeds synthesized edge IDs. Synthesized IDs are name-based
// (UUIDv5) so normalizing the same payload twice yields the same graph.
var edgeNamespace = uuid.MustParse("6f1c1c52-8a4e-4d52-9a7e-6c1b0f3f2a10")

// place assigns pos when the payload carried one, else the grid position
// for index among total nodes.
func place(n *lineage.Node, pos *lineage.Position, index, total int) {
	if pos != nil {
		n.Position = *pos
		return
	}
	n.Position = lineage.AutoLayout(index, total)
	n.AutoPlaced = true
}

// mergeMeta shallow-merges extra over base. Empty string values in base are
// dropped so absent payload fields do not appear as blank keys. Returns nil
// when the result is empty.
func mergeMeta(base lineage.Metadata, extra map[string]any) lineage.Metadata {
	out := lineage.Metadata{}
	for k, v := range base {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	maps.Copy(out, extra)
	if len(out) == 0 {
		return nil
	}
	return out
}

// edgeIDs synthesizes IDs for edges the payload left unnamed. The ID
// depends on the endpoints and relationship kind, so the same edge gets the
// same ID in every entity's payload. Repeats within one payload are
// numbered in order of appearance.
type edgeIDs map[string]int

func (s edgeIDs) next(id, source, target, kind string) string {
	if id != "" {
		return id
	}
	name := source + "\x00" + target + "\x00" + kind
	n := s[name]
	s[name] = n + 1
	if n > 0 {
		name += "\x00" + strconv.Itoa(n)
	}
	return "edge-" + uuid.NewSHA1(edgeNamespace, []byte(name)).String()
}
