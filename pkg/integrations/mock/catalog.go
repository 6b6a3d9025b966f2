package mock

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

//go:embed catalog.toml
var defaultCatalog []byte

// Catalog is the entity graph the mock source serves.
type Catalog struct {
	Entities      []Entity       `toml:"entities"`
	Relationships []Relationship `toml:"relationships"`

	index map[string]int
}

// Entity is a catalog node.
type Entity struct {
	ID            string         `toml:"id"`
	Name          string         `toml:"name"`
	Type          string         `toml:"type"`
	Schema        string         `toml:"schema"`
	Database      string         `toml:"database"`
	System        string         `toml:"system"`
	QualifiedName string         `toml:"qualified_name"`
	JobID         string         `toml:"job_id"`
	Columns       []Column       `toml:"columns"`
	Metadata      map[string]any `toml:"metadata"`
}

// Column is a column of a table or view entity.
type Column struct {
	Name           string `toml:"name"`
	DataType       string `toml:"data_type"`
	Classification string `toml:"classification"`
}

// Relationship is a directed catalog edge from Source to Target.
type Relationship struct {
	ID                  string   `toml:"id"`
	Source              string   `toml:"source"`
	Target              string   `toml:"target"`
	Type                string   `toml:"type"`
	SourceColumns       []string `toml:"source_columns"`
	TargetColumns       []string `toml:"target_columns"`
	TransformationLogic string   `toml:"transformation_logic"`
	Confidence          float64  `toml:"confidence"`
	Verified            bool     `toml:"verified"`
	JobID               string   `toml:"job_id"`
}

// DefaultCatalog returns the embedded demo catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("mock: embedded catalog: " + err.Error())
	}
	return c
}

// LoadCatalog reads a TOML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, lkerr.Wrap(lkerr.ErrCodeFileNotFound, err, "mock catalog %s", path)
	}
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a TOML catalog. Entity IDs must be unique and
// every relationship must connect known entities.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "mock catalog")
	}
	c.index = make(map[string]int, len(c.Entities))
	for i, e := range c.Entities {
		if e.ID == "" {
			return nil, lkerr.New(lkerr.ErrCodeInvalidFormat, "mock catalog: entity %d has no id", i)
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, lkerr.New(lkerr.ErrCodeInvalidFormat, "mock catalog: duplicate entity %q", e.ID)
		}
		c.index[e.ID] = i
	}
	for _, r := range c.Relationships {
		for _, end := range []string{r.Source, r.Target} {
			if _, ok := c.index[end]; !ok {
				return nil, lkerr.New(lkerr.ErrCodeInvalidFormat, "mock catalog: relationship %q references unknown entity %q", r.ID, end)
			}
		}
	}
	return &c, nil
}

// Entity looks up an entity by ID.
func (c *Catalog) Entity(id string) (Entity, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entity{}, false
	}
	return c.Entities[i], true
}

// Traverse walks breadth-first from root up to depth hops. Upstream follows
// relationships against their direction, downstream along it; both unions
// the two walks without crossing from one side to the other.
//
// Entities come back root first, then in discovery order. Relationships
// keep catalog order. An unknown root yields nothing.
func (c *Catalog) Traverse(root string, dir lineage.Direction, depth int) ([]Entity, []Relationship) {
	if _, ok := c.index[root]; !ok {
		return nil, nil
	}
	order := []string{root}
	seen := map[string]bool{root: true}
	used := map[int]bool{}

	walk := func(upstream bool) {
		visited := map[string]bool{root: true}
		frontier := []string{root}
		for hop := 0; hop < depth && len(frontier) > 0; hop++ {
			var next []string
			for _, cur := range frontier {
				for i, r := range c.Relationships {
					from, to := r.Source, r.Target
					if upstream {
						from, to = to, from
					}
					if from != cur {
						continue
					}
					used[i] = true
					if visited[to] {
						continue
					}
					visited[to] = true
					next = append(next, to)
					if !seen[to] {
						seen[to] = true
						order = append(order, to)
					}
				}
			}
			frontier = next
		}
	}
	if dir == lineage.DirectionUpstream || dir == lineage.DirectionBoth {
		walk(true)
	}
	if dir == lineage.DirectionDownstream || dir == lineage.DirectionBoth {
		walk(false)
	}

	entities := make([]Entity, 0, len(order))
	for _, id := range order {
		entities = append(entities, c.Entities[c.index[id]])
	}
	idx := make([]int, 0, len(used))
	for i := range used {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	rels := make([]Relationship, 0, len(idx))
	for _, i := range idx {
		rels = append(rels, c.Relationships[i])
	}
	return entities, rels
}
