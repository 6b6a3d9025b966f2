package lineage

import (
	"strings"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
)

// Direction selects which way a traversal walks from the root entity.
type Direction string

// Traversal directions.
const (
	DirectionUpstream   Direction = "upstream"
	DirectionDownstream Direction = "downstream"
	DirectionBoth       Direction = "both"
)

// Traversal defaults.
const (
	DefaultDirection = DirectionBoth
	DefaultDepth     = 3
)

// ParseDirection parses a direction name case-insensitively.
// The empty string yields [DefaultDirection].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DefaultDirection, nil
	case DirectionUpstream, DirectionDownstream, DirectionBoth:
		return d, nil
	default:
		return "", lkerr.New(lkerr.ErrCodeInvalidInput, "unknown direction %q (want upstream, downstream or both)", s)
	}
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionUpstream, DirectionDownstream, DirectionBoth:
		return true
	}
	return false
}

// Options parameterize a lineage query.
type Options struct {
	Direction Direction `json:"direction,omitempty"`
	Depth     int       `json:"depth,omitempty"`

	// Refresh bypasses the freshness check and forces a refetch.
	Refresh bool `json:"refresh,omitempty"`
}

// WithDefaults returns a copy of o with zero fields set to the defaults.
func (o Options) WithDefaults() Options {
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	return o
}

// Validate rejects unknown directions and non-positive depths.
// Call it after [Options.WithDefaults].
func (o Options) Validate() error {
	if !o.Direction.Valid() {
		return lkerr.New(lkerr.ErrCodeInvalidInput, "unknown direction %q (want upstream, downstream or both)", o.Direction)
	}
	if o.Depth < 1 {
		return lkerr.New(lkerr.ErrCodeInvalidInput, "depth must be a positive integer, got %d", o.Depth)
	}
	return nil
}

// Traversal returns the traversal metadata for a query rooted at entityID.
func (o Options) Traversal(entityID string) Traversal {
	return Traversal{Depth: o.Depth, Direction: o.Direction, RootEntityID: entityID}
}
