package cache

import (
	"net/url"
	"strconv"
)

// Key namespaces.
const (
	lineagePrefix  = "lineage:"
	batchNamespace = "lineage-batch"
	batchPrefix    = batchNamespace + ":"
)

// LineageKeyOpts are the query parameters that distinguish cached graphs
// of the same entity.
type LineageKeyOpts struct {
	Direction string
	Depth     int
}

// Keyer builds cache keys for lineage graphs.
type Keyer interface {
	// LineageKey is the key for one entity's graph.
	LineageKey(entityID string, opts LineageKeyOpts) string

	// BatchKey is the key for an aggregated graph. Order of entityIDs
	// does not matter.
	BatchKey(entityIDs []string, opts LineageKeyOpts) string

	// EntityPrefix matches every LineageKey of entityID regardless of
	// direction and depth.
	EntityPrefix(entityID string) string

	// BatchPrefix matches every BatchKey.
	BatchPrefix() string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LineageKey returns lineage:<escaped id>:<direction>:<depth>.
func (DefaultKeyer) LineageKey(entityID string, opts LineageKeyOpts) string {
	return lineagePrefix + url.QueryEscape(entityID) + ":" + opts.Direction + ":" + strconv.Itoa(opts.Depth)
}

// BatchKey returns lineage-batch:<hash>:<direction>:<depth>, where hash
// covers the set of entity IDs.
func (DefaultKeyer) BatchKey(entityIDs []string, opts LineageKeyOpts) string {
	return batchPrefix + idSetHash(entityIDs) + ":" + opts.Direction + ":" + strconv.Itoa(opts.Depth)
}

// EntityPrefix returns lineage:<escaped id>:.
func (DefaultKeyer) EntityPrefix(entityID string) string {
	return lineagePrefix + url.QueryEscape(entityID) + ":"
}

// BatchPrefix returns lineage-batch:.
func (DefaultKeyer) BatchPrefix() string {
	return batchPrefix
}
