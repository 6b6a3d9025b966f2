package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or tenants)
// can share one Redis or Mongo backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys for the staging backend
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys and prefixes.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LineageKey generates a prefixed single-entity key.
func (k *ScopedKeyer) LineageKey(entityID string, opts LineageKeyOpts) string {
	return k.prefix + k.inner.LineageKey(entityID, opts)
}

// BatchKey generates a prefixed batch key.
func (k *ScopedKeyer) BatchKey(entityIDs []string, opts LineageKeyOpts) string {
	return k.prefix + k.inner.BatchKey(entityIDs, opts)
}

// EntityPrefix generates a prefixed entity prefix.
func (k *ScopedKeyer) EntityPrefix(entityID string) string {
	return k.prefix + k.inner.EntityPrefix(entityID)
}

// BatchPrefix generates a prefixed batch prefix.
func (k *ScopedKeyer) BatchPrefix() string {
	return k.prefix + k.inner.BatchPrefix()
}
