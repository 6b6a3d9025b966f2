package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string
	Dir     string
	Redis   RedisConfig
	Mongo   MongoConfig

	// Namespace scopes every key, e.g. "staging". Empty means unscoped.
	Namespace string
}

// Keyer returns the keyer for opts.Namespace.
func (o Options) Keyer() Keyer {
	if o.Namespace == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), namespacePrefix(o.Namespace))
}

// ValidateNamespace rejects namespaces whose keys an unscoped keyer would
// also match, such as "lineage" or "lineage-batch:x".
func ValidateNamespace(ns string) error {
	p := namespacePrefix(ns)
	if strings.HasPrefix(p, lineagePrefix) || strings.HasPrefix(p, batchPrefix) {
		return fmt.Errorf("%w: %q", ErrReservedNamespace, ns)
	}
	return nil
}

func namespacePrefix(ns string) string {
	if ns == "" || strings.HasSuffix(ns, ":") {
		return ns
	}
	return ns + ":"
}

// Open constructs the backend named by opts.Backend. An empty name selects
// the memory backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// Purge removes every lineage entry in namespace from c. A file cache is
// cleared entirely; other backends drop only the namespace's lineage and
// batch keys, so a shared Redis database or Mongo collection keeps
// unrelated keys and other namespaces.
func Purge(ctx context.Context, c Cache, namespace string) (int, error) {
	if fc, ok := c.(*FileCache); ok {
		return fc.Clear(ctx)
	}
	ns := namespacePrefix(namespace)
	n, err := c.DeletePrefix(ctx, ns+lineagePrefix)
	if err != nil {
		return n, err
	}
	m, err := c.DeletePrefix(ctx, ns+batchPrefix)
	return n + m, err
}
