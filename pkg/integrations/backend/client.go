package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/integrations"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Config configures a [Source].
type Config struct {
	BaseURL string            // Backend root, e.g. https://lineage.internal/api (required)
	Token   string            // Bearer token (optional)
	Timeout time.Duration     // Per-request timeout (0 = integrations.DefaultTimeout)
	Headers map[string]string // Extra headers sent on every request
}

// Source fetches lineage from the REST backend.
//
// All methods are safe for concurrent use by multiple goroutines.
type Source struct {
	*integrations.Client
	baseURL string
}

// New creates a backend source. BaseURL must be an http or https URL.
func New(cfg Config) (*Source, error) {
	if err := lkerr.ValidateURL(cfg.BaseURL); err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "backend url")
	}
	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}
	return &Source{
		Client:  integrations.NewClient(cfg.Timeout, headers),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Name implements integrations.Source.
func (s *Source) Name() string { return "backend" }

// FetchLineage retrieves the raw lineage payload for entityID.
//
// Returns:
//   - the response body on success
//   - NOT_FOUND if the backend has no such entity
//   - NETWORK_ERROR, TIMEOUT or RATE_LIMITED for transport failures
//   - ctx.Err() unchanged when the context is cancelled
func (s *Source) FetchLineage(ctx context.Context, entityID string, opts lineage.Options) ([]byte, error) {
	data, err := s.GetBytes(ctx, s.lineageURL(entityID, opts.WithDefaults()), nil)
	if err != nil {
		return nil, integrations.Classify(err, entityID)
	}
	return data, nil
}

func (s *Source) lineageURL(entityID string, opts lineage.Options) string {
	q := url.Values{}
	q.Set("direction", string(opts.Direction))
	q.Set("depth", strconv.Itoa(opts.Depth))
	return fmt.Sprintf("%s/lineage/%s?%s", s.baseURL, url.PathEscape(entityID), q.Encode())
}

var _ integrations.Source = (*Source)(nil)
