package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lineagekit/lineagekit/pkg/buildinfo"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/graph"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/normalize"
	"github.com/lineagekit/lineagekit/pkg/pipeline"
	"github.com/lineagekit/lineagekit/pkg/render/nodelink"
)

// Response formats for lineage routes.
const (
	FormatCanonical  = "canonical"
	FormatRenderable = "renderable"
	FormatDOT        = "dot"
)

// Cache headers set on lineage responses.
const (
	HeaderCacheStatus = "X-Lineage-Cache"
	HeaderCacheAge    = "X-Lineage-Cache-Age"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type normalizeResponse struct {
	Shape    normalize.Shape `json:"shape"`
	Warnings []string        `json:"warnings"`
	Graph    any             `json:"graph"`
}

type invalidateResponse struct {
	EntityID string `json:"entityId"`
	Removed  int    `json:"removed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "version": buildinfo.Version}
	if s.cfg.Runner != nil && s.cfg.Runner.Source != nil {
		body["source"] = s.cfg.Runner.Source.Name()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleLineage serves GET /api/v1/lineage/{id}.
func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := queryFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, info, err := s.cfg.Runner.GetLineageWithInfo(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeGraph(w, g, info, format)
}

// handleBatch serves GET /api/v1/lineage?ids=a,b.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := queryFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ids := splitIDs(r.URL.Query()["ids"])
	g, info, err := s.cfg.Runner.GetMultipleLineageWithInfo(r.Context(), ids, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeGraph(w, g, info, format)
}

// handleInvalidate serves POST /api/v1/lineage/{id}/invalidate.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := s.cfg.Runner.Invalidate(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invalidateResponse{EntityID: id, Removed: n})
}

// handleValidate serves POST /api/v1/lineage/validate with a canonical
// graph body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	g, err := graph.ReadGraph(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "read graph"))
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Runner.Validate(g))
}

// handleNormalize serves POST /api/v1/lineage/normalize with a raw backend
// payload of either shape. direction and depth fill the traversal.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := queryFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format == FormatDOT {
		s.writeError(w, r, lkerr.New(lkerr.ErrCodeInvalidInput, "format %q is not supported for normalize", format))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, lkerr.Wrap(lkerr.ErrCodeInvalidInput, err, "read body"))
		return
	}

	g, report, err := normalize.Decode(data, opts.Traversal(r.URL.Query().Get("root")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := normalizeResponse{Shape: report.Shape, Warnings: report.Warnings, Graph: g}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if format == FormatRenderable {
		resp.Graph = graph.FromLineage(g)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMock serves the mock source with the backend's contract, so a
// backend client can be pointed at <addr>/mock.
func (s *Server) handleMock(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.cfg.Mock.FetchLineage(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeGraph(w http.ResponseWriter, g *lineage.Graph, info pipeline.CacheInfo, format string) {
	w.Header().Set(HeaderCacheStatus, string(info.Status))
	if !info.FetchedAt.IsZero() {
		w.Header().Set(HeaderCacheAge, strconv.Itoa(int(info.Age(time.Now()).Seconds())))
	}

	switch format {
	case FormatRenderable:
		writeJSON(w, http.StatusOK, graph.FromLineage(g))
	case FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, nodelink.ToDOT(g, nodelink.Options{}))
	default:
		writeJSON(w, http.StatusOK, g)
	}
}

// queryOptions reads direction, depth and refresh, falling back to the
// server defaults.
func (s *Server) queryOptions(r *http.Request) (lineage.Options, error) {
	q := r.URL.Query()
	opts := s.cfg.Defaults

	if v := q.Get("direction"); v != "" {
		d, err := lineage.ParseDirection(v)
		if err != nil {
			return opts, err
		}
		opts.Direction = d
	}
	if v := q.Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, lkerr.New(lkerr.ErrCodeInvalidInput, "depth must be an integer, got %q", v)
		}
		opts.Depth = n
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, lkerr.New(lkerr.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = b
	}
	return opts, opts.Validate()
}

func queryFormat(r *http.Request) (string, error) {
	switch f := r.URL.Query().Get("format"); f {
	case "", FormatCanonical:
		return FormatCanonical, nil
	case FormatRenderable, FormatDOT:
		return f, nil
	default:
		return "", lkerr.New(lkerr.ErrCodeInvalidInput, "unknown format %q (want canonical, renderable or dot)", f)
	}
}

// splitIDs accepts both ids=a,b and repeated ids= parameters.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	// The client went away; nobody is listening for a body.
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("request cancelled", "path", r.URL.Path)
		return
	}

	code := lkerr.GetCode(err)
	if code == "" {
		code = lkerr.ErrCodeInternal
	}
	status := lkerr.HTTPStatus(err)
	var rl *lkerr.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: lkerr.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
