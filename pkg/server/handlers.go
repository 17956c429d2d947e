package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
	"github.com/matzehuels/orbitgraph/pkg/render"
)

// entityGetter is implemented by sources with a direct id lookup.
type entityGetter interface {
	Entity(ctx context.Context, id int64) (network.Entity, error)
}

// =============================================================================
// Entities
// =============================================================================

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		entities, err := s.src.ListEntities(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(entities))
		return
	}

	limit, err := intParam(q, "limit", network.DefaultSearchLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var found []network.Entity
	if searcher, ok := s.src.(network.Searcher); ok {
		found, err = searcher.Search(r.Context(), query, limit)
	} else {
		var all []network.Entity
		all, err = s.src.ListEntities(r.Context())
		found = network.SearchEntities(all, query, limit)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(found))
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid entity id %q", chi.URLParam(r, "id")))
		return
	}

	if g, ok := s.src.(entityGetter); ok {
		e, err := g.Entity(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
		return
	}

	entities, err := s.src.ListEntities(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, e := range entities {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "entity %d not found", id))
}

// =============================================================================
// Relationships and Statistics
// =============================================================================

func (s *Server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r.URL.Query(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rels, err := s.src.ListRelationships(r.Context(), *win)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rels))
}

// epoch is the default start for statistics windows.
var epoch = time.Unix(0, 0).UTC()

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r.URL.Query(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if win.Start == nil {
		start := epoch
		win.Start = &start
	}
	rels, err := s.src.ListRelationships(r.Context(), *win)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, network.Summarize(rels))
}

type timeRangeBody struct {
	Min *time.Time `json:"min_time"`
	Max *time.Time `json:"max_time"`
}

func (s *Server) handleTimeRange(w http.ResponseWriter, r *http.Request) {
	rg, ok := s.src.(network.Ranger)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "%s cannot report a time range", network.NameOf(s.src)))
		return
	}
	lo, hi, ok, err := rg.TimeRange(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body timeRangeBody
	if ok {
		body.Min, body.Max = &lo, &hi
	}
	writeJSON(w, http.StatusOK, body)
}

// =============================================================================
// Layout
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := layoutOptions(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Window, err = parseWindow(q, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := formatParam(q)
	if format != render.FormatJSON {
		opts.Formats = []string{format}
	}

	res, err := s.runner.Execute(r.Context(), s.src, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeLayout(w, res.Layout, format, res.Artifacts[format])
}

// layoutRequest is the body of POST /api/layout.
type layoutRequest struct {
	Snapshot graph.Snapshot `json:"snapshot"`
	Layout   layout.Options `json:"layout"`
	Format   string         `json:"format,omitempty"`
	Labels   bool           `json:"labels,omitempty"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`
}

func (s *Server) handleLayoutSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	var req layoutRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}

	snap := req.Snapshot
	if snap.ID == "" {
		snap = graph.NewSnapshot(snap.Entities, snap.Relationships, snap.Window)
	}
	format := req.Format
	if format == "" {
		format = render.FormatJSON
	}
	opts := pipeline.Options{
		Layout: req.Layout,
		Labels: req.Labels,
		Width:  req.Width,
		Height: req.Height,
	}
	if format != render.FormatJSON {
		opts.Formats = []string{format}
	}
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.runner.ComputeLayout(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var artifact []byte
	if format != render.FormatJSON {
		arts, err := s.runner.Render(r.Context(), l, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		artifact = arts[format]
	}
	s.writeLayout(w, l, format, artifact)
}

func (s *Server) writeLayout(w http.ResponseWriter, l graph.Layout, format string, artifact []byte) {
	w.Header().Set(layoutIDHeader, l.ID)
	if format == render.FormatJSON {
		writeJSON(w, http.StatusOK, l)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

// =============================================================================
// Query Parameters
// =============================================================================

// parseWindow reads start and end. Without end the window is nil unless
// required.
func parseWindow(q url.Values, requireEnd bool) (*network.Window, error) {
	endStr, startStr := q.Get("end"), q.Get("start")
	if endStr == "" {
		if requireEnd {
			return nil, errors.New(errors.ErrCodeInvalidWindow, "end parameter is required")
		}
		if startStr != "" {
			return nil, errors.New(errors.ErrCodeInvalidWindow, "start requires end")
		}
		return nil, nil
	}

	end, err := network.ParseTime(endStr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWindow, err, "end")
	}
	w := network.AsOf(end)
	if startStr != "" {
		start, err := network.ParseTime(startStr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWindow, err, "start")
		}
		w = network.Between(start, end)
	}
	if err := errors.ValidateWindow(w.Start, w.End); err != nil {
		return nil, err
	}
	return &w, nil
}

func layoutOptions(q url.Values) (pipeline.Options, error) {
	var opts pipeline.Options
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
		opts.Layout.Seed = seed
	}
	n, err := intParam(q, "iterations", 0)
	if err != nil {
		return opts, err
	}
	opts.Layout.Iterations = n
	if opts.Width, err = floatParam(q, "width"); err != nil {
		return opts, err
	}
	if opts.Height, err = floatParam(q, "height"); err != nil {
		return opts, err
	}
	opts.Labels = q.Get("labels") == "true" || q.Get("labels") == "1"
	opts.Refresh = q.Get("refresh") == "true" || q.Get("refresh") == "1"
	return opts, nil
}

func formatParam(q url.Values) string {
	if f := q.Get("format"); f != "" {
		return f
	}
	return render.FormatJSON
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
	}
	return n, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
	}
	return f, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
