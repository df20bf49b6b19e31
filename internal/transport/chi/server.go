package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	healthuc "github.com/kailas-cloud/fieldcodec/internal/usecase/health"
	"github.com/kailas-cloud/fieldcodec/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/fieldcodec/internal/usecase/search"
	"github.com/kailas-cloud/fieldcodec/internal/version"
)

const (
	maxBodyBytes = 8 << 20
	maxValueDocs = 1000
)

// Server serves the shard HTTP API.
type Server struct {
	indexing      *indexing.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	idx *indexing.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		indexing:      idx,
		search:        search,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Put("/documents/{id}", s.PutDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Get("/sort", s.Sort)
		r.Get("/values", s.Values)
		r.Get("/terms", s.Terms)
		r.Post("/merge", s.Merge)
		r.Post("/representations", s.Representations)
	})
}

// PutDocument handles PUT /api/v1/documents/{id}.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := docParam(w, r)
	if !ok {
		return
	}
	var req indexRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.indexing.Index(r.Context(), doc, req.Fields); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := docParam(w, r)
	if !ok {
		return
	}
	if err := s.indexing.Delete(r.Context(), doc); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sort handles GET /api/v1/sort?field=&order=&limit=.
func (s *Server) Sort(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field is required")
		return
	}
	order, reverse, err := parseOrder(q.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	res, err := s.search.Sort(r.Context(), searchuc.SortRequest{Field: field, Reverse: reverse, Limit: limit})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	hits := make([]hitResponse, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = hitResponse{Doc: h.Doc, Fields: h.Fields, Sort: h.Sort}
	}
	writeJSON(w, http.StatusOK, sortResponse{Field: field, Order: order, Total: res.Total, Hits: hits})
}

// Values handles GET /api/v1/values?field=&docs=1,2,3.
func (s *Server) Values(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field is required")
		return
	}
	docs, err := parseDocList(q.Get("docs"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	res, err := s.search.Values(r.Context(), field, docs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]valueItem, len(res.Values))
	for i, v := range res.Values {
		items[i] = valueItem{Doc: v.Doc}
		if v.Exists {
			value := v.Value
			items[i].Value = &value
		}
	}
	writeJSON(w, http.StatusOK, valuesResponse{Field: field, Source: res.Source, Values: items})
}

// Terms handles GET /api/v1/terms?field=&value=.
func (s *Server) Terms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" || !q.Has("value") {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field and value are required")
		return
	}

	res, err := s.search.Lookup(r.Context(), field, q.Get("value"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	docs := res.Docs
	if docs == nil {
		docs = []uint32{}
	}
	writeJSON(w, http.StatusOK, termsResponse{Field: field, Term: res.Term, Docs: docs})
}

// Merge handles POST /api/v1/merge.
func (s *Server) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field is required")
		return
	}
	order, reverse, err := parseOrder(req.Order)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must not be negative")
		return
	}

	shards := make([]searchuc.ShardResult, len(req.Shards))
	for i, sr := range req.Shards {
		hits := make([]searchuc.ShardHit, len(sr.Hits))
		for j, h := range sr.Hits {
			hits[j] = searchuc.ShardHit{Doc: h.Doc, Sort: h.Sort}
		}
		shards[i] = searchuc.ShardResult{Name: sr.Name, Hits: hits}
	}

	merged, err := s.search.Merge(searchuc.MergeRequest{
		Field:   req.Field,
		Reverse: reverse,
		Limit:   req.Limit,
		Shards:  shards,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	hits := make([]mergedHit, len(merged))
	for i, m := range merged {
		hits[i] = mergedHit{
			Shard:  m.Shard,
			Doc:    m.Doc,
			Sort:   m.Sort,
			Fields: req.Shards[m.ShardIndex].Hits[m.HitIndex].Fields,
		}
	}
	writeJSON(w, http.StatusOK, mergeResponse{Field: req.Field, Order: order, Hits: hits})
}

// Representations handles POST /api/v1/representations. Nothing is written.
func (s *Server) Representations(w http.ResponseWriter, r *http.Request) {
	var req representationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "field is required")
		return
	}
	boost := float32(1)
	if req.Boost != nil {
		boost = *req.Boost
	}

	reps, err := s.indexing.Build(req.Field, req.Value, boost)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]representationItem, len(reps))
	for i, rep := range reps {
		items[i] = representationToItem(rep)
	}
	writeJSON(w, http.StatusOK, representationsResponse{Representations: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Shard:   report.Shard,
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// writeJSON leaves HTML characters unescaped: stored strings go out exactly as indexed.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func docParam(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "id")
	doc, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid document id %q", raw))
		return 0, false
	}
	return uint32(doc), true
}

func parseOrder(s string) (order string, reverse bool, err error) {
	switch strings.ToLower(s) {
	case "", orderAsc:
		return orderAsc, false, nil
	case orderDesc:
		return orderDesc, true, nil
	}
	return "", false, fmt.Errorf("order must be asc or desc, got %q", s)
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", s)
	}
	return n, nil
}

func parseDocList(s string) ([]uint32, error) {
	if s == "" {
		return nil, fmt.Errorf("docs is required")
	}
	parts := strings.Split(s, ",")
	if len(parts) > maxValueDocs {
		return nil, fmt.Errorf("at most %d docs per request", maxValueDocs)
	}
	docs := make([]uint32, 0, len(parts))
	for _, p := range parts {
		doc, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid document id %q", p)
		}
		docs = append(docs, uint32(doc))
	}
	return docs, nil
}
