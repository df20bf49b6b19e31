// Package search serves sorted retrieval, column reads and term lookups on a
// shard, and merges sorted hit lists from several shards.
package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
	"github.com/kailas-cloud/fieldcodec/internal/metrics"
	"github.com/kailas-cloud/fieldcodec/internal/response"
)

// SortRequest asks for the first Limit documents ordered by Field.
type SortRequest struct {
	Field   string
	Reverse bool
	Limit   int
}

// Hit is one sorted document with its rendered stored fields and sort token.
type Hit struct {
	Doc    uint32
	Fields *response.Document
	Sort   fieldtype.Token
}

// SortResult is the outcome of Sort.
type SortResult struct {
	Sort  fieldtype.SortField
	Total int
	Hits  []Hit
}

// DocValue is the column value of one document; Exists is false when absent.
type DocValue struct {
	Doc    uint32
	Value  string
	Exists bool
}

// ValuesResult is the outcome of Values.
type ValuesResult struct {
	Source string
	Values []DocValue
}

// Service reads one shard.
type Service struct {
	schema       *schema.Schema
	types        *fieldtype.Registry
	store        Store
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// New creates a search service.
func New(s *schema.Schema, types *fieldtype.Registry, store Store, logger *zap.Logger) *Service {
	return &Service{
		schema:       s,
		types:        types,
		store:        store,
		logger:       logger,
		defaultLimit: 10,
		maxLimit:     1000,
	}
}

// WithLimits configures the hit limits.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Sort orders all live documents by req.Field. Ties are broken by ascending doc id.
func (s *Service) Sort(ctx context.Context, req SortRequest) (SortResult, error) {
	f, t, err := s.resolve(req.Field)
	if err != nil {
		return SortResult{}, err
	}
	sf, err := t.SortField(f, req.Reverse)
	if err != nil {
		return SortResult{}, err
	}

	col, err := s.store.LoadColumn(ctx, f.Name(), f.MultiValued())
	if err != nil {
		return SortResult{}, fmt.Errorf("load column: %w", err)
	}
	docs, err := s.store.Documents(ctx)
	if err != nil {
		return SortResult{}, fmt.Errorf("list documents: %w", err)
	}

	type keyed struct {
		doc uint32
		key fieldtype.SortValue
	}
	all := make([]keyed, 0, docs.GetCardinality())
	it := docs.Iterator()
	for it.HasNext() {
		doc := it.Next()
		key, err := sf.Value(col, doc)
		if err != nil {
			metrics.EncodingErrorsTotal.WithLabelValues(metrics.OpSortKey).Inc()
			return SortResult{}, fmt.Errorf("sort key of doc %d: %w", doc, err)
		}
		all = append(all, keyed{doc: doc, key: key})
	}
	slices.SortFunc(all, func(a, b keyed) int {
		if c := sf.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.doc, b.doc)
	})

	limit := s.clampLimit(req.Limit)
	if len(all) > limit {
		all = all[:limit]
	}

	hits := make([]Hit, 0, len(all))
	for _, k := range all {
		fields, err := s.render(ctx, k.doc)
		if err != nil {
			return SortResult{}, err
		}
		tok, err := t.MarshalSortValue(k.key)
		if err != nil {
			metrics.EncodingErrorsTotal.WithLabelValues(metrics.OpMarshal).Inc()
			return SortResult{}, fmt.Errorf("marshal sort value of doc %d: %w", k.doc, err)
		}
		metrics.SortValuesTotal.WithLabelValues(metrics.OpMarshal).Inc()
		hits = append(hits, Hit{Doc: k.doc, Fields: fields, Sort: tok})
	}

	s.logger.Debug("sorted",
		zap.Stringer("sort", sf),
		zap.Uint64("total", docs.GetCardinality()),
		zap.Int("hits", len(hits)),
	)
	return SortResult{Sort: sf, Total: int(docs.GetCardinality()), Hits: hits}, nil
}

// Values reads fieldName's column for docs through the field type's value source.
func (s *Service) Values(ctx context.Context, fieldName string, docs []uint32) (ValuesResult, error) {
	f, t, err := s.resolve(fieldName)
	if err != nil {
		return ValuesResult{}, err
	}

	seg := docvalues.NewSegment()
	if f.HasDocValues() {
		col, err := s.store.LoadColumn(ctx, f.Name(), f.MultiValued())
		if err != nil {
			return ValuesResult{}, fmt.Errorf("load column: %w", err)
		}
		seg = docvalues.NewSegment(col)
	}
	vs, err := t.ValueSource(f, seg)
	if err != nil {
		return ValuesResult{}, err
	}

	out := make([]DocValue, 0, len(docs))
	for _, doc := range docs {
		v, ok, err := vs.StrVal(doc)
		if err != nil {
			metrics.EncodingErrorsTotal.WithLabelValues(metrics.OpValue).Inc()
			return ValuesResult{}, fmt.Errorf("value of doc %d: %w", doc, err)
		}
		out = append(out, DocValue{Doc: doc, Value: v, Exists: ok})
	}
	return ValuesResult{Source: vs.Description(), Values: out}, nil
}

// TermResult is the outcome of Lookup.
type TermResult struct {
	Term string
	Docs []uint32
}

// Lookup finds the documents indexed with value in fieldName. The term is
// produced by the field type exactly as at index time, and rendered back
// through ToObject.
func (s *Service) Lookup(ctx context.Context, fieldName, value string) (TermResult, error) {
	f, t, err := s.resolve(fieldName)
	if err != nil {
		return TermResult{}, err
	}
	if !f.Indexed() {
		return TermResult{}, domain.NewFieldError(f.Name(), domain.ErrUnsupportedAccess)
	}

	reps, err := t.CreateFields(f, value, 1)
	if err != nil {
		return TermResult{}, fmt.Errorf("create fields: %w", err)
	}
	idx := slices.IndexFunc(reps, func(r fieldtype.Representation) bool {
		return r.Kind == fieldtype.KindStored && r.Indexed
	})
	if idx < 0 {
		return TermResult{}, domain.NewFieldError(f.Name(), domain.ErrUnsupportedAccess)
	}
	term := reps[idx].Term

	docs, err := s.store.TermDocs(ctx, f.Name(), term)
	if err != nil {
		return TermResult{}, fmt.Errorf("term docs: %w", err)
	}
	text, err := t.ToObject(f, term)
	if err != nil {
		return TermResult{}, fmt.Errorf("term to object: %w", err)
	}
	return TermResult{Term: text, Docs: docs.ToArray()}, nil
}

// render writes the stored fields of doc in schema order. Stored fields the
// document lacks are written as null.
func (s *Service) render(ctx context.Context, doc uint32) (*response.Document, error) {
	stored, err := s.store.StoredFields(ctx, doc)
	if err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			return nil, fmt.Errorf("document %d: %w", doc, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("stored fields of doc %d: %w", doc, err)
	}

	var multi []string
	fields := s.schema.Fields()
	for _, f := range fields {
		if f.MultiValued() {
			multi = append(multi, f.Name())
		}
	}

	out := response.NewDocument(multi...)
	for _, f := range fields {
		if !f.Stored() {
			continue
		}
		t, err := s.types.For(f)
		if err != nil {
			return nil, err
		}
		values := stored[f.Name()]
		if len(values) == 0 {
			if err := t.Write(out, f.Name(), fieldtype.AbsentStored()); err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Name(), err)
			}
			continue
		}
		for _, v := range values {
			if err := t.Write(out, f.Name(), fieldtype.StoredString(v)); err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Name(), err)
			}
		}
	}
	return out, nil
}

func (s *Service) resolve(name string) (field.Field, fieldtype.Type, error) {
	f, err := s.schema.Field(name)
	if err != nil {
		return field.Field{}, nil, err
	}
	t, err := s.types.For(f)
	if err != nil {
		return field.Field{}, nil, err
	}
	return f, t, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
