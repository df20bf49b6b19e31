// Package indexing turns external documents into field representations and
// writes them to the store.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
	"github.com/kailas-cloud/fieldcodec/internal/metrics"
)

// defaultBoost is applied to every value; boosts are carried, never interpreted.
const defaultBoost = 1.0

// Service indexes documents against a fixed schema.
type Service struct {
	schema *schema.Schema
	types  *fieldtype.Registry
	store  Store
	logger *zap.Logger
}

// New creates an indexing service.
func New(s *schema.Schema, types *fieldtype.Registry, store Store, logger *zap.Logger) *Service {
	return &Service{schema: s, types: types, store: store, logger: logger}
}

// Index replaces doc with values, keyed by field name. Fields are processed in
// name order so the representation list is deterministic.
func (s *Service) Index(ctx context.Context, doc uint32, values map[string][]string) error {
	reps, err := s.Representations(values)
	if err != nil {
		return err
	}
	if err := s.store.WriteDocument(ctx, doc, reps); err != nil {
		return fmt.Errorf("write document %d: %w", doc, err)
	}

	for _, r := range reps {
		metrics.RepresentationsTotal.WithLabelValues(s.typeName(r.Field), r.Kind.String()).Inc()
	}
	s.logger.Debug("document indexed",
		zap.Uint32("doc", doc),
		zap.Int("fields", len(values)),
		zap.Int("representations", len(reps)),
	)
	return nil
}

// Representations builds the representations of values without writing them.
func (s *Service) Representations(values map[string][]string) ([]fieldtype.Representation, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	var reps []fieldtype.Representation
	for _, name := range names {
		f, err := s.schema.Field(name)
		if err != nil {
			return nil, err
		}
		t, err := s.types.For(f)
		if err != nil {
			return nil, err
		}
		vals := values[name]
		if len(vals) > 1 && !f.MultiValued() {
			return nil, domain.NewFieldError(name, domain.ErrCardinalityViolation)
		}
		for _, v := range vals {
			built, err := t.CreateFields(f, v, defaultBoost)
			if err != nil {
				return nil, fmt.Errorf("create fields: %w", err)
			}
			reps = append(reps, built...)
		}
	}
	if err := docvalues.CheckCardinality(reps); err != nil {
		return nil, err
	}
	return reps, nil
}

// Delete removes doc.
func (s *Service) Delete(ctx context.Context, doc uint32) error {
	if err := s.store.DeleteDocument(ctx, doc); err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			return fmt.Errorf("document %d: %w", doc, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("delete document %d: %w", doc, err)
	}
	s.logger.Debug("document deleted", zap.Uint32("doc", doc))
	return nil
}

func (s *Service) typeName(name string) string {
	f, err := s.schema.Field(name)
	if err != nil {
		return "unknown"
	}
	return string(f.FieldType())
}

// Build returns the representations of a single value of fieldName with the
// given boost. Used for diagnostics; nothing is written.
func (s *Service) Build(fieldName, value string, boost float32) ([]fieldtype.Representation, error) {
	f, err := s.schema.Field(fieldName)
	if err != nil {
		return nil, err
	}
	t, err := s.types.For(f)
	if err != nil {
		return nil, err
	}
	reps, err := t.CreateFields(f, value, boost)
	if err != nil {
		return nil, fmt.Errorf("create fields: %w", err)
	}
	return reps, nil
}
