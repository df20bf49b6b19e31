// Package memory is an in-process db.Store for tests, demos and single-node shards.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type termRef struct {
	field string
	term  string
}

// Store keeps documents in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	docs     *roaring.Bitmap
	stored   map[uint32]map[string][]string
	terms    map[string]map[string]*roaring.Bitmap
	docTerms map[uint32][]termRef
	columns  *docvalues.Segment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:     roaring.New(),
		stored:   make(map[uint32]map[string][]string),
		terms:    make(map[string]map[string]*roaring.Bitmap),
		docTerms: make(map[uint32][]termRef),
		columns:  docvalues.NewSegment(),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// WriteDocument implements db.DocumentWriter. On a cardinality violation nothing is written.
func (s *Store) WriteDocument(_ context.Context, doc uint32, reps []fieldtype.Representation) error {
	if err := docvalues.CheckCardinality(reps); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(doc)
	if err := s.columns.Apply(doc, reps); err != nil {
		// unreachable after CheckCardinality on a freshly removed doc
		s.removeLocked(doc)
		return err
	}

	fields := make(map[string][]string)
	for _, r := range reps {
		if r.Kind != fieldtype.KindStored {
			continue
		}
		if r.Stored {
			fields[r.Field] = append(fields[r.Field], r.Value)
		}
		if r.Indexed {
			s.addTermLocked(doc, r.Field, string(r.Term))
		}
	}
	s.stored[doc] = fields
	s.docs.Add(doc)
	return nil
}

// DeleteDocument implements db.DocumentWriter.
func (s *Store) DeleteDocument(_ context.Context, doc uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.docs.Contains(doc) {
		return db.ErrDocumentNotFound
	}
	s.removeLocked(doc)
	return nil
}

// Documents implements db.DocumentReader.
func (s *Store) Documents(context.Context) (*roaring.Bitmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Clone(), nil
}

// StoredFields implements db.DocumentReader.
func (s *Store) StoredFields(_ context.Context, doc uint32) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.stored[doc]
	if !ok {
		return nil, db.ErrDocumentNotFound
	}
	out := make(map[string][]string, len(fields))
	for name, values := range fields {
		out[name] = append([]string(nil), values...)
	}
	return out, nil
}

// TermDocs implements db.DocumentReader.
func (s *Store) TermDocs(_ context.Context, field string, term []byte) (*roaring.Bitmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bm, ok := s.terms[field][string(term)]; ok {
		return bm.Clone(), nil
	}
	return roaring.New(), nil
}

// LoadColumn implements db.ColumnLoader. The column is a snapshot, detached from later writes.
func (s *Store) LoadColumn(_ context.Context, field string, multi bool) (*docvalues.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.columns.Column(field); ok {
		return c.Clone(), nil
	}
	return docvalues.NewColumn(field, multi), nil
}

func (s *Store) addTermLocked(doc uint32, field, term string) {
	byTerm, ok := s.terms[field]
	if !ok {
		byTerm = make(map[string]*roaring.Bitmap)
		s.terms[field] = byTerm
	}
	bm, ok := byTerm[term]
	if !ok {
		bm = roaring.New()
		byTerm[term] = bm
	}
	bm.Add(doc)
	s.docTerms[doc] = append(s.docTerms[doc], termRef{field: field, term: term})
}

func (s *Store) removeLocked(doc uint32) {
	for _, ref := range s.docTerms[doc] {
		bm := s.terms[ref.field][ref.term]
		if bm == nil {
			continue
		}
		bm.Remove(doc)
		if bm.IsEmpty() {
			delete(s.terms[ref.field], ref.term)
		}
	}
	delete(s.docTerms, doc)
	delete(s.stored, doc)
	s.columns.Remove(doc)
	s.docs.Remove(doc)
}
