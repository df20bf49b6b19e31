package docvalues

import (
	"fmt"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

// CheckCardinality validates the representations of one document: a field may carry
// at most one single-value column entry. Nothing is merged or dropped.
func CheckCardinality(reps []fieldtype.Representation) error {
	seen := make(map[string]bool)
	for _, r := range reps {
		if r.Kind != fieldtype.KindSorted {
			continue
		}
		if seen[r.Field] {
			return domain.NewFieldError(r.Field, domain.ErrCardinalityViolation)
		}
		seen[r.Field] = true
	}
	return nil
}

// Segment is a set of columns, addressed by field name, used as the query context
// of one query.
type Segment struct {
	columns map[string]*Column
}

var _ fieldtype.QueryContext = (*Segment)(nil)

// NewSegment creates a segment over the given columns.
func NewSegment(columns ...*Column) *Segment {
	s := &Segment{columns: make(map[string]*Column, len(columns))}
	for _, c := range columns {
		s.columns[c.Field()] = c
	}
	return s
}

// DocValues implements fieldtype.QueryContext.
func (s *Segment) DocValues(field string) (fieldtype.DocValues, bool) {
	c, ok := s.columns[field]
	if !ok {
		return nil, false
	}
	return c, true
}

// Column returns the column of field, if loaded.
func (s *Segment) Column(field string) (*Column, bool) {
	c, ok := s.columns[field]
	return c, ok
}

// Apply writes the column entries of one document into the segment, creating columns
// on first use. Callers validate with CheckCardinality first.
func (s *Segment) Apply(doc uint32, reps []fieldtype.Representation) error {
	for _, r := range reps {
		var err error
		switch r.Kind {
		case fieldtype.KindSorted:
			err = s.column(r.Field, false).Set(doc, r.Bytes)
		case fieldtype.KindSortedSet:
			err = s.column(r.Field, true).Add(doc, r.Bytes)
		default:
			continue
		}
		if err != nil {
			return fmt.Errorf("doc %d: %w", doc, err)
		}
	}
	return nil
}

// Remove drops doc from every column.
func (s *Segment) Remove(doc uint32) {
	for _, c := range s.columns {
		c.Remove(doc)
	}
}

func (s *Segment) column(field string, multi bool) *Column {
	c, ok := s.columns[field]
	if !ok {
		c = NewColumn(field, multi)
		s.columns[field] = c
	}
	return c
}
