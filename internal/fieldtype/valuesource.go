package fieldtype

import (
	"fmt"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

// QueryContext gives query-time access to column data. Its lifetime is one query.
type QueryContext interface {
	DocValues(field string) (DocValues, bool)
}

// ValueSource exposes a field's column value per document to scoring functions.
// The column is resolved on each access, so building one is free.
type ValueSource interface {
	Description() string
	Exists(doc uint32) bool
	BytesVal(doc uint32) ([]byte, bool)
	StrVal(doc uint32) (string, bool, error)
}

type strValueSource struct {
	field string
	multi bool
	qctx  QueryContext
}

func newStrValueSource(f field.Field, qctx QueryContext) (ValueSource, error) {
	if !f.HasDocValues() {
		return nil, domain.NewFieldError(f.Name(), domain.ErrUnsupportedAccess)
	}
	return &strValueSource{field: f.Name(), multi: f.MultiValued(), qctx: qctx}, nil
}

func (s *strValueSource) Description() string {
	return fmt.Sprintf("str(%s)", s.field)
}

func (s *strValueSource) Exists(doc uint32) bool {
	_, ok := s.BytesVal(doc)
	return ok
}

func (s *strValueSource) BytesVal(doc uint32) ([]byte, bool) {
	dv, ok := s.qctx.DocValues(s.field)
	if !ok {
		return nil, false
	}
	if s.multi {
		return minValue(dv.Values(doc))
	}
	return dv.Value(doc)
}

func (s *strValueSource) StrVal(doc uint32) (string, bool, error) {
	b, ok := s.BytesVal(doc)
	if !ok {
		return "", false, nil
	}
	str, err := Decode(b)
	if err != nil {
		return "", false, fmt.Errorf("%s doc %d: %w", s.Description(), doc, err)
	}
	return str, true, nil
}
