package fieldtype

import (
	"fmt"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

// DocValues is read access to one field's column.
type DocValues interface {
	// Value returns the single value of doc.
	Value(doc uint32) ([]byte, bool)
	// Values returns every value of doc, for multi-valued columns.
	Values(doc uint32) [][]byte
}

// MissingOrder places documents that have no value.
type MissingOrder int

const (
	// MissingNatural treats a missing value as lower than any value: first when
	// ascending, last when descending.
	MissingNatural MissingOrder = iota
	// MissingFirst always sorts missing values first.
	MissingFirst
	// MissingLast always sorts missing values last.
	MissingLast
)

// Selector picks the sort key of a multi-valued document.
type Selector int

const (
	// SelectorSingle reads the single value.
	SelectorSingle Selector = iota
	// SelectorMin uses the smallest value.
	SelectorMin
	// SelectorMax uses the largest value.
	SelectorMax
)

// SortField orders documents by the byte order of a field's column value.
// The same Compare drives local sorting and the coordinator merge, so both agree.
type SortField struct {
	Field    string
	Reverse  bool
	Missing  MissingOrder
	Selector Selector
}

// newStringSort builds the descriptor for a byte-ordered column.
func newStringSort(f field.Field, reverse bool) (SortField, error) {
	if !f.HasDocValues() {
		return SortField{}, domain.NewFieldError(f.Name(), domain.ErrUnsupportedSort)
	}

	missing := MissingNatural
	switch {
	case f.SortMissingFirst():
		missing = MissingFirst
	case f.SortMissingLast():
		missing = MissingLast
	}
	// Multi-valued documents sort by the value that leads in the requested
	// direction: the smallest ascending, the largest descending.
	sel := SelectorSingle
	if f.MultiValued() {
		sel = SelectorMin
		if reverse {
			sel = SelectorMax
		}
	}
	return SortField{Field: f.Name(), Reverse: reverse, Missing: missing, Selector: sel}, nil
}

// Compare returns the relative order of two sort keys in this sort: negative when a
// comes first. Equal keys return 0 and are left for the caller to break.
func (s SortField) Compare(a, b SortValue) int {
	switch {
	case a.IsAbsent() && b.IsAbsent():
		return 0
	case a.IsAbsent():
		return s.missingFirst()
	case b.IsAbsent():
		return -s.missingFirst()
	}
	c := compareUTF16(a.units, b.units)
	if s.Reverse {
		return -c
	}
	return c
}

// missingFirst returns -1 when a missing value sorts before a present one.
func (s SortField) missingFirst() int {
	switch s.Missing {
	case MissingFirst:
		return -1
	case MissingLast:
		return 1
	}
	if s.Reverse {
		return 1
	}
	return -1
}

// Value extracts the sort key of doc from the field's column.
func (s SortField) Value(dv DocValues, doc uint32) (SortValue, error) {
	var (
		b  []byte
		ok bool
	)
	switch s.Selector {
	case SelectorMin:
		b, ok = minValue(dv.Values(doc))
	case SelectorMax:
		b, ok = maxValue(dv.Values(doc))
	default:
		b, ok = dv.Value(doc)
	}
	if !ok {
		return AbsentSortValue(), nil
	}
	v, err := SortValueFromBytes(b)
	if err != nil {
		return SortValue{}, fmt.Errorf("sort key of doc %d in %q: %w", doc, s.Field, err)
	}
	return v, nil
}

func (s SortField) String() string {
	dir := "asc"
	if s.Reverse {
		dir = "desc"
	}
	return s.Field + " " + dir
}

func minValue(values [][]byte) ([]byte, bool) {
	if len(values) == 0 {
		return nil, false
	}
	lo := values[0]
	for _, v := range values[1:] {
		if Compare(v, lo) < 0 {
			lo = v
		}
	}
	return lo, true
}

func maxValue(values [][]byte) ([]byte, bool) {
	if len(values) == 0 {
		return nil, false
	}
	hi := values[0]
	for _, v := range values[1:] {
		if Compare(v, hi) > 0 {
			hi = v
		}
	}
	return hi, true
}
