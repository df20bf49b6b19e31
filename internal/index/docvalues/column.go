// Package docvalues holds per-document column values for sorting and scoring,
// and enforces the cardinality contract of single-valued columns.
package docvalues

import (
	"bytes"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

// Column is the doc values of one field: one value per document, or a sorted set of
// unique values per document. Not safe for concurrent mutation.
type Column struct {
	field  string
	multi  bool
	single map[uint32][]byte
	sets   map[uint32][][]byte
	docs   *roaring.Bitmap
}

var _ fieldtype.DocValues = (*Column)(nil)

// NewColumn creates an empty column.
func NewColumn(field string, multi bool) *Column {
	c := &Column{field: field, multi: multi, docs: roaring.New()}
	if multi {
		c.sets = make(map[uint32][][]byte)
	} else {
		c.single = make(map[uint32][]byte)
	}
	return c
}

// Field returns the column's field name.
func (c *Column) Field() string { return c.field }

// MultiValued reports whether the column holds sorted sets.
func (c *Column) MultiValued() bool { return c.multi }

// Set stores the single value of doc. A second value for the same doc is rejected.
func (c *Column) Set(doc uint32, value []byte) error {
	if c.multi {
		return c.Add(doc, value)
	}
	if c.docs.Contains(doc) {
		return domain.NewFieldError(c.field, domain.ErrCardinalityViolation)
	}
	c.single[doc] = slices.Clone(value)
	c.docs.Add(doc)
	return nil
}

// Add inserts value into the set of doc. Duplicates collapse.
func (c *Column) Add(doc uint32, value []byte) error {
	if !c.multi {
		return c.Set(doc, value)
	}
	set := c.sets[doc]
	i, found := slices.BinarySearchFunc(set, value, bytes.Compare)
	if !found {
		c.sets[doc] = slices.Insert(set, i, slices.Clone(value))
	}
	c.docs.Add(doc)
	return nil
}

// Remove drops every value of doc.
func (c *Column) Remove(doc uint32) {
	if c.multi {
		delete(c.sets, doc)
	} else {
		delete(c.single, doc)
	}
	c.docs.Remove(doc)
}

// Value implements fieldtype.DocValues. For a set it returns the smallest member.
func (c *Column) Value(doc uint32) ([]byte, bool) {
	if c.multi {
		set := c.sets[doc]
		if len(set) == 0 {
			return nil, false
		}
		return set[0], true
	}
	v, ok := c.single[doc]
	return v, ok
}

// Values implements fieldtype.DocValues. Members come back in byte order.
func (c *Column) Values(doc uint32) [][]byte {
	if c.multi {
		return c.sets[doc]
	}
	if v, ok := c.single[doc]; ok {
		return [][]byte{v}
	}
	return nil
}

// Has reports whether doc has at least one value.
func (c *Column) Has(doc uint32) bool { return c.docs.Contains(doc) }

// Docs returns a copy of the set of documents with a value.
func (c *Column) Docs() *roaring.Bitmap { return c.docs.Clone() }

// Len returns the number of documents with a value.
func (c *Column) Len() int { return int(c.docs.GetCardinality()) }

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := NewColumn(c.field, c.multi)
	for doc, v := range c.single {
		out.single[doc] = slices.Clone(v)
	}
	for doc, set := range c.sets {
		cp := make([][]byte, len(set))
		for i, v := range set {
			cp[i] = slices.Clone(v)
		}
		out.sets[doc] = cp
	}
	out.docs = c.docs.Clone()
	return out
}
