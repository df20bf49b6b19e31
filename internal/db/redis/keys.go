package redis

import (
	"fmt"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/fieldcodec/internal/db"
)

// Manifest entries record which keys a document touched so it can be removed
// without knowing its schema. Format: "<kind>:<field>" or "t:<field>:<term>".
// Field names never contain ':'.
const (
	entryStored    = "s"
	entrySorted    = "d"
	entrySortedSet = "m"
	entryTerm      = "t"
)

type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keyspace{prefix: prefix}
}

// docs is the SET of live document ids.
func (k keyspace) docs() string { return k.prefix + "docs" }

// manifest is the SET of entries written for doc.
func (k keyspace) manifest(doc uint32) string { return k.prefix + "keys:" + docID(doc) }

// stored is the LIST of stored values of field in doc.
func (k keyspace) stored(doc uint32, field string) string {
	return k.prefix + "stored:" + docID(doc) + ":" + field
}

// sorted is the HASH doc id -> single column value of field.
func (k keyspace) sorted(field string) string { return k.prefix + "dv:" + field }

// sortedSetDocs is the SET of docs with a value in the multi-valued column of field.
func (k keyspace) sortedSetDocs(field string) string { return k.prefix + "dvs:" + field }

// sortedSet is the SET of column values of field in doc.
func (k keyspace) sortedSet(field string, doc uint32) string {
	return k.prefix + "dvs:" + field + ":" + docID(doc)
}

// term is the SET of docs indexed with term in field.
func (k keyspace) term(field string, term []byte) string {
	return k.prefix + "term:" + field + ":" + string(term)
}

func docID(doc uint32) string {
	return strconv.FormatUint(uint64(doc), 10)
}

func parseDocID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: doc id %q", db.ErrCorruptValue, s)
	}
	return uint32(v), nil
}

func parseDocIDs(ids []string) (*roaring.Bitmap, error) {
	bm := roaring.New()
	for _, id := range ids {
		doc, err := parseDocID(id)
		if err != nil {
			return nil, err
		}
		bm.Add(doc)
	}
	return bm, nil
}
