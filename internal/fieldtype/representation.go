package fieldtype

import "github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"

// Kind tells the index writer what to do with a Representation.
type Kind int

const (
	// KindStored is the stored and/or indexed field carrying the raw value.
	KindStored Kind = iota
	// KindSorted is a single-value column entry. At most one per document and field.
	KindSorted
	// KindSortedSet is a set-member column entry. The index accumulates them per document.
	KindSortedSet
)

var kindNames = map[Kind]string{
	KindStored:    "stored",
	KindSorted:    "sorted",
	KindSortedSet: "sorted_set",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Representation is one physical form of a field value handed to the index writer.
type Representation struct {
	Kind  Kind
	Field string

	// KindStored
	Value   string
	Boost   float32
	Indexed bool
	Stored  bool
	Term    []byte // set when Indexed

	// KindSorted, KindSortedSet
	Bytes []byte
}

// buildRepresentations holds the structure shared by all field types: the stored or
// indexed entry first, then at most one column entry, shaped by the field's cardinality.
func buildRepresentations(f field.Field, value string, boost float32, encode func(string) []byte) []Representation {
	out := make([]Representation, 0, 2)
	if f.Indexed() || f.Stored() {
		r := Representation{
			Kind:    KindStored,
			Field:   f.Name(),
			Value:   value,
			Boost:   boost,
			Indexed: f.Indexed(),
			Stored:  f.Stored(),
		}
		if f.Indexed() {
			r.Term = encode(value)
		}
		out = append(out, r)
	}
	if !f.HasDocValues() {
		return out
	}

	kind := KindSorted
	if f.MultiValued() {
		kind = KindSortedSet
	}
	return append(out, Representation{
		Kind:  kind,
		Field: f.Name(),
		Bytes: encode(value),
	})
}
