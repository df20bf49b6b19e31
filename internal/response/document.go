// Package response renders documents for HTTP clients. Field types write into a
// Document through the fieldtype.ResponseWriter contract; the Document decides
// the wire shape.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

var _ fieldtype.ResponseWriter = (*Document)(nil)

// Document is an ordered set of named fields. Fields keep the order of their
// first write.
type Document struct {
	order  []string
	values map[string][]*string
	multi  map[string]bool
}

// NewDocument creates an empty Document. Fields named in multiValued always
// render as arrays, even with a single value.
func NewDocument(multiValued ...string) *Document {
	d := &Document{
		values: make(map[string][]*string),
		multi:  make(map[string]bool, len(multiValued)),
	}
	for _, name := range multiValued {
		d.multi[name] = true
	}
	return d
}

// WriteStr implements fieldtype.ResponseWriter. Exact and tokenized strings
// share the JSON string form; the value is never rewritten.
func (d *Document) WriteStr(name, value string, _ bool) error {
	d.append(name, &value)
	return nil
}

// WriteNull implements fieldtype.ResponseWriter.
func (d *Document) WriteNull(name string) error {
	d.append(name, nil)
	return nil
}

func (d *Document) append(name string, v *string) {
	if _, ok := d.values[name]; !ok {
		d.order = append(d.order, name)
	}
	d.values[name] = append(d.values[name], v)
}

// Names returns field names in write order.
func (d *Document) Names() []string {
	return append([]string(nil), d.order...)
}

// Values returns the non-null values written under name, in write order.
func (d *Document) Values(name string) []string {
	var out []string
	for _, v := range d.values[name] {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.order) }

// MarshalJSON encodes the document as an object with fields in write order.
// HTML characters are left unescaped so values reach clients byte for byte.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := []byte{'{'}
	for i, name := range d.order {
		if i > 0 {
			out = append(out, ',')
		}
		if err := encodeTo(enc, &buf, &out, name); err != nil {
			return nil, err
		}
		out = append(out, ':')
		if err := encodeTo(enc, &buf, &out, d.fieldValue(name)); err != nil {
			return nil, err
		}
	}
	return append(out, '}'), nil
}

// fieldValue renders an absent field as null whatever its cardinality.
func (d *Document) fieldValue(name string) any {
	vals := d.values[name]
	if len(vals) == 1 && (vals[0] == nil || !d.multi[name]) {
		return vals[0]
	}
	return vals
}

// encodeTo appends the JSON of v to out, minus the encoder's trailing newline.
func encodeTo(enc *json.Encoder, buf *bytes.Buffer, out *[]byte, v any) error {
	buf.Reset()
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode field: %w", err)
	}
	*out = append(*out, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...)
	return nil
}
