package fieldcodec

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "fieldcodec"

var (
	stringType      = reflect.TypeOf("")
	stringPtrType   = reflect.TypeOf((*string)(nil))
	stringSliceType = reflect.TypeOf([]string(nil))
)

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ    reflect.Type
	ptr    bool // T is a pointer to typ
	fields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	def       Field
}

// parseSchema reflects on T and extracts fieldcodec struct tag metadata.
//
// Tag format: `fieldcodec:"name,flag,flag"` with flags indexed, stored,
// docvalues, missing_first and missing_last. Tagged fields must be string,
// *string or []string; []string fields are multi-valued.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("fieldcodec: type parameter must be a struct")
	}
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("fieldcodec: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, ptr: ptr}
	seen := make(map[string]string)
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		def, err := parseTag(sf, tag)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("fieldcodec: field %q tagged on both %s and %s", def.Name, prev, sf.Name)
		}
		seen[def.Name] = sf.Name
		meta.fields = append(meta.fields, fieldMapping{structIdx: i, def: def})
	}

	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("fieldcodec: no `fieldcodec` tags in %s", t)
	}
	return meta, nil
}

func parseTag(sf reflect.StructField, tag string) (Field, error) {
	parts := strings.Split(tag, ",")
	def := Field{Name: parts[0]}
	if def.Name == "" {
		return Field{}, fmt.Errorf("fieldcodec: empty field name on %s", sf.Name)
	}

	if !sf.IsExported() {
		return Field{}, fmt.Errorf("fieldcodec: tagged field %s is not exported", sf.Name)
	}
	switch sf.Type {
	case stringType, stringPtrType:
	case stringSliceType:
		def.MultiValued = true
	default:
		return Field{}, fmt.Errorf("fieldcodec: field %s has type %s, want string, *string or []string", sf.Name, sf.Type)
	}

	for _, flag := range parts[1:] {
		switch strings.TrimSpace(flag) {
		case "indexed":
			def.Indexed = true
		case "stored":
			def.Stored = true
		case "docvalues":
			def.DocValues = true
		case "missing_first":
			def.SortMissingFirst = true
		case "missing_last":
			def.SortMissingLast = true
		default:
			return Field{}, fmt.Errorf("fieldcodec: unknown flag %q on field %s", flag, sf.Name)
		}
	}
	return def, nil
}

func (m *schemaMeta) schemaFields() []Field {
	out := make([]Field, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.def
	}
	return out
}

// toValues converts a typed struct to field values. Empty strings are values;
// nil pointers and empty slices are absent.
func (m *schemaMeta) toValues(item any) map[string][]string {
	out := make(map[string][]string, len(m.fields))
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return out
		}
		v = v.Elem()
	}

	for _, f := range m.fields {
		fv := v.Field(f.structIdx)
		switch fv.Kind() {
		case reflect.String:
			out[f.def.Name] = []string{fv.String()}
		case reflect.Pointer:
			if !fv.IsNil() {
				out[f.def.Name] = []string{fv.Elem().String()}
			}
		case reflect.Slice:
			if fv.Len() > 0 {
				out[f.def.Name] = append([]string(nil), fv.Interface().([]string)...)
			}
		}
	}
	return out
}

// fromFields rebuilds a typed struct from stored values. Fields that are not
// stored stay at their zero value.
func (m *schemaMeta) fromFields(fields map[string][]string) any {
	v := reflect.New(m.typ).Elem()
	for _, f := range m.fields {
		vals, ok := fields[f.def.Name]
		if !ok || len(vals) == 0 {
			continue
		}
		fv := v.Field(f.structIdx)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(vals[0])
		case reflect.Pointer:
			s := vals[0]
			fv.Set(reflect.ValueOf(&s))
		case reflect.Slice:
			fv.Set(reflect.ValueOf(append([]string(nil), vals...)))
		}
	}
	if m.ptr {
		return v.Addr().Interface()
	}
	return v.Interface()
}
