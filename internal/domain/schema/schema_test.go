package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

func makeField(t *testing.T, name string, opts ...field.Option) field.Field {
	t.Helper()
	f, err := field.New(name, field.String, opts...)
	if err != nil {
		t.Fatalf("field.New(%q): %v", name, err)
	}
	return f
}

func TestNew_Valid(t *testing.T) {
	title := makeField(t, "title", field.Stored())
	tags := makeField(t, "tags", field.MultiValued(), field.DocValues())

	s, err := New("products", []field.Field{title, tags})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "products" {
		t.Errorf("Name() = %q, want %q", s.Name(), "products")
	}
	if len(s.Fields()) != 2 {
		t.Fatalf("Fields() len = %d, want 2", len(s.Fields()))
	}
	if s.Fields()[1].Name() != "tags" {
		t.Errorf("field order not preserved: %v", s.Fields())
	}

	got, err := s.Field("tags")
	if err != nil {
		t.Fatalf("Field(tags): %v", err)
	}
	if !got.MultiValued() {
		t.Error("expected tags to be multi-valued")
	}
}

func TestField_NotFound(t *testing.T) {
	s, err := New("s", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = s.Field("missing")
	if !errors.Is(err, domain.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	var fe *domain.FieldError
	if !errors.As(err, &fe) || fe.Field != "missing" {
		t.Errorf("expected FieldError for %q, got %v", "missing", err)
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	s, err := New("s", []field.Field{makeField(t, "a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := s.Fields()
	fields[0] = makeField(t, "b")
	if s.Fields()[0].Name() != "a" {
		t.Error("schema fields mutated through Fields()")
	}
}

func TestNew_CollectsAllErrors(t *testing.T) {
	a := makeField(t, "a")
	_, err := New("bad name!", []field.Field{a, a})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "alphanumeric") || !strings.Contains(msg, "duplicate field name: a") {
		t.Errorf("expected both problems reported, got %q", msg)
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("", nil)
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected 'required' error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	s, err := New("s", []field.Field{makeField(t, "a"), makeField(t, "b"), makeField(t, "c")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = s.Validate(func(f field.Field) error {
		if f.Name() == "a" {
			return nil
		}
		return fmt.Errorf("rejected")
	})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	msg := err.Error()
	if strings.Contains(msg, `"a"`) || !strings.Contains(msg, `field "b"`) || !strings.Contains(msg, `field "c"`) {
		t.Errorf("expected failures for b and c only, got %q", msg)
	}

	if err := s.Validate(func(field.Field) error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
