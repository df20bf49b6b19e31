package config

import (
	"fmt"

	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

// SchemaConfig declares the fields of the shard's schema.
type SchemaConfig struct {
	Name   string        `yaml:"name"`
	Fields []FieldConfig `yaml:"fields"`
}

// FieldConfig declares one field.
type FieldConfig struct {
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	Indexed          bool   `yaml:"indexed"`
	Stored           bool   `yaml:"stored"`
	DocValues        bool   `yaml:"doc_values"`
	MultiValued      bool   `yaml:"multi_valued"`
	SortMissingFirst bool   `yaml:"sort_missing_first"`
	SortMissingLast  bool   `yaml:"sort_missing_last"`
}

// Options converts the flags to field options.
func (fc FieldConfig) Options() []field.Option {
	var opts []field.Option
	for _, o := range []struct {
		set bool
		opt field.Option
	}{
		{fc.Indexed, field.Indexed()},
		{fc.Stored, field.Stored()},
		{fc.DocValues, field.DocValues()},
		{fc.MultiValued, field.MultiValued()},
		{fc.SortMissingFirst, field.SortMissingFirst()},
		{fc.SortMissingLast, field.SortMissingLast()},
	} {
		if o.set {
			opts = append(opts, o.opt)
		}
	}
	return opts
}

// Build validates the section and returns the schema. check, when non-nil,
// vets every field against the available field types.
func (sc SchemaConfig) Build(check func(field.Field) error) (*schema.Schema, error) {
	fields := make([]field.Field, 0, len(sc.Fields))
	for i, fc := range sc.Fields {
		ft := fc.Type
		if ft == "" {
			ft = string(field.String)
		}
		f, err := field.New(fc.Name, field.Type(ft), fc.Options()...)
		if err != nil {
			return nil, fmt.Errorf("schema.fields[%d]: %w", i, err)
		}
		fields = append(fields, f)
	}

	s, err := schema.New(sc.Name, fields)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := s.Validate(check); err != nil {
			return nil, err
		}
	}
	return s, nil
}
