package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned while building records
var (
	ErrUnknownField   = errors.New("field is not in the schema")
	ErrFieldType      = errors.New("value does not match the field type")
	ErrMissingField   = errors.New("required field is not set")
	ErrNotRecordShape = errors.New("schema is not a record")
)

// StructuredRecord is a record value conforming to a record Schema.
type StructuredRecord struct {
	schema *Schema
	values map[string]interface{}
}

// Schema returns the schema the record was built against.
func (r *StructuredRecord) Schema() *Schema {
	return r.schema
}

// Get returns the value of a field, or nil if it is unset.
func (r *StructuredRecord) Get(name string) interface{} {
	return r.values[name]
}

// GetString returns the value of a string field.
func (r *StructuredRecord) GetString(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// GetBytes returns the value of a bytes field.
func (r *StructuredRecord) GetBytes(name string) []byte {
	b, _ := r.values[name].([]byte)
	return b
}

// MarshalJSON encodes the record as a JSON object with keys in schema field
// order. Bytes fields are base64 encoded.
func (r *StructuredRecord) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, f := range r.schema.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[f.Name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Builder assembles a StructuredRecord field by field. The first error
// encountered is kept and reported by Build.
type Builder struct {
	schema *Schema
	values map[string]interface{}
	err    error
}

// NewBuilder returns a Builder for records of the given schema.
func NewBuilder(s *Schema) *Builder {
	b := &Builder{
		schema: s,
		values: make(map[string]interface{}, len(s.Fields)),
	}
	if !s.IsRecord() {
		b.err = ErrNotRecordShape
	}
	return b
}

// Set assigns a field value.
func (b *Builder) Set(name string, value interface{}) *Builder {
	if b.err != nil {
		return b
	}
	f := b.schema.Field(name)
	if f == nil {
		b.err = fmt.Errorf("%w: %s", ErrUnknownField, name)
		return b
	}
	if !f.Schema.accepts(value) {
		b.err = fmt.Errorf("%w: %s is %s, got %T", ErrFieldType, name, f.Schema.Type, value)
		return b
	}
	b.values[name] = value
	return b
}

// Build returns the record, or the first error recorded by Set. Every
// non-nullable field must have been set.
func (b *Builder) Build() (*StructuredRecord, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, f := range b.schema.Fields {
		if _, ok := b.values[f.Name]; !ok && !f.Schema.Nullable {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.Name)
		}
	}
	return &StructuredRecord{schema: b.schema, values: b.values}, nil
}
