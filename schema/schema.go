// Package schema describes the shape of records flowing between pipeline
// stages, and the StructuredRecord values that conform to it.
package schema

import (
	"encoding/json"
	"fmt"
)

// Type identifies the kind of value a Schema describes.
type Type string

// Supported schema types
const (
	String  Type = "string"
	Bytes   Type = "bytes"
	Int     Type = "int"
	Long    Type = "long"
	Boolean Type = "boolean"
	Double  Type = "double"
	Record  Type = "record"
)

// Schema describes either a simple value or a record made of named fields.
type Schema struct {
	Type     Type     `json:"type"`
	Name     string   `json:"name,omitempty"`
	Fields   []*Field `json:"fields,omitempty"`
	Nullable bool     `json:"nullable,omitempty"`
}

// Field is a named member of a record Schema.
type Field struct {
	Name   string  `json:"name"`
	Schema *Schema `json:"type"`
}

// Of returns the Schema of a simple type.
func Of(t Type) *Schema {
	return &Schema{Type: t}
}

// NullableOf returns a Schema of a simple type that also admits nil values.
func NullableOf(t Type) *Schema {
	return &Schema{Type: t, Nullable: true}
}

// NewField creates a Field with the given name and schema.
func NewField(name string, s *Schema) *Field {
	return &Field{Name: name, Schema: s}
}

// RecordOf creates a record Schema. Field order is preserved.
func RecordOf(name string, fields ...*Field) *Schema {
	return &Schema{
		Type:   Record,
		Name:   name,
		Fields: fields,
	}
}

// Field returns the field with the given name, or nil if the schema has no
// such field.
func (s *Schema) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsRecord reports whether the schema describes a record.
func (s *Schema) IsRecord() bool {
	return s.Type == Record
}

func (s *Schema) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("schema(%s)", s.Type)
	}
	return string(data)
}

// accepts reports whether v is a legal Go value for the schema's type.
func (s *Schema) accepts(v interface{}) bool {
	if v == nil {
		return s.Nullable
	}
	switch s.Type {
	case String:
		_, ok := v.(string)
		return ok
	case Bytes:
		_, ok := v.([]byte)
		return ok
	case Int:
		_, ok := v.(int32)
		if !ok {
			_, ok = v.(int)
		}
		return ok
	case Long:
		_, ok := v.(int64)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Double:
		_, ok := v.(float64)
		return ok
	case Record:
		r, ok := v.(*StructuredRecord)
		return ok && r.Schema() == s
	}
	return false
}
