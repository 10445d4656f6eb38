// Package records models rows of external geodata (CSV exports, spreadsheets,
// feature-server layers) as immutable records whose field layout is only known
// at runtime, usually from a header row.
package records

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrEmptyField     = errors.New("records: empty field name")
	ErrDuplicateField = errors.New("records: duplicate field name")
	ErrFieldCount     = errors.New("records: field count mismatch")
)

// Schema describes one row layout. Schemas are interned: NewSchema returns the
// same *Schema for the same name and trimmed field list.
type Schema struct {
	name   string
	fields []string
	index  map[string]int
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Schema{}
)

// NewSchema builds (or returns the registered) schema for name and fields.
// Field names are trimmed of surrounding whitespace and newlines.
func NewSchema(name string, fields []string) (*Schema, error) {
	trimmed := make([]string, 0, len(fields))
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyField, i)
		}
		if _, dup := index[f]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f)
		}
		index[f] = i
		trimmed = append(trimmed, f)
	}

	key := registryKey(name, trimmed)

	registryMu.Lock()
	defer registryMu.Unlock()
	if s, ok := registry[key]; ok {
		return s, nil
	}
	s := &Schema{name: name, fields: trimmed, index: index}
	registry[key] = s
	return s, nil
}

// MustSchema is NewSchema for static field lists.
func MustSchema(name string, fields ...string) *Schema {
	s, err := NewSchema(name, fields)
	if err != nil {
		panic(err)
	}
	return s
}

func registryKey(name string, fields []string) string {
	return name + "\x1e" + strings.Join(fields, "\x1f")
}

func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field names in declaration order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.fields...)
}

func (s *Schema) Len() int { return len(s.fields) }

// Index returns the position of field, or -1.
func (s *Schema) Index(field string) int {
	if i, ok := s.index[field]; ok {
		return i
	}
	return -1
}

// Equal reports structural equality (same name, same fields in the same order).
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || s.name != o.name || len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	return fmt.Sprintf("%s(%s)", s.name, strings.Join(s.fields, ", "))
}

// New builds a record. len(values) must equal the number of fields.
func (s *Schema) New(values ...string) (Record, error) {
	if len(values) != len(s.fields) {
		return Record{}, fmt.Errorf("%w: %s wants %d values, got %d", ErrFieldCount, s.name, len(s.fields), len(values))
	}
	return Record{schema: s, values: append([]string(nil), values...)}, nil
}

// Record is one immutable row.
type Record struct {
	schema *Schema
	values []string
}

func (r Record) Schema() *Schema { return r.schema }

// Get returns the value of field and whether the field exists.
func (r Record) Get(field string) (string, bool) {
	if r.schema == nil {
		return "", false
	}
	i := r.schema.Index(field)
	if i < 0 {
		return "", false
	}
	return r.values[i], true
}

// Value is Get without the presence flag.
func (r Record) Value(field string) string {
	v, _ := r.Get(field)
	return v
}

func (r Record) At(i int) string { return r.values[i] }

func (r Record) Len() int { return len(r.values) }

func (r Record) Values() []string {
	return append([]string(nil), r.values...)
}

// Fields returns a fresh field -> value map; callers may modify it.
func (r Record) Fields() map[string]string {
	out := make(map[string]string, len(r.values))
	if r.schema == nil {
		return out
	}
	for i, f := range r.schema.fields {
		out[f] = r.values[i]
	}
	return out
}

func (r Record) String() string {
	if r.schema == nil {
		return "Record()"
	}
	parts := make([]string, len(r.values))
	for i, f := range r.schema.fields {
		parts[i] = fmt.Sprintf("%s=%q", f, r.values[i])
	}
	return fmt.Sprintf("%s(%s)", r.schema.name, strings.Join(parts, ", "))
}
