// Package schema parses and validates the typed queue's field grammar:
//
//	schema := field (WS field)*
//	field  := name ":" kind opt? ref?
//	kind   := "string" | "binary" | "table"
//	opt    := "?"   (optional)
//	ref    := "*"   (by reference — accepted, stored as by-value)
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pavelsr/dirq/internal/codec"
)

// Kind is a field's declared data type.
type Kind int

const (
	// KindString is a textual field, percent-escaped on disk.
	KindString Kind = iota
	// KindBinary is a raw-bytes field, stored without escaping.
	KindBinary
	// KindTable is a nested string-to-string mapping, stored via codec.Encode.
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Field describes one declared schema field.
type Field struct {
	Name string
	Kind Kind
	// Optional marks a field as absent-permitted in a record.
	Optional bool
	// Reference marks the field as by-reference in the grammar. It is
	// surfaced for introspection only; storage treats it identically to
	// by-value, per the accepted-but-equivalent decision on this marker.
	Reference bool
}

// Schema is an ordered, name-indexed set of fields.
type Schema struct {
	fields map[string]Field
	order  []string
}

// ErrInvalidConfiguration is returned when a schema string or a record
// validated against a schema is malformed.
var ErrInvalidConfiguration = errors.New("schema: invalid configuration")

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse parses a schema string such as "body:string header:string?".
func Parse(s string) (*Schema, error) {
	sch := &Schema{fields: make(map[string]Field)}
	s = strings.TrimSpace(s)
	if s == "" {
		return sch, nil
	}
	for _, token := range strings.Fields(s) {
		f, err := parseField(token)
		if err != nil {
			return nil, err
		}
		if _, exists := sch.fields[f.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidConfiguration, f.Name)
		}
		sch.fields[f.Name] = f
		sch.order = append(sch.order, f.Name)
	}
	return sch, nil
}

func parseField(token string) (Field, error) {
	idx := strings.IndexByte(token, ':')
	if idx <= 0 {
		return Field{}, fmt.Errorf("%w: field %q missing name/kind separator", ErrInvalidConfiguration, token)
	}
	name := token[:idx]
	rest := token[idx+1:]
	if !fieldNamePattern.MatchString(name) {
		return Field{}, fmt.Errorf("%w: invalid field name %q", ErrInvalidConfiguration, name)
	}

	f := Field{Name: name}
	for strings.HasSuffix(rest, "?") || strings.HasSuffix(rest, "*") {
		switch rest[len(rest)-1] {
		case '?':
			f.Optional = true
		case '*':
			f.Reference = true
		}
		rest = rest[:len(rest)-1]
	}

	switch rest {
	case "string":
		f.Kind = KindString
	case "binary":
		f.Kind = KindBinary
	case "table":
		f.Kind = KindTable
	default:
		return Field{}, fmt.Errorf("%w: unknown kind %q in field %q", ErrInvalidConfiguration, rest, token)
	}
	return f, nil
}

// Fields returns the schema's fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Field looks up a single field by name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Validate checks that r satisfies the schema: every required field is
// present, no unknown fields exist, and binary/string kinds match the
// value tags carried by the record.
func (s *Schema) Validate(r codec.Record) error {
	for name, f := range s.fields {
		v, present := r[name]
		if !present {
			if !f.Optional {
				return fmt.Errorf("%w: missing required field %q", ErrInvalidConfiguration, name)
			}
			continue
		}
		switch f.Kind {
		case KindBinary:
			if v.Kind != codec.KindBinary {
				return fmt.Errorf("%w: field %q declared binary but value is not", ErrInvalidConfiguration, name)
			}
		case KindString, KindTable:
			if v.Kind != codec.KindString {
				return fmt.Errorf("%w: field %q declared %s but value is not textual", ErrInvalidConfiguration, name, f.Kind)
			}
		}
	}
	for name := range r {
		if _, known := s.fields[name]; !known {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidConfiguration, name)
		}
	}
	return nil
}

// FileName returns the on-disk filename for a field: the bare field name
// for textual/table kinds, "name.bin" for binary. The trailing "?"/"*"
// grammar markers never appear on disk.
func (f Field) FileName() string {
	if f.Kind == KindBinary {
		return f.Name + ".bin"
	}
	return f.Name
}
