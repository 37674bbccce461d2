package dirq

import "github.com/pavelsr/dirq/internal/schema"

// Schema is an ordered, name-indexed set of fields declared for a typed
// queue, parsed from a schema string such as "body:string header:string?".
type Schema = schema.Schema

// Field describes one declared schema field.
type Field = schema.Field

// ParseSchema parses a schema string. The grammar is:
//
//	schema := field (WS field)*
//	field  := name ":" kind opt? ref?
//	kind   := "string" | "binary" | "table"
//
// A trailing "?" marks a field optional; a trailing "*" marks it
// by-reference, accepted for compatibility but stored identically to a
// by-value field.
func ParseSchema(s string) (*Schema, error) {
	return schema.Parse(s)
}
