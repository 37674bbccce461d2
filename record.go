package dirq

import "github.com/pavelsr/dirq/internal/codec"

// Record is a field-name-to-value mapping added to or read from a typed
// queue. A simple queue deals in raw []byte payloads instead and never
// uses Record.
type Record = codec.Record

// Value is a tagged union of a record field's payload: either text or
// raw bytes, matching the field's declared schema kind.
type Value = codec.Value

// Kind tags the payload type carried by a Value.
type Kind = codec.Kind

const (
	// KindString marks a textual payload.
	KindString = codec.KindString
	// KindBinary marks an arbitrary byte payload.
	KindBinary = codec.KindBinary
)

// StringValue builds a textual Value.
func StringValue(s string) Value { return codec.String(s) }

// BinaryValue builds a raw-bytes Value.
func BinaryValue(b []byte) Value { return codec.Binary(b) }

// EncodeTable serializes a flattened string map into the form expected by
// a schema field declared with kind "table": pass the result as the Text
// of a StringValue when adding a record with such a field.
func EncodeTable(fields map[string]string) string {
	r := make(codec.Record, len(fields))
	for k, v := range fields {
		r[k] = codec.String(v)
	}
	return string(codec.Encode(r))
}

// DecodeTable reverses EncodeTable, recovering the flattened string map
// stored in a table-kind field's value.
func DecodeTable(encoded string) (map[string]string, error) {
	r, err := codec.Decode([]byte(encoded))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = v.Text
	}
	return out, nil
}
