// Package codec implements the percent-escaped key=value framing used to
// serialize a record to and from a single byte stream.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind tags the payload type carried by a Value.
type Kind int

const (
	// KindString marks a textual payload, percent-escaped on the wire.
	KindString Kind = iota
	// KindBinary marks an arbitrary byte payload.
	KindBinary
)

// Value is a tagged union of a field's payload: either text or bytes.
type Value struct {
	Kind Kind
	Text string
	Bin  []byte
}

// String builds a KindString Value.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Binary builds a KindBinary Value.
func Binary(b []byte) Value { return Value{Kind: KindBinary, Bin: append([]byte(nil), b...)} }

// Bytes returns the value's payload as a byte slice, regardless of kind.
func (v Value) Bytes() []byte {
	if v.Kind == KindBinary {
		return v.Bin
	}
	return []byte(v.Text)
}

// Equal reports whether v and other carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == KindString {
		return v.Text == other.Text
	}
	return string(v.Bin) == string(other.Bin)
}

// Record is a mapping from field name to a tagged value.
type Record map[string]Value

// Equal reports whether r and other contain the same keys and values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ErrMalformedEncoding is returned by Decode when the input is not a valid
// encoding produced by Encode.
var ErrMalformedEncoding = errors.New("codec: malformed encoding")

// Encode serializes r into the form "key1=value1\nkey2=value2\n...", with
// keys sorted lexicographically and values percent-escaped so that `%`,
// `=`, and `\n` never appear unescaped in a value.
func Encode(r Record) []byte {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(escape(r[k].Bytes()))
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

// Decode parses the byte form produced by Encode back into a Record. Every
// decoded value has KindString; callers that need KindBinary semantics for
// a particular field must reinterpret based on a schema.
func Decode(data []byte) (Record, error) {
	r := make(Record)
	s := string(data)
	if s == "" {
		return r, nil
	}
	lines := strings.Split(s, "\n")
	// Encode always terminates the last line with \n, leaving a trailing
	// empty element after Split; anything else means truncated input.
	if last := lines[len(lines)-1]; last != "" {
		return nil, fmt.Errorf("%w: unterminated trailing line", ErrMalformedEncoding)
	}
	lines = lines[:len(lines)-1]

	for _, line := range lines {
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, fmt.Errorf("%w: line missing '=': %q", ErrMalformedEncoding, line)
		}
		key := line[:idx]
		rawValue := line[idx+1:]
		value, err := unescape(rawValue)
		if err != nil {
			return nil, err
		}
		r[key] = String(value)
	}
	return r, nil
}

// EscapeValue percent-escapes a single textual value using the same rules
// Encode applies to each record value. Typed-queue field files reuse this
// for their standalone textual fields, which are not wrapped in the
// key=value\n framing.
func EscapeValue(s string) string {
	return escape([]byte(s))
}

// UnescapeValue reverses EscapeValue.
func UnescapeValue(s string) (string, error) {
	return unescape(s)
}

func escape(b []byte) string {
	var buf strings.Builder
	for _, c := range b {
		switch c {
		case '%':
			buf.WriteString("%25")
		case '=':
			buf.WriteString("%3d")
		case '\n':
			buf.WriteString("%0a")
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&buf, "%%%02x", c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	return buf.String()
}

func unescape(s string) (string, error) {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			buf.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: truncated escape sequence", ErrMalformedEncoding)
		}
		hi, ok1 := hexDigit(s[i+1])
		lo, ok2 := hexDigit(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("%w: invalid escape sequence %q", ErrMalformedEncoding, s[i:i+3])
		}
		buf.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return buf.String(), nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
