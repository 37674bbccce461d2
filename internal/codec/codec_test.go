package codec

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := Record{
		"body":   String("hello world"),
		"header": String("a=b\n%c"),
	}
	encoded := Encode(r)
	decoded, err := Decode(encoded)
	assertNoError(t, err)
	if !r.Equal(decoded) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, r)
	}
}

func TestEncodeEscapesReservedBytes(t *testing.T) {
	r := Record{"k": String("a=b\n%c")}
	encoded := string(Encode(r))
	body := strings.TrimSuffix(strings.TrimPrefix(encoded, "k="), "\n")
	if strings.Contains(body, "=") {
		t.Fatalf("encoded value contains unescaped '=': %q", encoded)
	}
	if strings.Count(encoded, "\n") != 1 {
		t.Fatalf("encoded value contains unescaped newline: %q", encoded)
	}
	if strings.Contains(body, "%") && !strings.Contains(body, "%25") && !strings.Contains(body, "%3d") && !strings.Contains(body, "%0a") {
		t.Fatalf("encoded value contains unescaped '%%': %q", encoded)
	}
}

func TestEncodeSortsKeys(t *testing.T) {
	r := Record{"z": String("1"), "a": String("2"), "m": String("3")}
	encoded := string(Encode(r))
	if !strings.HasPrefix(encoded, "a=2\nm=3\nz=1\n") {
		t.Fatalf("expected sorted keys, got %q", encoded)
	}
}

func TestDecodeEmpty(t *testing.T) {
	r, err := Decode(nil)
	assertNoError(t, err)
	if len(r) != 0 {
		t.Fatalf("expected empty record, got %+v", r)
	}
}

func TestDecodeMissingEquals(t *testing.T) {
	_, err := Decode([]byte("nokeyvalue\n"))
	assertMalformed(t, err)
}

func TestDecodeTruncatedEscape(t *testing.T) {
	_, err := Decode([]byte("k=%2\n"))
	assertMalformed(t, err)
}

func TestDecodeInvalidHex(t *testing.T) {
	_, err := Decode([]byte("k=%zz\n"))
	assertMalformed(t, err)
}

func TestDecodeUnterminatedTrailingLine(t *testing.T) {
	_, err := Decode([]byte("k=v"))
	assertMalformed(t, err)
}

func TestBinaryValueBytes(t *testing.T) {
	v := Binary([]byte{0x00, 0xff, 0x10})
	if v.Kind != KindBinary {
		t.Fatalf("expected KindBinary")
	}
	got := v.Bytes()
	want := []byte{0x00, 0xff, 0x10}
	if string(got) != string(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertMalformed(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	if !errors.Is(err, ErrMalformedEncoding) {
		t.Fatalf("expected ErrMalformedEncoding, got %v", err)
	}
}
