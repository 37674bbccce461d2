package schema

import (
	"errors"
	"testing"

	"github.com/pavelsr/dirq/internal/codec"
)

func TestParseBasicFields(t *testing.T) {
	s, err := Parse("body:string header:string?")
	assertNoError(t, err)

	body, ok := s.Field("body")
	if !ok || body.Kind != KindString || body.Optional {
		t.Fatalf("unexpected body field: %+v (ok=%v)", body, ok)
	}
	header, ok := s.Field("header")
	if !ok || header.Kind != KindString || !header.Optional {
		t.Fatalf("unexpected header field: %+v (ok=%v)", header, ok)
	}
}

func TestParseReferenceMarker(t *testing.T) {
	s, err := Parse("body:string body_ref:string?*")
	assertNoError(t, err)

	ref, ok := s.Field("body_ref")
	if !ok || !ref.Optional || !ref.Reference {
		t.Fatalf("expected optional by-reference field, got %+v", ref)
	}
}

func TestParseAllKinds(t *testing.T) {
	s, err := Parse("a:string b:binary c:table")
	assertNoError(t, err)
	for name, wantKind := range map[string]Kind{"a": KindString, "b": KindBinary, "c": KindTable} {
		f, ok := s.Field(name)
		if !ok || f.Kind != wantKind {
			t.Fatalf("field %q: got %+v (ok=%v), want kind %v", name, f, ok, wantKind)
		}
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse("body:text")
	assertInvalid(t, err)
}

func TestParseRejectsMissingSeparator(t *testing.T) {
	_, err := Parse("body")
	assertInvalid(t, err)
}

func TestParseRejectsDuplicateField(t *testing.T) {
	_, err := Parse("body:string body:binary")
	assertInvalid(t, err)
}

func TestParseEmptyIsValidEmptySchema(t *testing.T) {
	s, err := Parse("")
	assertNoError(t, err)
	if len(s.Fields()) != 0 {
		t.Fatalf("expected no fields, got %+v", s.Fields())
	}
}

func TestValidateRejectsUnknownField(t *testing.T) {
	s, err := Parse("body:string header:string?")
	assertNoError(t, err)

	err = s.Validate(codec.Record{
		"body":  codec.String("x"),
		"extra": codec.String("y"),
	})
	assertInvalid(t, err)
}

func TestValidateRequiresMandatoryFields(t *testing.T) {
	s, err := Parse("body:string header:string?")
	assertNoError(t, err)

	err = s.Validate(codec.Record{"header": codec.String("y")})
	assertInvalid(t, err)
}

func TestValidateAllowsMissingOptional(t *testing.T) {
	s, err := Parse("body:string header:string?")
	assertNoError(t, err)

	err = s.Validate(codec.Record{"body": codec.String("x")})
	assertNoError(t, err)
}

func TestValidateChecksBinaryKind(t *testing.T) {
	s, err := Parse("payload:binary")
	assertNoError(t, err)

	err = s.Validate(codec.Record{"payload": codec.String("not binary")})
	assertInvalid(t, err)

	err = s.Validate(codec.Record{"payload": codec.Binary([]byte{1, 2, 3})})
	assertNoError(t, err)
}

func TestFileNameSuffixesBinary(t *testing.T) {
	s, err := Parse("body:string payload:binary")
	assertNoError(t, err)

	body, _ := s.Field("body")
	payload, _ := s.Field("payload")
	if body.FileName() != "body" {
		t.Fatalf("body.FileName() = %q, want %q", body.FileName(), "body")
	}
	if payload.FileName() != "payload.bin" {
		t.Fatalf("payload.FileName() = %q, want %q", payload.FileName(), "payload.bin")
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
