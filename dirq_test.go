package dirq_test

import (
	"testing"

	"github.com/pavelsr/dirq"
)

func TestTypedQueueBasicOperations(t *testing.T) {
	tmpDir := t.TempDir()

	q, err := dirq.OpenTyped(tmpDir, "body:string header:string?")
	if err != nil {
		t.Fatalf("OpenTyped() error = %v", err)
	}

	id, err := q.Add(dirq.Record{"body": dirq.StringValue("hello")})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok, err := q.Lock(id, false)
	if err != nil || !ok {
		t.Fatalf("Lock() = %v, %v, want true, nil", ok, err)
	}

	record, err := q.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record["body"].Text != "hello" {
		t.Errorf("body = %q, want %q", record["body"].Text, "hello")
	}

	if err := q.Remove(id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	count, err := q.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestSimpleQueueWithCompression(t *testing.T) {
	tmpDir := t.TempDir()

	q, err := dirq.OpenSimple(tmpDir, dirq.WithCompression())
	if err != nil {
		t.Fatalf("OpenSimple() error = %v", err)
	}

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = 'a'
	}

	id, err := q.Add(payload)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := q.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Error("Get() did not round-trip the payload")
	}
}

func TestNullQueueDiscardsEverything(t *testing.T) {
	q := dirq.OpenNull()

	id, err := q.Add([]byte("ignored"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := q.Get(id); err == nil {
		t.Error("Get() on a null queue should always fail")
	}

	count, err := q.Count()
	if err != nil || count != 0 {
		t.Errorf("Count() = %d, %v, want 0, nil", count, err)
	}
}

func TestSetFederatesMembers(t *testing.T) {
	a, err := dirq.OpenSimple(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSimple() error = %v", err)
	}
	b, err := dirq.OpenSimple(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSimple() error = %v", err)
	}

	set := dirq.NewSet(a, b)

	idA, err := a.Add([]byte("from a"))
	if err != nil {
		t.Fatalf("a.Add() error = %v", err)
	}
	idB, err := b.Add([]byte("from b"))
	if err != nil {
		t.Fatalf("b.Add() error = %v", err)
	}

	count, err := set.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	if err := set.First(); err != nil {
		t.Fatalf("First() error = %v", err)
	}
	seen := map[string]bool{}
	for {
		ref, ok, err := set.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		seen[ref.ID] = true
	}
	if !seen[idA] || !seen[idB] {
		t.Errorf("Set iteration missed an element: seen=%v", seen)
	}
}

func TestParseSchemaRejectsUnknownKind(t *testing.T) {
	if _, err := dirq.ParseSchema("body:unknown"); err == nil {
		t.Error("expected an error for an unknown field kind")
	}
}

func TestEncodeDecodeTableRoundTrips(t *testing.T) {
	fields := map[string]string{"a": "1", "b": "2"}
	encoded := dirq.EncodeTable(fields)

	decoded, err := dirq.DecodeTable(encoded)
	if err != nil {
		t.Fatalf("DecodeTable() error = %v", err)
	}
	if decoded["a"] != "1" || decoded["b"] != "2" {
		t.Errorf("DecodeTable() = %v, want %v", decoded, fields)
	}
}

func TestWithMetricsCollector(t *testing.T) {
	m := dirq.NewMetricsCollector("test")

	q, err := dirq.OpenSimple(t.TempDir(), dirq.WithMetrics(m))
	if err != nil {
		t.Fatalf("OpenSimple() error = %v", err)
	}
	if _, err := q.Add([]byte("x")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	snapshot := m.GetSnapshot()
	if snapshot.AddTotal != 1 {
		t.Errorf("AddTotal = %d, want 1", snapshot.AddTotal)
	}
}
