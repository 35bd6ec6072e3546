package memory

import (
	"context"
	"testing"

	"github.com/eigenlog/eigenlog/internal/kv"
)

func key(b byte) [16]byte {
	var k [16]byte
	k[15] = b
	return k
}

// keyBytes returns key(b) as a slice, for ScanRange bounds.
func keyBytes(b byte) []byte {
	k := key(b)
	return k[:]
}

func TestSubmitAndScanRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	entries := []kv.Entry{
		{Key: key(3), Value: []byte("c")},
		{Key: key(1), Value: []byte("a")},
		{Key: key(2), Value: []byte("b")},
	}
	if err := s.Submit(ctx, "p1", entries); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var got []string
	err := s.ScanRange(ctx, "p1", keyBytes(1), keyBytes(3), func(_, v []byte) bool {
		got = append(got, string(v))
		return true
	})
	if err != nil {
		t.Fatalf("ScanRange: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSubmitOverwritesExactKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Submit(ctx, "p1", []kv.Entry{{Key: key(1), Value: []byte("old")}})
	s.Submit(ctx, "p1", []kv.Entry{{Key: key(1), Value: []byte("new")}})

	var got string
	s.ScanRange(ctx, "p1", keyBytes(0), keyBytes(255), func(_, v []byte) bool {
		got = string(v)
		return true
	})
	if got != "new" {
		t.Errorf("got %q, want new", got)
	}
}

func TestScanRangeUnknownPartition(t *testing.T) {
	s := New()
	var called bool
	err := s.ScanRange(context.Background(), "missing", keyBytes(0), keyBytes(255), func(_, _ []byte) bool {
		called = true
		return true
	})
	if err != nil {
		t.Fatalf("ScanRange: %v", err)
	}
	if called {
		t.Error("fn should not be called for an unknown partition")
	}
}

func TestScanRangeEarlyStop(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{
		{Key: key(1), Value: []byte("a")},
		{Key: key(2), Value: []byte("b")},
		{Key: key(3), Value: []byte("c")},
	})

	var seen int
	s.ScanRange(ctx, "p1", keyBytes(0), keyBytes(255), func(_, _ []byte) bool {
		seen++
		return seen < 1
	})
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}
}

func TestScanKeys(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{
		{Key: key(1), Value: []byte("a")},
		{Key: key(2), Value: []byte("b")},
	})

	var count int
	s.ScanKeys(ctx, "p1", func(_ []byte) bool {
		count++
		return true
	})
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestPartitions(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{{Key: key(1), Value: []byte("a")}})
	s.Submit(ctx, "p2", []kv.Entry{{Key: key(1), Value: []byte("b")}})

	names, err := s.Partitions(ctx)
	if err != nil {
		t.Fatalf("Partitions: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d partitions, want 2", len(names))
	}
}

func TestCloseReleasesPartitions(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{{Key: key(1), Value: []byte("a")}})

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	names, err := s.Partitions(ctx)
	if err != nil {
		t.Fatalf("Partitions after close: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("got %d partitions after close, want 0", len(names))
	}
}
