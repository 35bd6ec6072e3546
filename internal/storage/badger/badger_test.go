package badger

import (
	"context"
	"testing"

	"github.com/eigenlog/eigenlog/internal/kv"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testKey(b byte) [16]byte {
	var k [16]byte
	k[15] = b
	return k
}

// testKeyBytes returns testKey(b) as a slice, for ScanRange bounds.
func testKeyBytes(b byte) []byte {
	k := testKey(b)
	return k[:]
}

func TestSubmitAndScanRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entries := []kv.Entry{
		{Key: testKey(1), Value: []byte("a")},
		{Key: testKey(2), Value: []byte("b")},
	}
	if err := s.Submit(ctx, "p1", entries); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var got []string
	err := s.ScanRange(ctx, "p1", testKeyBytes(0), testKeyBytes(255), func(_, v []byte) bool {
		got = append(got, string(v))
		return true
	})
	if err != nil {
		t.Fatalf("ScanRange: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestScanRangeRespectsBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{
		{Key: testKey(1), Value: []byte("a")},
		{Key: testKey(5), Value: []byte("b")},
		{Key: testKey(9), Value: []byte("c")},
	})

	var got []string
	err := s.ScanRange(ctx, "p1", testKeyBytes(2), testKeyBytes(8), func(_, v []byte) bool {
		got = append(got, string(v))
		return true
	})
	if err != nil {
		t.Fatalf("ScanRange: %v", err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("got %v, want [b]", got)
	}
}

func TestPartitionsTracksMembership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{{Key: testKey(1), Value: []byte("a")}})
	s.Submit(ctx, "p2", []kv.Entry{{Key: testKey(1), Value: []byte("b")}})

	names, err := s.Partitions(ctx)
	if err != nil {
		t.Fatalf("Partitions: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d partitions, want 2: %v", len(names), names)
	}
}

func TestPartitionsDoNotCollide(t *testing.T) {
	// Two partitions whose entries are disjoint must not leak keys across
	// the shared keyspace.
	s := openTestStore(t)
	ctx := context.Background()
	s.Submit(ctx, "p1", []kv.Entry{{Key: testKey(1), Value: []byte("p1-value")}})
	s.Submit(ctx, "p2", []kv.Entry{{Key: testKey(1), Value: []byte("p2-value")}})

	var gotP1 []string
	s.ScanRange(ctx, "p1", testKeyBytes(0), testKeyBytes(255), func(_, v []byte) bool {
		gotP1 = append(gotP1, string(v))
		return true
	})
	if len(gotP1) != 1 || gotP1[0] != "p1-value" {
		t.Errorf("p1 scan = %v, want [p1-value]", gotP1)
	}
}

func TestSync(t *testing.T) {
	s := openTestStore(t)
	if err := s.Sync(context.Background(), "p1"); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
