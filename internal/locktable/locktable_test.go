package locktable

import "testing"

func TestLockIsStableForSameID(t *testing.T) {
	tbl := New[string](16)
	a := tbl.Lock("shard-1")
	b := tbl.Lock("shard-1")
	if a != b {
		t.Fatal("two Lock calls for the same id must return the same mutex")
	}
}

func TestLockDistributesAcrossStripes(t *testing.T) {
	tbl := New[int](4)
	seen := make(map[uint64]bool)
	for i := 0; i < 64; i++ {
		seen[tbl.index(i)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected ids to spread across more than one stripe, got %d distinct stripes", len(seen))
	}
}

func TestNewFallsBackToDefaultStripes(t *testing.T) {
	tbl := New[string](0)
	if tbl.StripeCount() != DefaultStripes {
		t.Fatalf("StripeCount() = %d, want %d", tbl.StripeCount(), DefaultStripes)
	}
}

func TestStringAndScalarKeysBothHash(t *testing.T) {
	strTbl := New[string](1009)
	if strTbl.Lock("a") == nil {
		t.Fatal("expected a non-nil mutex for a string key")
	}

	scalarTbl := New[uint64](1009)
	if scalarTbl.Lock(42) == nil {
		t.Fatal("expected a non-nil mutex for a scalar key")
	}
}
