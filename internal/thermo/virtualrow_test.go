package thermo

import "testing"

func TestCanMergeVirtualAcceptsContiguousIdenticalRows(t *testing.T) {
	cfg := DefaultCoreConfig()
	if !CanMergeVirtual(sio2Rows(), cfg) {
		t.Fatal("expected the two contiguous SiO2 rows to satisfy the merge preconditions")
	}
}

func TestCanMergeVirtualRejectsDifferentPhases(t *testing.T) {
	cfg := DefaultCoreConfig()
	if CanMergeVirtual(h2oRows(), cfg) {
		t.Fatal("expected solid/liquid/gas rows to fail the same-phase precondition")
	}
}

func TestCanMergeVirtualRejectsGapBeyondTolerance(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.GapToleranceK = 0.1
	if CanMergeVirtual(sio2Rows(), cfg) {
		t.Fatal("expected the 0.5K gap to exceed a 0.1K tolerance")
	}
}

func TestMergeVirtualRowDerivesUnionAndMinReliability(t *testing.T) {
	rows := sio2Rows()
	v := MergeVirtualRow(rows)
	if v.TMin() != 298 || v.TMax() != 847 {
		t.Fatalf("expected merged range [298,847], got [%v,%v]", v.TMin(), v.TMax())
	}
	if v.ReliabilityClass() != 2 {
		t.Fatalf("expected reliability class 2, got %d", v.ReliabilityClass())
	}
	if len(v.SourceIDs()) != 2 {
		t.Fatalf("expected 2 source ids, got %v", v.SourceIDs())
	}
}

func TestVirtualRowSatisfiesRowInterface(t *testing.T) {
	v := MergeVirtualRow(sio2Rows())
	var _ Row = v
	if _, err := H(v, 400); err != nil {
		t.Fatalf("expected a merged VirtualRow to evaluate through the polynomial evaluator: %v", err)
	}
}

func TestVirtualRowCacheGetOrCreateCachesByFingerprint(t *testing.T) {
	cfg := DefaultCoreConfig()
	cache := NewVirtualRowCache(10)
	rows := sio2Rows()

	v1, err := cache.GetOrCreate(rows, cfg)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", cache.Len())
	}

	v2, err := cache.GetOrCreate(rows, cfg)
	if err != nil {
		t.Fatalf("GetOrCreate (cached): %v", err)
	}
	if v1 != v2 {
		t.Fatal("expected the second call to return the identical cached VirtualRow")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected still 1 cached entry after a repeat lookup, got %d", cache.Len())
	}
}

func TestVirtualRowCacheRejectsUnmergeableRows(t *testing.T) {
	cfg := DefaultCoreConfig()
	cache := NewVirtualRowCache(10)
	if _, err := cache.GetOrCreate(h2oRows(), cfg); err == nil {
		t.Fatal("expected an error merging rows across different phases")
	}
}

func TestVirtualRowCacheEvictsOldestBeyondCapacity(t *testing.T) {
	cfg := DefaultCoreConfig()
	cache := NewVirtualRowCache(1)

	if _, err := cache.GetOrCreate(sio2Rows(), cfg); err != nil {
		t.Fatalf("GetOrCreate first: %v", err)
	}

	coeffs := [6]float64{10, 1, 0, 0, 0, 0}
	other := []Row{
		row(50, "TiO2", PhaseSolid, 298, 400, -944, 50, coeffs, 2),
		row(51, "TiO2", PhaseSolid, 400.5, 600, -944, 50, coeffs, 2),
	}
	if _, err := cache.GetOrCreate(other, cfg); err != nil {
		t.Fatalf("GetOrCreate second: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected capacity-1 cache to still hold only 1 entry after eviction, got %d", cache.Len())
	}
}

func TestVirtualRowCacheReset(t *testing.T) {
	cfg := DefaultCoreConfig()
	cache := NewVirtualRowCache(10)
	if _, err := cache.GetOrCreate(sio2Rows(), cfg); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	cache.Reset()
	if cache.Len() != 0 {
		t.Fatalf("expected cache to be empty after Reset, got %d", cache.Len())
	}
}
