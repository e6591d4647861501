package thermo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// VirtualRow is a synthetic CatalogRow produced by merging a contiguous,
// non-empty, ordered sequence of source rows that share the same phase,
// have no gap wider than a declared tolerance, and carry numerically
// identical polynomial coefficients within tolerance (§3).
type VirtualRow struct {
	sources     []Row
	tminValue   float64
	tmaxValue   float64
	reliability int
	h298        float64
	s298        float64
	coeffs      [6]float64
	phase       Phase
	formula     string
	displayName string
}

// Ensure VirtualRow satisfies the common Row capability (§9: no
// concrete-type cast crosses a component boundary — everything downstream
// of the merge consumes VirtualRow only through Row).
var _ Row = (*VirtualRow)(nil)

func (v *VirtualRow) ID() int             { return -fingerprintHash(v.SourceIDs()) }
func (v *VirtualRow) Formula() string     { return v.formula }
func (v *VirtualRow) DisplayName() string { return v.displayName }
func (v *VirtualRow) PhaseTag() Phase     { return v.phase }
func (v *VirtualRow) TMin() float64       { return v.tminValue }
func (v *VirtualRow) TMax() float64       { return v.tmaxValue }
func (v *VirtualRow) H298() float64       { return v.h298 }
func (v *VirtualRow) S298() float64       { return v.s298 }
func (v *VirtualRow) Coeffs() [6]float64  { return v.coeffs }
func (v *VirtualRow) ReliabilityClass() int { return v.reliability }
func (v *VirtualRow) IsReferenceRow() bool { return v.h298 != 0 || v.s298 != 0 }

func (v *VirtualRow) TMelt() (float64, bool) { return v.sources[0].TMelt() }
func (v *VirtualRow) TBoil() (float64, bool) { return v.sources[0].TBoil() }

func (v *VirtualRow) SourceIDs() []int {
	var ids []int
	for _, s := range v.sources {
		ids = append(ids, s.SourceIDs()...)
	}
	return ids
}

// Provenance returns the ordered source rows this VirtualRow was merged
// from, for callers that want to explain its construction without a type
// cast (the capability the spec's §3 "provenance" accessor names).
func (v *VirtualRow) Provenance() []Row { return append([]Row(nil), v.sources...) }

// CanMergeVirtual reports whether rows (already assumed sorted by TMin)
// satisfy the virtual-merge preconditions from §3/§4.7 step 3: same phase,
// consecutive gaps <= cfg.GapToleranceK, coefficients pairwise within
// cfg.CoeffsComparisonTolerance, and identical h298/s298.
func CanMergeVirtual(rows []Row, cfg CoreConfig) bool {
	if len(rows) == 0 {
		return false
	}
	first := rows[0]
	for i, r := range rows {
		if r.PhaseTag() != first.PhaseTag() {
			return false
		}
		if !coeffsEqual(r.Coeffs(), first.Coeffs(), cfg.CoeffsComparisonTolerance) {
			return false
		}
		if r.H298() != first.H298() || r.S298() != first.S298() {
			return false
		}
		if i > 0 {
			gap := r.TMin() - rows[i-1].TMax()
			if gap > cfg.GapToleranceK {
				return false
			}
		}
	}
	return true
}

func coeffsEqual(a, b [6]float64, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

// MergeVirtualRow merges rows (already known to satisfy CanMergeVirtual)
// into a single VirtualRow per the §3 derivation rules: tmin/tmax from the
// extremes, reliability_class = min across sources, h298/s298/polynomial
// copied from the first source.
func MergeVirtualRow(rows []Row) *VirtualRow {
	sorted := sortedByTMin(rows)
	first := sorted[0]

	tmin, tmax := sorted[0].TMin(), sorted[0].TMax()
	reliability := sorted[0].ReliabilityClass()
	for _, r := range sorted[1:] {
		if r.TMin() < tmin {
			tmin = r.TMin()
		}
		if r.TMax() > tmax {
			tmax = r.TMax()
		}
		if r.ReliabilityClass() < reliability {
			reliability = r.ReliabilityClass()
		}
	}

	return &VirtualRow{
		sources:     sorted,
		tminValue:   tmin,
		tmaxValue:   tmax,
		reliability: reliability,
		h298:        first.H298(),
		s298:        first.S298(),
		coeffs:      first.Coeffs(),
		phase:       first.PhaseTag(),
		formula:     first.Formula(),
		displayName: first.DisplayName(),
	}
}

// fingerprintHash turns a sorted id set into a small positive int, used to
// derive a VirtualRow's synthetic ID deterministically from its sources.
func fingerprintHash(ids []int) int {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	h := 2166136261
	for _, id := range sorted {
		h = (h ^ id) * 16777619
		if h < 0 {
			h = -h
		}
	}
	if h == 0 {
		h = 1
	}
	return h
}

// virtualRowFingerprint returns the cache key for a source row set: the
// sorted, joined list of ids (§9 "cached by source-id-set fingerprint").
func virtualRowFingerprint(rows []Row) string {
	var ids []int
	for _, r := range rows {
		ids = append(ids, r.SourceIDs()...)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// VirtualRowCache is a bounded, insertion-order-evicting cache of merged
// VirtualRows keyed by source-id-set fingerprint (§4.7/§9: "LRU is not
// required; an insertion-order eviction is adequate").
type VirtualRowCache struct {
	capacity int
	order    []string
	entries  map[string]*VirtualRow
}

// NewVirtualRowCache creates a cache bounded to capacity entries.
func NewVirtualRowCache(capacity int) *VirtualRowCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &VirtualRowCache{capacity: capacity, entries: make(map[string]*VirtualRow)}
}

// GetOrCreate returns the cached VirtualRow for rows' fingerprint, building
// and inserting one if absent. It returns an error if rows do not satisfy
// CanMergeVirtual.
func (c *VirtualRowCache) GetOrCreate(rows []Row, cfg CoreConfig) (*VirtualRow, error) {
	key := virtualRowFingerprint(rows)
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	if !CanMergeVirtual(sortedByTMin(rows), cfg) {
		return nil, fmt.Errorf("%w: rows do not satisfy virtual-merge preconditions", ErrInvalidInput)
	}
	v := MergeVirtualRow(rows)
	c.insert(key, v)
	return v, nil
}

func (c *VirtualRowCache) insert(key string, v *VirtualRow) {
	if _, exists := c.entries[key]; exists {
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = v
}

// Reset clears the cache (§5 "cleared by explicit API").
func (c *VirtualRowCache) Reset() {
	c.order = nil
	c.entries = make(map[string]*VirtualRow)
}

// Len reports the number of cached entries.
func (c *VirtualRowCache) Len() int { return len(c.entries) }
