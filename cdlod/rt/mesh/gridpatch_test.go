package mesh

import (
	"testing"

	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/core"
)

// §8 grid mesh invariant: the four quadrant sub-ranges are equal in size and
// each equals 6*(D/2)^2, using the actual compile-time grid dimension.
func TestGridPatchMeshQuadrantSizesInvariant(t *testing.T) {
	m, err := NewGridPatchMesh(core.GridmeshDimension)
	if err != nil {
		t.Fatalf("NewGridPatchMesh(%d): %v", core.GridmeshDimension, err)
	}

	half := core.GridmeshDimension / 2
	want := 6 * half * half

	tl := m.EndIndexTL
	tr := m.EndIndexTR - m.EndIndexTL
	bl := m.EndIndexBL - m.EndIndexTR
	br := m.EndIndexBR - m.EndIndexBL

	if tl != want || tr != want || bl != want || br != want {
		t.Errorf("quadrant sizes = (%d, %d, %d, %d), want all equal to %d", tl, tr, bl, br, want)
	}
	if len(m.Indices) != 6*core.GridmeshDimension*core.GridmeshDimension {
		t.Errorf("total indices = %d, want %d", len(m.Indices), 6*core.GridmeshDimension*core.GridmeshDimension)
	}
}

func TestNewGridPatchMeshRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewGridPatchMesh(10); err == nil {
		t.Error("expected error for non-power-of-two dimension, got nil")
	}
	if _, err := NewGridPatchMesh(4); err == nil {
		t.Error("expected error for dimension below 8, got nil")
	}
}

func TestGridPatchMeshQuadrantRangesPartitionIndices(t *testing.T) {
	m, err := NewGridPatchMesh(16)
	if err != nil {
		t.Fatalf("NewGridPatchMesh(16): %v", err)
	}

	seen := make([]bool, len(m.Indices)/3) // triangles, not raw indices
	for q := 0; q < 4; q++ {
		offset, count := m.QuadrantRange(q)
		if offset%3 != 0 || count%3 != 0 {
			t.Fatalf("quadrant %d range (%d,%d) not triangle-aligned", q, offset, count)
		}
		for tri := offset / 3; tri < (offset+count)/3; tri++ {
			if seen[tri] {
				t.Fatalf("triangle %d claimed by more than one quadrant", tri)
			}
			seen[tri] = true
		}
	}
	for i, s := range seen {
		if !s {
			t.Errorf("triangle %d not covered by any quadrant range", i)
		}
	}
}
