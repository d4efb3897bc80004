package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// §8 scenario 3: camera at (0,100,0) looking at (2047,50,2047), single tile
// with aabb=(0,0,0)-(2047,16384,2047): selection count > 0;
// min_selected_level >= 0; no entry has all four has_q = false.
func TestLodSelectScenario3(t *testing.T) {
	const extent = 2048
	// Raw height 200 * HeightFactor puts the flat surface at y=50, below the
	// camera and level with the look-at point.
	tile := flatTile(extent, 200, mgl32.Vec3{2047, 16384, 2047}, 0)

	camPos := mgl32.Vec3{0, 100, 0}
	lookAt := mgl32.Vec3{2047, 50, 2047}
	forward := lookAt.Sub(camPos).Normalize()
	frustum := NewFrustum(camPos, forward, mgl32.Vec3{0, 1, 0}, 1, 4000, mgl32.DegToRad(60), 16.0/9.0)

	sel := NewSelectionBuffer(false)
	sel.Reset(camPos)
	if err := sel.DeriveLodRanges(1, 4000, 2.0, 0.7); err != nil {
		t.Fatalf("DeriveLodRanges: %v", err)
	}

	sel.SetTileIndex(tile.Index)
	for _, row := range tile.Quadtree.Roots {
		for _, rootIdx := range row {
			LodSelect(tile.Quadtree, rootIdx, &frustum, sel, false)
		}
	}

	if len(sel.Entries) == 0 {
		t.Fatal("selection count = 0, want > 0")
	}
	if sel.MinSelectedLevel < 0 {
		t.Errorf("MinSelectedLevel = %d, want >= 0", sel.MinSelectedLevel)
	}
	for i, e := range sel.Entries {
		if !e.HasTL && !e.HasTR && !e.HasBL && !e.HasBR {
			t.Errorf("entry %d has all four quadrant flags false", i)
		}
	}
}

func TestLodSelectDeterministicWithoutSorting(t *testing.T) {
	const extent = 512
	tile := flatTile(extent, 4096, mgl32.Vec3{511, 8192, 511}, 0)

	run := func() []SelectedEntry {
		camPos := mgl32.Vec3{100, 300, 100}
		frustum := NewFrustum(camPos, mgl32.Vec3{0, -1, 0.3}.Normalize(), mgl32.Vec3{0, 1, 0}, 1, 2000, mgl32.DegToRad(70), 1.5)
		sel := NewSelectionBuffer(false)
		sel.Reset(camPos)
		if err := sel.DeriveLodRanges(1, 2000, 2.5, 0.7); err != nil {
			t.Fatalf("DeriveLodRanges: %v", err)
		}
		sel.SetTileIndex(tile.Index)
		for _, row := range tile.Quadtree.Roots {
			for _, rootIdx := range row {
				LodSelect(tile.Quadtree, rootIdx, &frustum, sel, false)
			}
		}
		sel.Sort() // no-op: sorting disabled
		return append([]SelectedEntry(nil), sel.Entries...)
	}

	a := run()
	b := run()

	if len(a) != len(b) {
		t.Fatalf("entry count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("entry %d differs across runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
