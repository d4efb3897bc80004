package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBuildEmissionPlanGroupsByTileThenLevel(t *testing.T) {
	tileA := flatTile(256, 100, mgl32.Vec3{255, 1000, 255}, 0)
	tileB := flatTile(256, 100, mgl32.Vec3{255, 1000, 255}, 1)
	tiles := []*Tile{tileA, tileB}
	lookup := func(i int) *Tile {
		if i < 0 || i >= len(tiles) {
			return nil
		}
		return tiles[i]
	}

	sel := NewSelectionBuffer(false)
	sel.Reset(mgl32.Vec3{})
	sel.MinSelectedLevel = 0
	sel.MaxSelectedLevel = 1

	rootA := tileA.Quadtree.Roots[0][0]
	rootB := tileB.Quadtree.Roots[0][0]
	sel.SetTileIndex(1)
	sel.Add(rootB, &tileB.Quadtree.Arena[rootB], 1, true, true, true, true)
	sel.SetTileIndex(0)
	sel.Add(rootA, &tileA.Quadtree.Arena[rootA], 0, true, false, true, true)

	plan := BuildEmissionPlan(sel, len(tiles), lookup)

	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	if plan[0].TileIndex != 0 || plan[1].TileIndex != 1 {
		t.Errorf("plan not grouped tile-outer: got tile order %d, %d", plan[0].TileIndex, plan[1].TileIndex)
	}
	if !plan[0].TileChanged || !plan[1].TileChanged {
		t.Error("first record of each tile must have TileChanged = true")
	}
	if plan[0].FullQuad() {
		t.Error("tile 0 record has HasTR = false, must not report FullQuad")
	}
	if !plan[1].FullQuad() {
		t.Error("tile 1 record has all four quadrants, must report FullQuad")
	}
}

func TestBuildEmissionPlanEmptySelectionYieldsNilPlan(t *testing.T) {
	sel := NewSelectionBuffer(false)
	sel.Reset(mgl32.Vec3{})
	plan := BuildEmissionPlan(sel, 0, func(int) *Tile { return nil })
	if len(plan) != 0 {
		t.Errorf("plan length = %d, want 0 for empty selection", len(plan))
	}
}
