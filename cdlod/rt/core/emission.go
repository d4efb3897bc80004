package core

import "github.com/go-gl/mathgl/mgl32"

// DrawRecord is one node's worth of per-node uniforms plus the quadrant
// mask the renderer must draw for it. BuildEmissionPlan produces these in
// exactly the order and grouping §4.7/§4.8 specify. terrainEmitSystem pushes
// each record's uniforms through the GPU layer; no draw calls are issued
// from these records in this repository.
type DrawRecord struct {
	TileIndex int
	LodLevel  int

	NodeScale  mgl32.Vec4 // (size.x, 0, size.z, lod_level)
	NodeOffset mgl32.Vec3 // (aabb.min.x, mid-height, aabb.min.z)

	HasTL, HasTR, HasBL, HasBR bool

	// TileChanged/LevelChanged report whether tile-scope or per-level
	// uniforms must be (re-)pushed before this record, per the iteration
	// contract in §4.7: each changes at most once per tile / once per level
	// within a tile.
	TileChanged  bool
	LevelChanged bool
}

// FullQuad reports whether all four quadrants are flagged, letting the
// emitter issue one full-range draw instead of up to four partial ones.
func (r DrawRecord) FullQuad() bool {
	return r.HasTL && r.HasTR && r.HasBL && r.HasBR
}

// BuildEmissionPlan walks the selection buffer in the §4.8 order: for each
// tile (in tile-index order), for each level from MinSelectedLevel to
// MaxSelectedLevel, scan entries in insertion order and emit those matching
// (tile, level). tileLookup resolves a tile index to its Tile (for node
// footprint/AABB data); numTiles bounds the tile-index loop.
func BuildEmissionPlan(sel *SelectionBuffer, numTiles int, tileLookup func(tileIndex int) *Tile) []DrawRecord {
	if len(sel.Entries) == 0 {
		return nil
	}

	plan := make([]DrawRecord, 0, len(sel.Entries))

	for t := 0; t < numTiles; t++ {
		tile := tileLookup(t)
		if tile == nil {
			continue
		}
		tileEmittedAny := false
		lastLevel := -1

		for level := sel.MinSelectedLevel; level <= sel.MaxSelectedLevel; level++ {
			for _, e := range sel.Entries {
				if e.TileIndex != t || e.LodLevel != level {
					continue
				}

				node := &tile.Quadtree.Arena[e.NodeIndex]
				mid := (node.AABB.Min.Y() + node.AABB.Max.Y()) / 2

				plan = append(plan, DrawRecord{
					TileIndex:    t,
					LodLevel:     level,
					NodeScale:    mgl32.Vec4{float32(node.Size), 0, float32(node.Size), float32(level)},
					NodeOffset:   mgl32.Vec3{node.AABB.Min.X(), mid, node.AABB.Min.Z()},
					HasTL:        e.HasTL,
					HasTR:        e.HasTR,
					HasBL:        e.HasBL,
					HasBR:        e.HasBR,
					TileChanged:  !tileEmittedAny,
					LevelChanged: level != lastLevel,
				})
				tileEmittedAny = true
				lastLevel = level
			}
		}
	}

	return plan
}
