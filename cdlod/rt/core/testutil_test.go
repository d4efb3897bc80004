package core

import "github.com/go-gl/mathgl/mgl32"

// flatHeightmap builds a synthetic heightmap with a uniform height, avoiding
// any dependency on PNG decoding in tests that only care about quadtree
// geometry.
func flatHeightmap(extent int, height uint16) *Heightmap {
	heights := make([]uint16, extent*extent)
	for i := range heights {
		heights[i] = height
	}
	return &Heightmap{
		Extent:    extent,
		Heights:   heights,
		MinHeight: height,
		MaxHeight: height,
	}
}

func flatTile(extent int, height uint16, aabbMax mgl32.Vec3, index int) *Tile {
	hm := flatHeightmap(extent, height)
	tile := &Tile{
		ID:        "test-tile",
		Index:     index,
		Heightmap: hm,
		AABB:      AABB{Min: mgl32.Vec3{0, 0, 0}, Max: aabbMax},
	}
	qt, err := NewQuadtree(tile)
	if err != nil {
		panic(err)
	}
	tile.Quadtree = qt
	return tile
}
