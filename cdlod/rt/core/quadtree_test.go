package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// 4096x4096 heightmap, LEAF_NODE_SIZE=32, L=5: top_node_size=512,
// top_node_count=8, total nodes = 8^2+16^2+32^2+64^2+128^2 = 21824 (§8
// scenario 2). This package's compile-time constants already match the
// scenario (LeafNodeSize=32, NumberOfLodLevels=5).
func TestQuadtreeScenario2NodeCount(t *testing.T) {
	const extent = 4096

	total := precountNodes(extent)
	if total != 21824 {
		t.Fatalf("precountNodes(%d) = %d, want 21824", extent, total)
	}

	tile := flatTile(extent, 32768, mgl32.Vec3{2047, 16384, 2047}, 0)

	if tile.Quadtree.TopNodeSize != 512 {
		t.Errorf("TopNodeSize = %d, want 512", tile.Quadtree.TopNodeSize)
	}
	if tile.Quadtree.TopNodeCount != 8 {
		t.Errorf("TopNodeCount = %d, want 8", tile.Quadtree.TopNodeCount)
	}
	if len(tile.Quadtree.Arena) != 21824 {
		t.Errorf("arena size = %d, want 21824", len(tile.Quadtree.Arena))
	}
}

func TestQuadtreeChildFootprintsCoverParentWithoutOverlap(t *testing.T) {
	const extent = 256 // smaller tree for an exhaustive footprint check
	tile := flatTile(extent, 1000, mgl32.Vec3{255, 1000, 255}, 0)

	var walk func(idx NodeIndex)
	walk = func(idx NodeIndex) {
		n := &tile.Quadtree.Arena[idx]
		if n.IsLeaf {
			return
		}

		covered := map[[2]int]bool{}
		half := n.Size / 2
		for q, childIdx := range n.Children {
			if childIdx == NoNode {
				continue
			}
			c := &tile.Quadtree.Arena[childIdx]
			wantX, wantZ := n.X, n.Z
			switch Quadrant(q) {
			case TR:
				wantX += half
			case BL:
				wantZ += half
			case BR:
				wantX += half
				wantZ += half
			}
			if c.X != wantX || c.Z != wantZ {
				t.Errorf("child %d of node (x=%d,z=%d,size=%d): got origin (%d,%d), want (%d,%d)", q, n.X, n.Z, n.Size, c.X, c.Z, wantX, wantZ)
			}
			for x := c.X; x < c.X+c.Size && x < extent; x++ {
				for z := c.Z; z < c.Z+c.Size && z < extent; z++ {
					key := [2]int{x, z}
					if covered[key] {
						t.Fatalf("footprint cell (%d,%d) double-covered by children of node at (%d,%d,%d)", x, z, n.X, n.Z, n.Size)
					}
					covered[key] = true
				}
			}
			walk(childIdx)
		}
	}

	for _, row := range tile.Quadtree.Roots {
		for _, rootIdx := range row {
			walk(rootIdx)
		}
	}
}
