package core

import "github.com/go-gl/mathgl/mgl32"

// NodeIndex is an arena-relative index into Quadtree.Arena. NoNode marks an
// absent child. Per §9 ("Graph with parent/child pointers inside a
// bump-allocated arena"), children are indices rather than raw pointers so
// arena growth never invalidates existing references — though in practice
// the arena here is sized exactly once up front and never grows.
type NodeIndex int32

const NoNode NodeIndex = -1

// Node is one quadtree cell.
type Node struct {
	X, Z  int
	Size  int
	Level int

	MinHeightRaw uint16
	MaxHeightRaw uint16
	AABB         AABB
	IsLeaf       bool

	Children [4]NodeIndex // TL, TR, BL, BR
}

// Quadrant names a child slot / index-buffer sub-range.
type Quadrant int

const (
	TL Quadrant = iota
	TR
	BL
	BR
)

// buildNode populates arena[*counter] for the node at (x, z, size, level)
// and recurses into present children, per §4.3. It returns the index of the
// node it created.
func buildNode(tile *Tile, x, z, size, level int, arena []Node, counter *int32) NodeIndex {
	idx := NodeIndex(*counter)
	*counter++

	extent := tile.Heightmap.Extent
	minH, maxH := tile.Heightmap.MinMaxArea(x, z, size, size)

	n := Node{
		X: x, Z: z, Size: size, Level: level,
		MinHeightRaw: minH,
		MaxHeightRaw: maxH,
		Children:     [4]NodeIndex{NoNode, NoNode, NoNode, NoNode},
	}
	n.AABB = AABB{
		Min: tile.AABB.Min.Add(mgl32.Vec3{float32(x), float32(minH) * HeightFactor, float32(z)}),
		Max: tile.AABB.Min.Add(mgl32.Vec3{float32(x + size), float32(maxH) * HeightFactor, float32(z + size)}),
	}

	if size == LeafNodeSize {
		n.IsLeaf = true
		if level != NumberOfLodLevels-1 {
			panic(&InvariantError{What: "leaf-size node constructed at non-leaf level"})
		}
	} else {
		half := size / 2
		childLevel := level + 1

		n.Children[TL] = buildNode(tile, x, z, half, childLevel, arena, counter)
		if x+half < extent {
			n.Children[TR] = buildNode(tile, x+half, z, half, childLevel, arena, counter)
		}
		if z+half < extent {
			n.Children[BL] = buildNode(tile, x, z+half, half, childLevel, arena, counter)
		}
		if x+half < extent && z+half < extent {
			n.Children[BR] = buildNode(tile, x+half, z+half, half, childLevel, arena, counter)
		}
	}

	arena[idx] = n
	return idx
}
