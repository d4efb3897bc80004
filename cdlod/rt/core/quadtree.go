package core

// Quadtree is a tile's full node tree: a single contiguous arena, indexed
// top-down, whose roots form a grid of TopNodeCount x TopNodeCount cells of
// side TopNodeSize covering the tile.
type Quadtree struct {
	TopNodeSize  int
	TopNodeCount int
	Arena        []Node
	Roots        [][]NodeIndex // Roots[row][col]
}

// NewQuadtree precounts the total node count (§4.4), allocates the arena
// once, and builds every root subtree. Mismatch between the precounted total
// and the number of nodes actually built is a fatal invariant violation.
func NewQuadtree(tile *Tile) (*Quadtree, error) {
	extent := tile.Heightmap.Extent
	total := precountNodes(extent)

	topNodeSize := LeafNodeSize << (NumberOfLodLevels - 1)
	topNodeCount := (extent-1)/topNodeSize + 1

	arena := make([]Node, total)

	roots := make([][]NodeIndex, topNodeCount)
	var counter int32
	for row := 0; row < topNodeCount; row++ {
		roots[row] = make([]NodeIndex, topNodeCount)
		for col := 0; col < topNodeCount; col++ {
			x := col * topNodeSize
			z := row * topNodeSize
			roots[row][col] = buildNode(tile, x, z, topNodeSize, 0, arena, &counter)
		}
	}

	if int(counter) != total {
		return nil, &InvariantError{What: "quadtree arena node count mismatch"}
	}

	return &Quadtree{
		TopNodeSize:  topNodeSize,
		TopNodeCount: topNodeCount,
		Arena:        arena,
		Roots:        roots,
	}, nil
}

// precountNodes computes total = sum over levels i=0..L-1 of
// ((extent-1)/(LeafNodeSize*2^i) + 1)^2, per §4.4.
func precountNodes(extent int) int {
	total := 0
	for i := 0; i < NumberOfLodLevels; i++ {
		nodeSize := LeafNodeSize << i
		count := (extent-1)/nodeSize + 1
		total += count * count
	}
	return total
}
