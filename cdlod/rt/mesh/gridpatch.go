// Package mesh builds the single reusable grid patch mesh shared by every
// terrain node at every LOD level (§3, §4.9): a D x D unit-square triangle
// grid whose index buffer is partitioned into four contiguous quadrant
// sub-ranges so a node can emit any subset of its four quadrants from one
// bound mesh.
package mesh

import "fmt"

// Vertex is a grid patch mesh vertex. Y is always 0 here; the GPU vertex
// stage displaces it using the heightmap texture and per-node/per-level
// uniforms this spec's core package computes.
type Vertex struct {
	X, Y, Z float32
}

// GridPatchMesh is the D x D grid described by §3/§4.9.
type GridPatchMesh struct {
	Dimension int
	Vertices  []Vertex
	Indices   []uint32

	EndIndexTL int
	EndIndexTR int
	EndIndexBL int
	EndIndexBR int
}

// NewGridPatchMesh constructs the mesh once at startup. D must be a power of
// two in [8, 1024]; vertex positions are (i/D, 0, j/D) for i, j in [0, D].
// Indices are emitted row-major within each quadrant, in the order TL, TR,
// BL, BR; each quad becomes two triangles (v00, v01, v10) and (v10, v01,
// v11), subscripted (column, row) with v00 the quad's lower-x, lower-z
// corner. Total index count is 6*D^2; a mismatch against the precomputed
// count is a fatal invariant violation, not a recoverable error, since it
// can only result from a bug in this constructor.
func NewGridPatchMesh(d int) (*GridPatchMesh, error) {
	if !isPowerOfTwo(d) || d < 8 || d > 1024 {
		return nil, fmt.Errorf("grid patch mesh: dimension must be a power of two in [8, 1024], got %d", d)
	}

	verts := make([]Vertex, 0, (d+1)*(d+1))
	for j := 0; j <= d; j++ {
		for i := 0; i <= d; i++ {
			verts = append(verts, Vertex{
				X: float32(i) / float32(d),
				Y: 0,
				Z: float32(j) / float32(d),
			})
		}
	}

	half := d / 2
	quadIndexCount := 6 * half * half
	indices := make([]uint32, 0, 6*d*d)

	vertexIndex := func(col, row int) uint32 {
		return uint32(row*(d+1) + col)
	}

	emitQuadrant := func(colStart, rowStart int) {
		for r := 0; r < half; r++ {
			for c := 0; c < half; c++ {
				col := colStart + c
				row := rowStart + r
				v00 := vertexIndex(col, row)
				v10 := vertexIndex(col+1, row)
				v01 := vertexIndex(col, row+1)
				v11 := vertexIndex(col+1, row+1)
				indices = append(indices, v00, v01, v10)
				indices = append(indices, v10, v01, v11)
			}
		}
	}

	emitQuadrant(0, 0) // TL
	endTL := len(indices)
	emitQuadrant(half, 0) // TR
	endTR := len(indices)
	emitQuadrant(0, half) // BL
	endBL := len(indices)
	emitQuadrant(half, half) // BR
	endBR := len(indices)

	if len(indices) != 6*d*d {
		return nil, fmt.Errorf("grid patch mesh: invariant violated: expected %d indices, built %d", 6*d*d, len(indices))
	}
	if endTL != quadIndexCount || endTR-endTL != quadIndexCount || endBL-endTR != quadIndexCount || endBR-endBL != quadIndexCount {
		return nil, fmt.Errorf("grid patch mesh: invariant violated: quadrants are not equal-sized (expected %d each)", quadIndexCount)
	}

	return &GridPatchMesh{
		Dimension:  d,
		Vertices:   verts,
		Indices:    indices,
		EndIndexTL: endTL,
		EndIndexTR: endTR,
		EndIndexBL: endBL,
		EndIndexBR: endBR,
	}, nil
}

// QuadrantRange returns the (offset, count) of quadrant q's index
// sub-range, for partial-quadrant draw calls (§4.8 step 6).
func (m *GridPatchMesh) QuadrantRange(q int) (offset, count int) {
	quarter := m.EndIndexTL
	switch q {
	case 0: // TL
		return 0, quarter
	case 1: // TR
		return m.EndIndexTL, quarter
	case 2: // BL
		return m.EndIndexTR, quarter
	case 3: // BR
		return m.EndIndexBL, quarter
	default:
		panic("gridpatch: invalid quadrant index")
	}
}

// FullRange returns the (offset, count) covering all indices.
func (m *GridPatchMesh) FullRange() (offset, count int) {
	return 0, len(m.Indices)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
