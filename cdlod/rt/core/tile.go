package core

import (
	"bufio"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Tile binds a heightmap to a quadtree and a world-space AABB loaded from a
// sidecar file. Index is stable for the lifetime of the owning Terrain and
// is what LOD selection entries carry to identify which tile they belong
// to; ID is a process-unique string handle useful for asset-server lookups
// and logging.
type Tile struct {
	ID        string
	Index     int
	Heightmap *Heightmap
	Quadtree  *Quadtree
	AABB      AABB
}

// LoadTile loads the heightmap at heightmapPath and the AABB sidecar at
// sidecarPath, then builds the tile's quadtree. index is the caller-assigned
// stable tile index (§3 Tile).
func LoadTile(heightmapPath, sidecarPath string, index int) (*Tile, error) {
	hm, err := LoadHeightmap(heightmapPath)
	if err != nil {
		return nil, err
	}

	aabb, err := LoadAABBSidecar(sidecarPath)
	if err != nil {
		return nil, err
	}

	tile := &Tile{
		ID:        uuid.NewString(),
		Index:     index,
		Heightmap: hm,
		AABB:      aabb,
	}

	qt, err := NewQuadtree(tile)
	if err != nil {
		return nil, err
	}
	tile.Quadtree = qt

	return tile, nil
}

// LoadAABBSidecar reads a plain-text sidecar file: six whitespace-separated
// floats "min.x min.y min.z max.x max.y max.z" (§6). Any other shape is an
// AssetMalformedParse error.
func LoadAABBSidecar(path string) (AABB, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AABB{}, &AssetError{Kind: AssetMissing, Path: path, Err: err}
		}
		return AABB{}, &AssetError{Kind: AssetMalformedParse, Path: path, Err: err}
	}
	defer f.Close()

	var v [6]float32
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	n := 0
	for n < 6 && sc.Scan() {
		var f64 float64
		if _, err := fmt.Sscanf(sc.Text(), "%g", &f64); err != nil {
			return AABB{}, &AssetError{Kind: AssetMalformedParse, Path: path, Err: err}
		}
		v[n] = float32(f64)
		n++
	}
	if n != 6 || sc.Scan() {
		return AABB{}, &AssetError{Kind: AssetMalformedParse, Path: path, Err: fmt.Errorf("expected exactly 6 whitespace-separated floats, got %d", n)}
	}

	return AABB{
		Min: mgl32.Vec3{v[0], v[1], v[2]},
		Max: mgl32.Vec3{v[3], v[4], v[5]},
	}, nil
}
