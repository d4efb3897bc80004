package core

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// TextureHandle is an opaque, non-owning reference to a GPU texture created
// from a Heightmap's raster. The core package never creates or destroys GPU
// resources itself (§9: "the core must not import window or input
// concepts") — cdlod/rt/gpu sets this field after uploading the raster.
type TextureHandle uint64

// Heightmap owns a square, power-of-two, 16-bit single-channel raster and
// (once uploaded) the handle of the GPU texture that mirrors it. The texture
// holds the raw 16-bit values (cdlod/rt/gpu uploads it as R16Uint); it is
// not normalized to 0..1.
type Heightmap struct {
	Extent    int
	Heights   []uint16
	MinHeight uint16
	MaxHeight uint16
	Texture   TextureHandle
}

// LoadHeightmap reads a 16-bit single-channel PNG raster from path. Image
// decoding is delegated to the standard library per §1 ("image decoding (PNG
// load) ... out of scope"); this function's own job is validating the
// decoded shape and computing extrema, which are squarely in-scope (§4.1).
func LoadHeightmap(path string) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &AssetError{Kind: AssetMissing, Path: path, Err: err}
		}
		return nil, &AssetError{Kind: AssetMalformedParse, Path: path, Err: err}
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, &AssetError{Kind: AssetMalformedParse, Path: path, Err: err}
	}

	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, &AssetError{Kind: AssetMalformedChannels, Path: path, Err: fmt.Errorf("expected single-channel 16-bit grayscale, got %T", img)}
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w != h {
		return nil, &AssetError{Kind: AssetMalformedSize, Path: path, Err: fmt.Errorf("raster is %dx%d, must be square", w, h)}
	}
	if !isPowerOfTwo(w) || w < 2*LeafNodeSize || w > 16384 {
		return nil, &AssetError{Kind: AssetMalformedSize, Path: path, Err: fmt.Errorf("extent %d must be a power of two in [%d, 16384]", w, 2*LeafNodeSize)}
	}

	heights := make([]uint16, w*w)
	var lo, hi uint16 = 0xFFFF, 0
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			v := gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
			heights[y*w+x] = v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	return &Heightmap{
		Extent:    w,
		Heights:   heights,
		MinHeight: lo,
		MaxHeight: hi,
	}, nil
}

// HeightAt is an unchecked lookup; callers are responsible for keeping x, z
// within [0, Extent).
func (h *Heightmap) HeightAt(x, z int) uint16 {
	return h.Heights[z*h.Extent+x]
}

// MinMaxArea returns the (min, max) raw height over the inclusive rectangle
// [x, x+w] x [z, z+h], clamped to the raster extent. Used only during
// quadtree construction (§4.1).
func (hm *Heightmap) MinMaxArea(x, z, w, h int) (uint16, uint16) {
	x1 := x + w
	z1 := z + h
	if x1 >= hm.Extent {
		x1 = hm.Extent - 1
	}
	if z1 >= hm.Extent {
		z1 = hm.Extent - 1
	}

	var lo, hi uint16 = 0xFFFF, 0
	for zz := z; zz <= z1; zz++ {
		row := zz * hm.Extent
		for xx := x; xx <= x1; xx++ {
			v := hm.Heights[row+xx]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
