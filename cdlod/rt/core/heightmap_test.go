package core

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// §8 scenario 5: a 3-channel RGB heightmap is rejected as AssetMalformedChannels.
func TestLoadHeightmapScenario5RejectsRGB(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rgb.png")

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	writePNG(t, path, img)

	_, err := LoadHeightmap(path)
	if err == nil {
		t.Fatal("expected error for RGB heightmap, got nil")
	}
	var ae *AssetError
	if !asAssetError(err, &ae) {
		t.Fatalf("expected *AssetError, got %T: %v", err, err)
	}
	if ae.Kind != AssetMalformedChannels {
		t.Errorf("Kind = %v, want AssetMalformedChannels", ae.Kind)
	}
}

func TestLoadHeightmapRejectsNonSquare(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonsquare.png")
	writePNG(t, path, image.NewGray16(image.Rect(0, 0, 64, 32)))

	_, err := LoadHeightmap(path)
	var ae *AssetError
	if !asAssetError(err, &ae) || ae.Kind != AssetMalformedSize {
		t.Fatalf("expected AssetMalformedSize, got %v", err)
	}
}

func TestLoadHeightmapMissingFile(t *testing.T) {
	_, err := LoadHeightmap("/nonexistent/path/to/heightmap.png")
	var ae *AssetError
	if !asAssetError(err, &ae) || ae.Kind != AssetMissing {
		t.Fatalf("expected AssetMissing, got %v", err)
	}
}

func TestHeightmapMinMaxAreaValues(t *testing.T) {
	hm := flatHeightmap(8, 500)
	hm.Heights[0*8+0] = 100
	hm.Heights[3*8+3] = 900

	lo, hi := hm.MinMaxArea(0, 0, 4, 4)
	if lo != 100 || hi != 900 {
		t.Errorf("MinMaxArea = (%d, %d), want (100, 900)", lo, hi)
	}
}

func asAssetError(err error, out **AssetError) bool {
	ae, ok := err.(*AssetError)
	if ok {
		*out = ae
	}
	return ok
}
