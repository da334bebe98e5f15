package heightmap

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func grayImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestLoadGrayscale(t *testing.T) {
	dir := t.TempDir()
	img := grayImage(3, 2, 0)
	img.SetGray(1, 0, color.Gray{Y: 200})
	path := writePNG(t, filepath.Join(dir, "map.png"), img)

	hm, err := New([]string{path}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, h := hm.Size()
	if w != 3 || h != 2 {
		t.Fatalf("size %dx%d, want 3x2", w, h)
	}
	if got := hm.At(1, 0); got != 200 {
		t.Errorf("At(1,0) = %d, want 200", got)
	}
	if got := hm.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %d, want 0", got)
	}
	if hm.MaxElevation() != MaxIntensity {
		t.Errorf("MaxElevation = %d, want %d", hm.MaxElevation(), MaxIntensity)
	}
}

func TestTileConcatenation(t *testing.T) {
	dir := t.TempDir()
	left := writePNG(t, filepath.Join(dir, "left.png"), grayImage(2, 2, 10))
	right := writePNG(t, filepath.Join(dir, "right.png"), grayImage(3, 2, 99))

	hm, err := New([]string{left, right}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, h := hm.Size()
	if w != 5 || h != 2 {
		t.Fatalf("size %dx%d, want 5x2", w, h)
	}
	if got := hm.At(1, 1); got != 10 {
		t.Errorf("left tile sample = %d, want 10", got)
	}
	if got := hm.At(2, 1); got != 99 {
		t.Errorf("right tile sample = %d, want 99", got)
	}
}

func TestTileHeightMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, filepath.Join(dir, "a.png"), grayImage(2, 2, 0))
	b := writePNG(t, filepath.Join(dir, "b.png"), grayImage(2, 3, 0))

	_, err := New([]string{a, b}, false)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.bmp")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := New([]string{path}, false)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestMissingFile(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope.png")}, false)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("missing file should surface as an IO error, not ErrDecode")
	}
}

func TestNoInputs(t *testing.T) {
	if _, err := New(nil, false); !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestHDMap(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xFF})
	path := writePNG(t, filepath.Join(dir, "hd.png"), img)

	hm, err := New([]string{path}, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := hm.At(0, 0); got != 0x123456 {
		t.Errorf("At(0,0) = %#x, want 0x123456", got)
	}
	if hm.MaxElevation() != MaxIntensityHD {
		t.Errorf("MaxElevation = %d, want %d", hm.MaxElevation(), MaxIntensityHD)
	}
}

func TestFlat(t *testing.T) {
	hm, err := NewFlat(4, 3)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	w, h := hm.Size()
	if w != 4 || h != 3 {
		t.Fatalf("size %dx%d, want 4x3", w, h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if hm.At(x, y) != 0 {
				t.Fatalf("flat heightmap has non-zero sample at (%d,%d)", x, y)
			}
		}
	}
	if _, err := NewFlat(0, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("zero width: got %v, want ErrDimensionMismatch", err)
	}
}
