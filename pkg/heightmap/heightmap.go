// Package heightmap decodes heightmap and colormap images into the immutable
// grids the generator consumes.
//
// Heightmaps are grayscale PNG/JPEG images whose pixel intensity encodes
// per-cell elevation. Multiple heightmap files are treated as horizontally
// concatenated tiles of equal height. HD maps pack a 24-bit elevation into
// the red, green, and blue channels of a colored heightmap.
//
// Grids are built once at load time and never written afterwards, so
// concurrent reads are safe.
package heightmap

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

// Intensity bounds for the two heightmap encodings. Quantization divides by
// these, so they are part of the generator's contract.
const (
	MaxIntensity   = 0xFF     // 8-bit grayscale
	MaxIntensityHD = 0xFFFFFF // 24-bit RGB-packed elevation
)

// Heightmap is a read-only elevation grid.
type Heightmap interface {
	// Size returns the grid dimensions in cells.
	Size() (w, h int)
	// At returns the raw elevation sample at (x, y).
	At(x, y int) uint32
	// MaxElevation returns the largest representable sample, used as the
	// quantization denominator.
	MaxElevation() uint32
}

// ImageHeightmap is a heightmap decoded from one or more image files.
type ImageHeightmap struct {
	w, h int
	max  uint32
	data []uint32
}

// supportedExt reports whether path has a decodable image extension.
func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func decodeFile(path string) (image.Image, error) {
	if !supportedExt(path) {
		return nil, fmt.Errorf("%w: %q", ErrDecode, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrDecode, path, err)
	}
	return img, nil
}

// New decodes the given image files into a single heightmap. Multiple files
// are concatenated left to right and must share the same pixel height.
// When hd is set, elevation is read as R<<16 | G<<8 | B instead of the
// 8-bit gray intensity.
func New(paths []string, hd bool) (*ImageHeightmap, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no heightmap files", ErrDecode)
	}

	imgs := make([]image.Image, 0, len(paths))
	width, height := 0, 0
	for _, p := range paths {
		img, err := decodeFile(p)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if height == 0 {
			height = b.Dy()
		} else if b.Dy() != height {
			return nil, fmt.Errorf("%w: tile %s is %dpx tall, want %dpx",
				ErrDimensionMismatch, p, b.Dy(), height)
		}
		width += b.Dx()
		imgs = append(imgs, img)
	}

	hm := &ImageHeightmap{
		w:    width,
		h:    height,
		max:  MaxIntensity,
		data: make([]uint32, width*height),
	}
	if hd {
		hm.max = MaxIntensityHD
	}

	xoff := 0
	for _, img := range imgs {
		b := img.Bounds()
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := img.At(b.Min.X+x, b.Min.Y+y)
				r, g, bl, _ := c.RGBA()
				var v uint32
				if hd {
					v = (r>>8)<<16 | (g>>8)<<8 | bl>>8
				} else {
					// Rec. 601 luma over the 8-bit channels; plain gray
					// images resolve to the gray value itself.
					v = (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
				}
				hm.data[y*width+xoff+x] = v
			}
		}
		xoff += b.Dx()
	}
	return hm, nil
}

// Size returns the grid dimensions in cells.
func (m *ImageHeightmap) Size() (int, int) { return m.w, m.h }

// At returns the raw elevation sample at (x, y).
func (m *ImageHeightmap) At(x, y int) uint32 { return m.data[y*m.w+x] }

// MaxElevation returns the largest representable sample.
func (m *ImageHeightmap) MaxElevation() uint32 { return m.max }

// Flat is an all-zero heightmap used in image mode, where only a colormap is
// supplied and every cell sits on a single flat layer.
type Flat struct {
	w, h int
}

// NewFlat returns a flat heightmap of the given dimensions.
func NewFlat(w, h int) (*Flat, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: flat heightmap %dx%d", ErrDimensionMismatch, w, h)
	}
	return &Flat{w: w, h: h}, nil
}

// Size returns the grid dimensions in cells.
func (m *Flat) Size() (int, int) { return m.w, m.h }

// At always returns zero.
func (m *Flat) At(x, y int) uint32 { return 0 }

// MaxElevation returns the 8-bit bound; flat grids never exceed zero anyway.
func (m *Flat) MaxElevation() uint32 { return MaxIntensity }
