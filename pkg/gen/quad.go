package gen

import "github.com/brickadia-community/heightmap2brz/pkg/save"

// Quadtree merging: the grid is recursively subdivided into power-of-two
// aligned square regions. A region becomes a single brick only when every
// cell inside it carries identical elevation and color (exact match, no
// tolerance). Anything mixed subdivides until leaves are single cells.
//
// Recursion depth (and therefore memory) grows with image size on
// non-uniform inputs; that is the strategy's inherent trade-off against
// the prettier, grid-aligned output it produces.

// quadMerge runs the quadtree strategy. Cancellation is polled at each
// quadrant; progress advances with the covered cell area.
func quadMerge(f *field, t *Token) []placement {
	size := 1
	for size < f.w || size < f.h {
		size <<= 1
	}

	total := f.w * f.h
	covered := 0
	var out []placement

	var recurse func(x, y, s int)
	recurse = func(x, y, s int) {
		if t.Cancelled() || x >= f.w || y >= f.h {
			return
		}
		// Clip the region to the grid; edge regions may be rectangular.
		dx, dy := s, s
		if x+dx > f.w {
			dx = f.w - x
		}
		if y+dy > f.h {
			dy = f.h - y
		}

		if ok, lv, c, empty := uniformRegion(f, x, y, dx, dy); ok {
			covered += dx * dy
			if !empty {
				out = append(out, columnPlacement(x, y, dx, dy, lv, c))
			}
			t.Report(StageGenerating, 0.1+0.9*float64(covered)/float64(total))
			return
		}

		half := s / 2
		recurse(x, y, half)
		recurse(x+half, y, half)
		recurse(x, y+half, half)
		recurse(x+half, y+half, half)
	}
	recurse(0, 0, size)

	if t.Cancelled() {
		return nil
	}
	return out
}

// uniformRegion reports whether every cell in the region shares elevation
// and color. Culled cells only match other culled cells; a fully culled
// region is uniform and empty.
func uniformRegion(f *field, x, y, dx, dy int) (ok bool, level int, c save.Color, empty bool) {
	first := f.at(x, y)
	level = f.level[first]
	c = f.color[first]
	empty = f.skip[first]
	for yy := y; yy < y+dy; yy++ {
		for xx := x; xx < x+dx; xx++ {
			i := f.at(xx, yy)
			if f.skip[i] != empty {
				return false, 0, save.Color{}, false
			}
			if !empty && (f.level[i] != level || f.color[i] != c) {
				return false, 0, save.Color{}, false
			}
		}
	}
	return true, level, c, empty
}
