package gen

import (
	"sort"

	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// Greedy merging: every distinct elevation level is meshed independently.
// For each level (ascending) a boolean occupancy mask of that level's cells
// is swept in row-major order; each uncovered cell grows a rectangle
// maximally rightward, then downward while the full width stays covered,
// always within one color. The widest-then-tallest preference is the fixed
// tie-break rule.
//
// Each rectangle becomes a single one-unit-thick slab at its level. The
// strategy deliberately ignores neighbor-height continuity: a taller slab
// next to a shorter column leaves its side faces open. That is a known
// limitation of the level-by-level meshing, kept as-is.

// greedyMerge runs the greedy strategy. Cancellation is polled per
// elevation level.
func greedyMerge(f *field, t *Token) []placement {
	seen := make(map[int]struct{})
	var levels []int
	for i, lv := range f.level {
		if f.skip[i] {
			continue
		}
		if _, ok := seen[lv]; !ok {
			seen[lv] = struct{}{}
			levels = append(levels, lv)
		}
	}
	sort.Ints(levels)

	var out []placement
	covered := make([]bool, f.w*f.h)
	for n, lv := range levels {
		t.Report(StageGenerating, 0.1+0.9*float64(n)/float64(len(levels)))
		if t.Cancelled() {
			return nil
		}
		out = append(out, meshLevel(f, lv, covered)...)
	}
	if t.Cancelled() {
		return nil
	}
	return out
}

// meshLevel covers the cells at one elevation level with rectangles. The
// covered scratch slice is shared across levels; levels never overlap in
// cells, so no reset is needed.
func meshLevel(f *field, lv int, covered []bool) []placement {
	var out []placement
	inMask := func(x, y int, c save.Color) bool {
		i := f.at(x, y)
		return !f.skip[i] && !covered[i] && f.level[i] == lv && f.color[i] == c
	}

	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			i := f.at(x, y)
			if f.skip[i] || covered[i] || f.level[i] != lv {
				continue
			}
			c := f.color[i]

			// Grow maximally rightward.
			dx := 1
			for x+dx < f.w && inMask(x+dx, y, c) {
				dx++
			}
			// Then downward while the full width remains covered.
			dy := 1
			for y+dy < f.h && rowMatches(f, x, y+dy, dx, c, lv, covered) {
				dy++
			}

			for yy := y; yy < y+dy; yy++ {
				for xx := x; xx < x+dx; xx++ {
					covered[f.at(xx, yy)] = true
				}
			}
			out = append(out, slabPlacement(x, y, dx, dy, lv, c))
		}
	}
	return out
}

func rowMatches(f *field, x, y, dx int, c save.Color, lv int, covered []bool) bool {
	for xx := x; xx < x+dx; xx++ {
		i := f.at(xx, y)
		if f.skip[i] || covered[i] || f.level[i] != lv || f.color[i] != c {
			return false
		}
	}
	return true
}

// slabPlacement builds the one-unit-thick slab whose top sits at the
// level's quantized elevation.
func slabPlacement(x, y, dx, dy, level int, c save.Color) placement {
	top := level
	if top < 1 {
		top = 1
	}
	return placement{x: x, y: y, dx: dx, dy: dy, z0: top - 1, z1: top, color: c}
}
