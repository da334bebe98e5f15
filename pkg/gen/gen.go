// Package gen turns sampled heightmap/colormap grids into brick placements.
//
// The generator quantizes elevations once, runs exactly one merge strategy
// (none, quadtree, or greedy) selected by GenOptions, and applies the
// cross-strategy policies (cull, snap, nocollide, glow) uniformly to every
// emitted brick. Progress reporting and cancellation flow through a Token;
// cancellation is cooperative and observed between rows, quadrants, or
// elevation levels depending on the strategy.
package gen

import (
	"fmt"

	"github.com/brickadia-community/heightmap2brz/pkg/heightmap"
	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// StageGenerating is the stage label reported during optimization.
const StageGenerating = "Generating"

// brickGridUnit is the game's placement grid in world units; snap aligns
// positions and sizes to multiples of it.
const brickGridUnit = 5

// field holds the quantized elevation and color samples the strategies
// operate on. Built once per pass, read-only afterwards.
type field struct {
	w, h  int
	level []int
	color []save.Color
	skip  []bool
}

func (f *field) at(x, y int) int { return y*f.w + x }

// placement is a merged region in grid space, before conversion to world
// units. The vertical extent [z0, z1) is in elevation units.
type placement struct {
	x, y, dx, dy int
	z0, z1       int
	color        save.Color
}

// Generate runs the selected merge strategy over the sampled grids and
// returns the finished brick sequence. The colormap must match the
// heightmap dimensions. On cancellation it returns ErrCancelled and no
// bricks.
func Generate(hm heightmap.Heightmap, cm heightmap.ColorSource, opts GenOptions, progress ProgressFunc) ([]save.Brick, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hw, hh := hm.Size()
	cw, ch := cm.Size()
	if hw != cw || hh != ch {
		return nil, fmt.Errorf("%w: heightmap %dx%d vs colormap %dx%d",
			heightmap.ErrDimensionMismatch, hw, hh, cw, ch)
	}

	t := NewToken(progress)
	f := sampleField(hm, cm, opts, t)
	if t.Cancelled() {
		return nil, ErrCancelled
	}

	var placements []placement
	switch opts.Strategy() {
	case StrategyQuadtree:
		placements = quadMerge(f, t)
	case StrategyGreedy:
		placements = greedyMerge(f, t)
	default:
		placements = noMerge(f, t)
	}
	if t.Cancelled() {
		return nil, ErrCancelled
	}
	t.Report(StageGenerating, 1)

	bricks := make([]save.Brick, 0, len(placements))
	for _, p := range placements {
		bricks = append(bricks, opts.emit(p))
	}
	return bricks, nil
}

// quantize maps a raw elevation sample onto [0, scale] height units using
// round half away from zero. The rule is fixed: changing it changes output
// saves byte for byte.
func quantize(raw, max uint32, scale int) int {
	if max == 0 {
		return 0
	}
	return int(float64(raw)/float64(max)*float64(scale) + 0.5)
}

// sampleField quantizes the grids and applies culling. Cancellation is
// polled per row; sampling accounts for the first tenth of the pass.
func sampleField(hm heightmap.Heightmap, cm heightmap.ColorSource, opts GenOptions, t *Token) *field {
	w, h := hm.Size()
	f := &field{
		w:     w,
		h:     h,
		level: make([]int, w*h),
		color: make([]save.Color, w*h),
		skip:  make([]bool, w*h),
	}
	max := hm.MaxElevation()
	for y := 0; y < h; y++ {
		t.Report(StageGenerating, 0.1*float64(y)/float64(h))
		if t.Cancelled() {
			return f
		}
		for x := 0; x < w; x++ {
			i := f.at(x, y)
			f.level[i] = quantize(hm.At(x, y), max, opts.Scale)
			c := cm.At(x, y)
			f.color[i] = save.Color{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	if opts.Cull {
		cullField(f, opts)
	}
	return f
}

// cullField marks removed cells: fully transparent cells always, and in
// non-image mode bottom-layer cells whose in-bounds neighbors are all on
// the bottom layer too, so no visible difference exposes them.
func cullField(f *field, opts GenOptions) {
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			i := f.at(x, y)
			if f.color[i].A == 0 {
				f.skip[i] = true
				continue
			}
			if opts.Img || f.level[i] != 0 {
				continue
			}
			hidden := true
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= f.w || ny >= f.h {
					continue
				}
				if f.level[f.at(nx, ny)] != 0 {
					hidden = false
					break
				}
			}
			f.skip[i] = hidden
		}
	}
}

// noMerge emits one brick per cell. Cancellation is polled per row.
func noMerge(f *field, t *Token) []placement {
	out := make([]placement, 0, f.w*f.h)
	for y := 0; y < f.h; y++ {
		t.Report(StageGenerating, 0.1+0.9*float64(y)/float64(f.h))
		if t.Cancelled() {
			return nil
		}
		for x := 0; x < f.w; x++ {
			i := f.at(x, y)
			if f.skip[i] {
				continue
			}
			out = append(out, columnPlacement(x, y, 1, 1, f.level[i], f.color[i]))
		}
	}
	return out
}

// columnPlacement builds a ground-to-elevation column. Every brick is at
// least one unit tall so flat cells still emit geometry.
func columnPlacement(x, y, dx, dy, level int, c save.Color) placement {
	top := level
	if top < 1 {
		top = 1
	}
	return placement{x: x, y: y, dx: dx, dy: dy, z0: 0, z1: top, color: c}
}

// emit converts a grid-space placement into a world-space brick, applying
// the cross-strategy post-processing policies.
func (o GenOptions) emit(p placement) save.Brick {
	vu := o.verticalUnit()
	x := p.x * o.Size
	y := p.y * o.Size
	z := p.z0 * vu
	sx := p.dx * o.Size
	sy := p.dy * o.Size
	sz := (p.z1 - p.z0) * vu

	if o.Snap {
		x = snapPos(x)
		y = snapPos(y)
		z = snapPos(z)
		sx = snapSize(sx)
		sy = snapSize(sy)
		sz = snapSize(sz)
	}

	var glow uint8
	if o.Glow {
		glow = 1 // lowest non-zero emission intensity
	}
	return save.Brick{
		Asset:     0,
		X:         int32(x),
		Y:         int32(y),
		Z:         int32(z),
		SizeX:     uint32(sx),
		SizeY:     uint32(sy),
		SizeZ:     uint32(sz),
		Color:     p.color,
		Collision: !o.NoCollide,
		Glow:      glow,
	}
}

// snapPos rounds a coordinate to the nearest brick-grid multiple, half away
// from zero.
func snapPos(v int) int {
	if v < 0 {
		return -snapPos(-v)
	}
	return (v + brickGridUnit/2) / brickGridUnit * brickGridUnit
}

// snapSize rounds an extent to the nearest brick-grid multiple with a floor
// of one grid unit.
func snapSize(v int) int {
	s := snapPos(v)
	if s < brickGridUnit {
		s = brickGridUnit
	}
	return s
}
