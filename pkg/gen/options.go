package gen

import (
	"fmt"

	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// Limits on the user-facing option ranges.
const (
	MinSize  = 1
	MaxSize  = 100
	MinScale = 1
	MaxScale = 100
)

// StudMultiplier converts a stud-based footprint size into world units.
// Micro bricks use world units directly, so the multiplier only applies to
// the non-micro families.
const StudMultiplier = 5

// GenOptions is the immutable configuration controlling generation.
// Construct it, call Validate once, and treat it as read-only after.
type GenOptions struct {
	// Size is the footprint of one grid cell in world units. Callers
	// multiply the user-facing stud size by StudMultiplier for non-micro
	// families before setting this.
	Size int
	// Scale is the vertical unit multiplier: the elevation range maps onto
	// [0, Scale] height units.
	Scale int

	Cull      bool
	NoCollide bool
	LRGB      bool
	Snap      bool
	Glow      bool
	HDMap     bool
	Img       bool
	Micro     bool
	Stud      bool

	Asset save.AssetKind

	// Quadtree and Greedy select the merge strategy; both unset falls back
	// to the no-optimization strategy. Setting both is invalid.
	Quadtree bool
	Greedy   bool
}

// Strategy identifies the merge strategy a GenOptions selects.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyQuadtree
	StrategyGreedy
)

func (s Strategy) String() string {
	switch s {
	case StrategyQuadtree:
		return "quadtree"
	case StrategyGreedy:
		return "greedy"
	default:
		return "none"
	}
}

// Strategy returns the merge strategy the options select.
func (o GenOptions) Strategy() Strategy {
	switch {
	case o.Quadtree:
		return StrategyQuadtree
	case o.Greedy:
		return StrategyGreedy
	default:
		return StrategyNone
	}
}

// Validate range-checks the options. The size bound accounts for the stud
// multiplier already being applied.
func (o GenOptions) Validate() error {
	if o.Size < MinSize || o.Size > MaxSize*StudMultiplier {
		return fmt.Errorf("size %d out of range [%d, %d]", o.Size, MinSize, MaxSize*StudMultiplier)
	}
	if o.Scale < MinScale || o.Scale > MaxScale {
		return fmt.Errorf("scale %d out of range [%d, %d]", o.Scale, MinScale, MaxScale)
	}
	if o.Quadtree && o.Greedy {
		return fmt.Errorf("quadtree and greedy are mutually exclusive")
	}
	if _, err := o.Asset.AssetName(); err != nil {
		return err
	}
	return nil
}

// verticalUnit is the brick height in world units per elevation step:
// plate height for the stud-based families, a single unit for micro bricks.
func (o GenOptions) verticalUnit() int {
	if o.Micro {
		return 1
	}
	return 2
}
