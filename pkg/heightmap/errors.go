package heightmap

import "errors"

// Sentinel errors for image sampling.
var (
	// ErrDecode is returned for unsupported or malformed image inputs.
	ErrDecode = errors.New("unsupported or malformed image")

	// ErrDimensionMismatch is returned when heightmap tiles have unequal
	// heights or a colormap disagrees with the heightmap dimensions.
	ErrDimensionMismatch = errors.New("image dimension mismatch")
)
