// Package save defines the in-memory save document handed to the encoders.
//
// A Document wraps a finished brick sequence together with the metadata both
// container formats need: the owning identity, the asset name table, and the
// map header fields. Documents are transient: build one, encode it once,
// discard it.
package save

import (
	"time"

	"github.com/google/uuid"
)

// Brick is a single axis-aligned volume in the output geometry.
//
// Position is the minimum corner in world units; Size is the extent along
// each axis. Bricks are created by the generator and never mutated after.
type Brick struct {
	Asset     int // index into the document's asset table
	X, Y, Z   int32
	SizeX     uint32
	SizeY     uint32
	SizeZ     uint32
	Color     Color
	Collision bool
	// Glow is the material emission intensity, 0 for none.
	Glow uint8
}

// Color is an 8-bit-per-channel RGBA sample. When the generator runs with
// linear color enabled the channels hold linearized values; equality over
// Color is therefore always meaningful for merging.
type Color struct {
	R, G, B, A uint8
}

// Owner identifies who the save is attributed to in both output formats.
type Owner struct {
	ID   uuid.UUID
	Name string
}

// DefaultOwnerName is used when no owner is configured.
const DefaultOwnerName = "heightmap2brz"

// Document is the encoder-facing save representation.
type Document struct {
	Map         string
	Description string
	Owner       Owner
	Assets      []string
	Bricks      []Brick
	CreatedAt   time.Time
}

// DocumentOption customizes a new document.
type DocumentOption func(*Document)

// WithOwner sets the save owner.
func WithOwner(id uuid.UUID, name string) DocumentOption {
	return func(d *Document) { d.Owner = Owner{ID: id, Name: name} }
}

// WithMap sets the map name and description header fields.
func WithMap(name, description string) DocumentOption {
	return func(d *Document) {
		d.Map = name
		d.Description = description
	}
}

// NewDocument assembles a document around a finished brick sequence.
// The asset table must contain every asset index referenced by the bricks;
// the encoders reject documents where that does not hold.
func NewDocument(bricks []Brick, assets []string, opts ...DocumentOption) *Document {
	d := &Document{
		Map:         "Heightmap",
		Description: "Generated save",
		Owner:       Owner{ID: uuid.New(), Name: DefaultOwnerName},
		Assets:      assets,
		Bricks:      bricks,
		CreatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
