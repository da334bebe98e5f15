// Package brz serializes a save document into the compact container format.
//
// The layout is fixed and versioned; downstream consumers parse it byte for
// byte, so any change here requires a version bump.
//
// Container layout (all integers little-endian):
//
//	magic      "BRZ"
//	version    u8 (currently 1)
//	owner id   16 bytes (UUID)
//	owner name u8 length + bytes
//	map name   u8 length + bytes
//	asset tbl  u8 count, then per asset: u8 length + name bytes
//	brickCount u32
//	rawSize    u32 (uncompressed brick section size)
//	bricks     zstd-compressed section of brickCount fixed-width records
//
// Brick record (31 bytes):
//
//	asset u8, x/y/z i32, sizeX/Y/Z u32, r/g/b/a u8, flags u8, glow u8
//
// Flag bits: 0 = collision enabled, 1 = glowing.
package brz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// Version is the container layout version written to the header.
const Version = 1

// MaxBricks is the largest brick count the container can hold.
const MaxBricks = 1 << 24

// Flag bits of the brick record.
const (
	FlagCollision = 1 << 0
	FlagGlow      = 1 << 1
)

var magic = [3]byte{'B', 'R', 'Z'}

// ErrEncode is returned when the document violates a serialization
// invariant: too many bricks, an out-of-range asset index, or an oversized
// header string.
var ErrEncode = errors.New("encode error")

// Encode serializes the document into compact container bytes. It is a pure
// transformation: on error no partial output is returned.
func Encode(doc *save.Document) ([]byte, error) {
	if len(doc.Bricks) > MaxBricks {
		return nil, fmt.Errorf("%w: %d bricks exceeds limit %d", ErrEncode, len(doc.Bricks), MaxBricks)
	}
	if len(doc.Assets) == 0 || len(doc.Assets) > 255 {
		return nil, fmt.Errorf("%w: asset table size %d", ErrEncode, len(doc.Assets))
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(Version)
	buf.Write(doc.Owner.ID[:])
	if err := writeString(&buf, doc.Owner.Name); err != nil {
		return nil, err
	}
	if err := writeString(&buf, doc.Map); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(len(doc.Assets)))
	for _, a := range doc.Assets {
		if err := writeString(&buf, a); err != nil {
			return nil, err
		}
	}

	raw, err := brickSection(doc)
	if err != nil {
		return nil, err
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(doc.Bricks)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(raw)))

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer enc.Close()
	buf.Write(enc.EncodeAll(raw, nil))

	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("%w: string %q exceeds 255 bytes", ErrEncode, s)
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

// brickSection builds the uncompressed fixed-width record stream.
func brickSection(doc *save.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(doc.Bricks) * RecordSize)
	for i, b := range doc.Bricks {
		if b.Asset < 0 || b.Asset >= len(doc.Assets) {
			return nil, fmt.Errorf("%w: brick %d references asset %d of %d", ErrEncode, i, b.Asset, len(doc.Assets))
		}
		buf.WriteByte(byte(b.Asset))
		binary.Write(&buf, binary.LittleEndian, b.X)
		binary.Write(&buf, binary.LittleEndian, b.Y)
		binary.Write(&buf, binary.LittleEndian, b.Z)
		binary.Write(&buf, binary.LittleEndian, b.SizeX)
		binary.Write(&buf, binary.LittleEndian, b.SizeY)
		binary.Write(&buf, binary.LittleEndian, b.SizeZ)
		buf.Write([]byte{b.Color.R, b.Color.G, b.Color.B, b.Color.A})
		var flags byte
		if b.Collision {
			flags |= FlagCollision
		}
		if b.Glow > 0 {
			flags |= FlagGlow
		}
		buf.WriteByte(flags)
		buf.WriteByte(b.Glow)
	}
	return buf.Bytes(), nil
}

// RecordSize is the width of one serialized brick record in bytes.
const RecordSize = 1 + 3*4 + 3*4 + 4 + 1 + 1
