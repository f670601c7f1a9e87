package blockpos

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Domain bounds. Coordinates are symmetric around zero so that every
// accepted value fits its two's complement bit field.
const (
	XMax = 1<<25 - 1
	ZMax = 1<<25 - 1
	YMax = 1<<11 - 1
)

// Packed layout: x in bits 63..38, z in bits 37..12, y in bits 11..0.
const (
	xBits = 26
	zBits = 26
	yBits = 12

	yShift = 0
	zShift = yShift + yBits
	xShift = zShift + zBits

	xMask = 1<<xBits - 1
	zMask = 1<<zBits - 1
	yMask = 1<<yBits - 1
)

// ErrOutOfRange is returned when a coordinate, or the result of moving one,
// falls outside the representable domain.
var ErrOutOfRange = errors.New("block position out of range")

// BlockPos is a block coordinate packed into a single 64-bit word.
// The zero value is the origin. BlockPos is comparable and is intended to be
// used directly as a map key.
type BlockPos struct {
	repr uint64
}

// New validates x, y, z against the domain bounds and packs them.
func New(x int32, y int16, z int32) (BlockPos, error) {
	if x < -XMax || x > XMax || y < -YMax || y > YMax || z < -ZMax || z > ZMax {
		return BlockPos{}, ErrOutOfRange
	}
	return BlockPos{repr: pack(x, y, z)}, nil
}

// MustNew is like New but panics on out-of-range input.
// Intended for constants and tests.
func MustNew(x int32, y int16, z int32) BlockPos {
	p, err := New(x, y, z)
	if err != nil {
		panic(fmt.Sprintf("blockpos.MustNew(%d, %d, %d): %v", x, y, z, err))
	}
	return p
}

// FromInts is New for platform-sized integers. Values are range-checked
// before narrowing, so a large input can never wrap into the domain.
func FromInts(x, y, z int) (BlockPos, error) {
	if x < -XMax || x > XMax || y < -YMax || y > YMax || z < -ZMax || z > ZMax {
		return BlockPos{}, ErrOutOfRange
	}
	return New(int32(x), int16(y), int32(z))
}

// FromUint64 decodes a word previously obtained from Uint64. Words whose
// fields decode outside the domain are rejected.
func FromUint64(w uint64) (BlockPos, error) {
	p := BlockPos{repr: w}
	return New(p.X(), p.Y(), p.Z())
}

func pack(x int32, y int16, z int32) uint64 {
	return uint64(uint32(x)&xMask)<<xShift |
		uint64(uint32(z)&zMask)<<zShift |
		uint64(uint16(y)&yMask)<<yShift
}

// X returns the x coordinate.
func (p BlockPos) X() int32 {
	return int32(int64(p.repr) >> xShift)
}

// Y returns the y coordinate.
func (p BlockPos) Y() int16 {
	return int16(int64(p.repr<<(64-yBits-yShift)) >> (64 - yBits))
}

// Z returns the z coordinate.
func (p BlockPos) Z() int32 {
	return int32(int64(p.repr<<(64-zBits-zShift)) >> (64 - zBits))
}

// XYZ returns all three coordinates.
func (p BlockPos) XYZ() (int32, int16, int32) {
	return p.X(), p.Y(), p.Z()
}

// Uint64 returns the packed word.
func (p BlockPos) Uint64() uint64 {
	return p.repr
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X(), p.Y(), p.Z())
}

// Add translates p by (dx, dy, dz). Overflow of the machine integers is
// reported as ErrOutOfRange before the domain check runs.
func (p BlockPos) Add(dx int32, dy int16, dz int32) (BlockPos, error) {
	x, ok := addInt32(p.X(), dx)
	if !ok {
		return BlockPos{}, ErrOutOfRange
	}
	y, ok := addInt16(p.Y(), dy)
	if !ok {
		return BlockPos{}, ErrOutOfRange
	}
	z, ok := addInt32(p.Z(), dz)
	if !ok {
		return BlockPos{}, ErrOutOfRange
	}
	return New(x, y, z)
}

// Neighbor returns the face-adjacent position in direction d.
func (p BlockPos) Neighbor(d Direction) (BlockPos, error) {
	dx, dy, dz := d.Offset()
	return p.Add(dx, dy, dz)
}

// Up returns the position at y+1.
func (p BlockPos) Up() (BlockPos, error) { return p.Neighbor(Up) }

// Down returns the position at y-1.
func (p BlockPos) Down() (BlockPos, error) { return p.Neighbor(Down) }

// East returns the position at x+1.
func (p BlockPos) East() (BlockPos, error) { return p.Neighbor(East) }

// West returns the position at x-1.
func (p BlockPos) West() (BlockPos, error) { return p.Neighbor(West) }

// South returns the position at z+1.
func (p BlockPos) South() (BlockPos, error) { return p.Neighbor(South) }

// North returns the position at z-1.
func (p BlockPos) North() (BlockPos, error) { return p.Neighbor(North) }

func addInt32(a, b int32) (int32, bool) {
	if (b > 0 && a > math.MaxInt32-b) || (b < 0 && a < math.MinInt32-b) {
		return 0, false
	}
	return a + b, true
}

func addInt16(a, b int16) (int16, bool) {
	if (b > 0 && a > math.MaxInt16-b) || (b < 0 && a < math.MinInt16-b) {
		return 0, false
	}
	return a + b, true
}
