package anvil

import (
	"github.com/Tnze/go-mc/nbt"
	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

const (
	sectionVolume = 4096
	nibbleBytes   = sectionVolume / 2
)

// chunkNBT mirrors the MC 1.8 chunk layout (root compound → Level).
type chunkNBT struct {
	Level levelNBT `nbt:"Level"`
}

type levelNBT struct {
	XPos             int32        `nbt:"xPos"`
	ZPos             int32        `nbt:"zPos"`
	TerrainPopulated byte         `nbt:"TerrainPopulated"`
	LastUpdate       int64        `nbt:"LastUpdate"`
	Sections         []sectionNBT `nbt:"Sections"`
	Biomes           []byte       `nbt:"Biomes"`
	HeightMap        []int32      `nbt:"HeightMap"`
}

type sectionNBT struct {
	Y          byte   `nbt:"Y"`
	Blocks     []byte `nbt:"Blocks"`
	Add        []byte `nbt:"Add"`
	Data       []byte `nbt:"Data"`
	BlockLight []byte `nbt:"BlockLight"`
	SkyLight   []byte `nbt:"SkyLight"`
}

// EncodeChunk encodes a chunk as MC 1.8 NBT.
func EncodeChunk(cx, cz int, chunk *gen.ChunkData) ([]byte, error) {
	level := levelNBT{
		XPos:             int32(cx),
		ZPos:             int32(cz),
		TerrainPopulated: 1,
		Biomes:           append([]byte(nil), chunk.Biomes[:]...),
		HeightMap:        computeHeightMap(chunk),
	}

	for secY, sec := range chunk.Sections {
		if sec == nil {
			continue
		}

		blocks := make([]byte, sectionVolume)
		data := make([]byte, nibbleBytes)
		var add []byte

		for i, state := range sec.Blocks {
			blockID := state >> 4
			blocks[i] = byte(blockID)
			setNibble(data, i, byte(state&0xF))
			if blockID > 0xFF {
				if add == nil {
					add = make([]byte, nibbleBytes)
				}
				setNibble(add, i, byte(blockID>>8))
			}
		}

		level.Sections = append(level.Sections, sectionNBT{
			Y:          byte(secY),
			Blocks:     blocks,
			Add:        add,
			Data:       data,
			BlockLight: fullLight(),
			SkyLight:   fullLight(),
		})
	}

	out, err := nbt.Marshal(chunkNBT{Level: level})
	if err != nil {
		return nil, errors.Wrapf(err, "encode chunk (%d,%d)", cx, cz)
	}
	return out, nil
}

// DecodeChunk parses MC 1.8 chunk NBT and returns its position and blocks.
func DecodeChunk(raw []byte) (cx, cz int, chunk *gen.ChunkData, err error) {
	var c chunkNBT
	if err := nbt.Unmarshal(raw, &c); err != nil {
		return 0, 0, nil, errors.Wrap(err, "decode chunk nbt")
	}

	chunk = &gen.ChunkData{}
	copy(chunk.Biomes[:], c.Level.Biomes)

	for _, s := range c.Level.Sections {
		if int(s.Y) >= gen.SectionCount {
			return 0, 0, nil, errors.Errorf("chunk (%d,%d): section Y %d out of range", c.Level.XPos, c.Level.ZPos, s.Y)
		}
		if len(s.Blocks) != sectionVolume {
			return 0, 0, nil, errors.Errorf("chunk (%d,%d): section %d has %d blocks", c.Level.XPos, c.Level.ZPos, s.Y, len(s.Blocks))
		}
		hasData := len(s.Data) == nibbleBytes
		hasAdd := len(s.Add) == nibbleBytes

		sec := &gen.Section{}
		for i := range sec.Blocks {
			id := uint16(s.Blocks[i])
			if hasAdd {
				id |= uint16(getNibble(s.Add, i)) << 8
			}
			var meta uint16
			if hasData {
				meta = uint16(getNibble(s.Data, i))
			}
			sec.Blocks[i] = gen.State(id, meta)
		}
		chunk.Sections[s.Y] = sec
	}

	return int(c.Level.XPos), int(c.Level.ZPos), chunk, nil
}

func fullLight() []byte {
	light := make([]byte, nibbleBytes)
	for i := range light {
		light[i] = 0xFF
	}
	return light
}

// setNibble sets a 4-bit value at the given block index in a nibble array.
func setNibble(arr []byte, index int, val byte) {
	byteIdx := index / 2
	if index%2 == 0 {
		arr[byteIdx] = (arr[byteIdx] & 0xF0) | (val & 0x0F)
	} else {
		arr[byteIdx] = (arr[byteIdx] & 0x0F) | ((val & 0x0F) << 4)
	}
}

func getNibble(arr []byte, index int) byte {
	b := arr[index/2]
	if index%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

// computeHeightMap calculates the highest non-air block for each x,z column.
func computeHeightMap(chunk *gen.ChunkData) []int32 {
	hm := make([]int32, 256)

	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			for y := gen.ChunkHeight - 1; y >= 0; y-- {
				if chunk.GetBlock(x, y, z) != 0 {
					hm[z*16+x] = int32(y + 1)
					break
				}
			}
		}
	}
	return hm
}
