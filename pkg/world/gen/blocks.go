package gen

const (
	blockAir       = 0
	blockStone     = 1
	blockGrass     = 2
	blockDirt      = 3
	blockBedrock   = 7
	blockWater     = 9 // stationary water
	blockFlowWater = 8
	blockFlowLava  = 10
	blockLava      = 11 // stationary lava
	blockSand      = 12
	blockGravel    = 13
	blockLog       = 17
	blockLeaves    = 18
	blockGlass     = 20
	blockTallGrass = 31
	blockDeadBush  = 32
	blockFlower    = 37
	blockRose      = 38
	blockTorch     = 50
	blockSnowLayer = 78
	blockCactus    = 81

	biomePlains    = 1
	biomeMountains = 3
	biomeOcean     = 0

	seaLevel = 62
)

// Block state helpers for the 1.8 encoding (id<<4 | meta).
func State(id, meta uint16) uint16 { return id<<4 | meta&0xF }

// BlockID extracts the block ID from a state.
func BlockID(state uint16) uint16 { return state >> 4 }

// notFullCube lists block IDs that never fill their whole cell or let light
// through, so they cannot hide a neighbour's face.
var notFullCube = map[uint16]bool{
	blockAir:       true,
	blockFlowWater: true,
	blockWater:     true,
	blockFlowLava:  true,
	blockLava:      true,
	blockLeaves:    true,
	blockGlass:     true,
	blockTallGrass: true,
	blockDeadBush:  true,
	blockFlower:    true,
	blockRose:      true,
	blockTorch:     true,
	blockSnowLayer: true,
	blockCactus:    true,
}

// IsOpaqueCube reports whether the block state occupies its full cell.
// Only such blocks take part in exposure culling.
func IsOpaqueCube(state uint16) bool {
	return !notFullCube[BlockID(state)]
}
