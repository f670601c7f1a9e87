package gen

import (
	"github.com/aquilax/go-perlin"
)

const (
	hillsScale     = 1.0 / 96.0
	hillsDetail    = 1.0 / 24.0
	hillsBase      = float64(seaLevel)
	hillsAmplitude = 28.0
	treeChance     = 0.012
)

// HillsGenerator produces rolling terrain from layered Perlin noise:
// bedrock floor, stone body, dirt and grass cap, sand and water below sea
// level, and sparse trees whose leaves are not full cubes.
type HillsGenerator struct {
	terrain *perlin.Perlin
	detail  *perlin.Perlin
	seed    int64
}

// NewHillsGenerator creates a HillsGenerator from a seed.
func NewHillsGenerator(seed int64) *HillsGenerator {
	return &HillsGenerator{
		terrain: perlin.NewPerlin(2, 2, 4, seed),
		detail:  perlin.NewPerlin(2, 2, 2, seed+1),
		seed:    seed,
	}
}

func (g *HillsGenerator) Generate(chunkX, chunkZ int) *ChunkData {
	c := &ChunkData{}

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			bx := chunkX*16 + x
			bz := chunkZ*16 + z
			height := g.HeightAt(bx, bz)

			g.fillColumn(c, x, z, height)

			if height > seaLevel && x > 1 && x < 14 && z > 1 && z < 14 && g.roll(bx, bz) < treeChance {
				placeTree(c, x, height+1, z)
			}
		}
	}
	return c
}

func (g *HillsGenerator) HeightAt(blockX, blockZ int) int {
	base := g.terrain.Noise2D(float64(blockX)*hillsScale, float64(blockZ)*hillsScale)
	detail := g.detail.Noise2D(float64(blockX)*hillsDetail, float64(blockZ)*hillsDetail)

	h := int(hillsBase + base*hillsAmplitude + detail*4)
	if h < 1 {
		h = 1
	}
	if h > ChunkHeight-10 {
		h = ChunkHeight - 10
	}
	return h
}

func (g *HillsGenerator) fillColumn(c *ChunkData, x, z, height int) {
	c.SetBlock(x, 0, z, State(blockBedrock, 0))
	for y := 1; y <= height-4; y++ {
		c.SetBlock(x, y, z, State(blockStone, 0))
	}

	biome := byte(biomePlains)
	switch {
	case height < seaLevel-1:
		biome = biomeOcean
		for y := max(height-3, 1); y <= height; y++ {
			c.SetBlock(x, y, z, State(blockGravel, 0))
		}
		for y := height + 1; y <= seaLevel; y++ {
			c.SetBlock(x, y, z, State(blockWater, 0))
		}
	case height <= seaLevel+1:
		for y := max(height-3, 1); y <= height; y++ {
			c.SetBlock(x, y, z, State(blockSand, 0))
		}
	default:
		if height > seaLevel+20 {
			biome = biomeMountains
		}
		for y := max(height-3, 1); y < height; y++ {
			c.SetBlock(x, y, z, State(blockDirt, 0))
		}
		c.SetBlock(x, height, z, State(blockGrass, 0))
	}
	c.SetBiome(x, z, biome)
}

// placeTree puts a short oak at local (x, y, z). Callers keep x and z at
// least two blocks from the chunk border so the canopy stays in the chunk.
func placeTree(c *ChunkData, x, y, z int) {
	const trunk = 4
	for dy := 0; dy < trunk; dy++ {
		c.SetBlock(x, y+dy, z, State(blockLog, 0))
	}
	top := y + trunk
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			for dy := -1; dy <= 0; dy++ {
				if dx == 0 && dz == 0 && dy < 0 {
					continue
				}
				c.SetBlock(x+dx, top+dy, z+dz, State(blockLeaves, 0))
			}
		}
	}
	c.SetBlock(x, top+1, z, State(blockLeaves, 0))
}

// roll returns a deterministic value in [0, 1) for a column.
func (g *HillsGenerator) roll(bx, bz int) float64 {
	h := uint64(g.seed)
	h ^= uint64(int64(bx)) * 0x9e3779b97f4a7c15
	h ^= uint64(int64(bz)) * 0xc2b2ae3d27d4eb4f
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return float64(h>>11) / float64(1<<53)
}
