package gen

// FlatGenerator generates a classic superflat world:
// bedrock at y=0, stone y=1..2, dirt y=3, grass y=4.
type FlatGenerator struct{}

// NewFlatGenerator creates a FlatGenerator.
func NewFlatGenerator(_ int64) *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) Generate(_, _ int) *ChunkData {
	c := &ChunkData{}

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			c.SetBlock(x, 0, z, State(blockBedrock, 0))
			c.SetBlock(x, 1, z, State(blockStone, 0))
			c.SetBlock(x, 2, z, State(blockStone, 0))
			c.SetBlock(x, 3, z, State(blockDirt, 0))
			c.SetBlock(x, 4, z, State(blockGrass, 0))
			c.SetBiome(x, z, biomePlains)
		}
	}
	return c
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return 4 // top solid block is at y=4 (grass)
}
