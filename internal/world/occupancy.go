package world

import (
	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
	"github.com/OCharnyshevich/blockcull/pkg/cull"
	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

// ChunkResult is the outcome of culling one chunk column.
type ChunkResult struct {
	Pos      gen.ChunkPos
	Occupied int
	Exposed  []blockpos.BlockPos
}

// Interior returns how many occupied blocks were culled.
func (r ChunkResult) Interior() int {
	return r.Occupied - len(r.Exposed)
}

// columnFilter selects local (x, z) columns of a chunk.
type columnFilter func(lx, lz int) bool

func allColumns(int, int) bool { return true }

// Occupied returns the world positions of every full-cube block in chunk
// (cx, cz), overrides applied. Positions outside the coordinate domain are
// skipped as lying beyond the loaded world.
func (w *World) Occupied(cx, cz int) ([]blockpos.BlockPos, error) {
	var out []blockpos.BlockPos
	err := w.collectSolid(cx, cz, allColumns, func(p blockpos.BlockPos) {
		out = append(out, p)
	})
	return out, err
}

// ExposedInChunk culls chunk (cx, cz). The occupied set includes the facing
// border column of each horizontal neighbour chunk so that blocks on the
// chunk seam are judged against real terrain rather than treated as exposed.
func (w *World) ExposedInChunk(cx, cz int) (ChunkResult, error) {
	res := ChunkResult{Pos: gen.ChunkPos{X: cx, Z: cz}}

	own, err := w.Occupied(cx, cz)
	if err != nil {
		return res, err
	}
	res.Occupied = len(own)

	set := cull.NewSet(own...)
	add := set.Add

	borders := []struct {
		dx, dz int
		keep   columnFilter
	}{
		{1, 0, func(lx, _ int) bool { return lx == 0 }},
		{-1, 0, func(lx, _ int) bool { return lx == 15 }},
		{0, 1, func(_, lz int) bool { return lz == 0 }},
		{0, -1, func(_, lz int) bool { return lz == 15 }},
	}
	for _, b := range borders {
		if err := w.collectSolid(cx+b.dx, cz+b.dz, b.keep, add); err != nil {
			return res, err
		}
	}

	res.Exposed = make([]blockpos.BlockPos, 0)
	for _, p := range own {
		if cull.IsExposed(set, p) {
			res.Exposed = append(res.Exposed, p)
		}
	}
	return res, nil
}

// collectSolid reports every full-cube block of chunk (cx, cz) in the
// columns accepted by keep.
func (w *World) collectSolid(cx, cz int, keep columnFilter, emit func(blockpos.BlockPos)) error {
	c, err := w.Chunk(cx, cz)
	if err != nil {
		return err
	}

	originX, originZ := cx*16, cz*16
	at := func(lx, y, lz int) (blockpos.BlockPos, bool) {
		p, err := blockpos.FromInts(originX+lx, y, originZ+lz)
		return p, err == nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	c.ForEachBlock(func(lx, y, lz int, state uint16) {
		if !keep(lx, lz) {
			return
		}
		p, ok := at(lx, y, lz)
		if !ok {
			return
		}
		if o, overridden := w.blocks[p]; overridden {
			state = o
		}
		if gen.IsOpaqueCube(state) {
			emit(p)
		}
	})

	// Overrides placed where the base chunk has air.
	for p, state := range w.blocks {
		x, y, z := int(p.X()), int(p.Y()), int(p.Z())
		if x>>4 != cx || z>>4 != cz || !keep(x&0xF, z&0xF) {
			continue
		}
		if y < 0 || y >= gen.ChunkHeight || c.GetBlock(x&0xF, y, z&0xF) != 0 {
			continue
		}
		if gen.IsOpaqueCube(state) {
			emit(p)
		}
	}
	return nil
}
