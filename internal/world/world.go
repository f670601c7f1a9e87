package world

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

// ChunkSource supplies the base blocks of a chunk column.
type ChunkSource interface {
	Chunk(cx, cz int) (*gen.ChunkData, error)
}

// GeneratorSource adapts a terrain generator to ChunkSource.
type GeneratorSource struct {
	gen.Generator
}

func (s GeneratorSource) Chunk(cx, cz int) (*gen.ChunkData, error) {
	return s.Generate(cx, cz), nil
}

// World tracks block state with a chunk source for base terrain and
// overrides for edits made on top of it.
type World struct {
	mu     sync.RWMutex
	blocks map[blockpos.BlockPos]uint16
	source ChunkSource
	chunks map[gen.ChunkPos]*gen.ChunkData
}

// NewWorld creates a new World reading base terrain from source.
func NewWorld(source ChunkSource) *World {
	return &World{
		blocks: make(map[blockpos.BlockPos]uint16),
		source: source,
		chunks: make(map[gen.ChunkPos]*gen.ChunkData),
	}
}

// Chunk returns the base ChunkData for the given chunk coordinates,
// loading and caching it if needed.
func (w *World) Chunk(cx, cz int) (*gen.ChunkData, error) {
	pos := gen.ChunkPos{X: cx, Z: cz}

	w.mu.RLock()
	if c, ok := w.chunks[pos]; ok {
		w.mu.RUnlock()
		return c, nil
	}
	w.mu.RUnlock()

	c, err := w.source.Chunk(cx, cz)
	if err != nil {
		return nil, errors.Wrapf(err, "load chunk (%d,%d)", cx, cz)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Double-check after acquiring write lock.
	if existing, ok := w.chunks[pos]; ok {
		return existing, nil
	}
	w.chunks[pos] = c
	return c, nil
}

// PreloadRadius loads every chunk within radius of (cx, cz) and returns how
// many chunks it loaded. It stops early when ctx is cancelled.
func (w *World) PreloadRadius(ctx context.Context, cx, cz, radius int) (int, error) {
	count := 0
	for x := cx - radius; x <= cx+radius; x++ {
		for z := cz - radius; z <= cz+radius; z++ {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			if _, err := w.Chunk(x, z); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Chunks returns a snapshot of the loaded chunks.
func (w *World) Chunks() map[gen.ChunkPos]*gen.ChunkData {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[gen.ChunkPos]*gen.ChunkData, len(w.chunks))
	for pos, c := range w.chunks {
		out[pos] = c
	}
	return out
}

// GetBlock returns the block state at p.
// Checks overrides first, then falls back to the chunk source.
func (w *World) GetBlock(p blockpos.BlockPos) (uint16, error) {
	w.mu.RLock()
	s, ok := w.blocks[p]
	w.mu.RUnlock()
	if ok {
		return s, nil
	}

	y := int(p.Y())
	if y < 0 || y >= gen.ChunkHeight {
		return 0, nil
	}
	x, z := int(p.X()), int(p.Z())
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.GetBlock(x&0xF, y, z&0xF), nil
}

// SetBlock stores a block state override. An override equal to the base
// state is dropped.
func (w *World) SetBlock(p blockpos.BlockPos, state uint16) error {
	base := uint16(0)
	if y := int(p.Y()); y >= 0 && y < gen.ChunkHeight {
		x, z := int(p.X()), int(p.Z())
		c, err := w.Chunk(x>>4, z>>4)
		if err != nil {
			return err
		}
		base = c.GetBlock(x&0xF, y, z&0xF)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if state == base {
		delete(w.blocks, p)
	} else {
		w.blocks[p] = state
	}
	return nil
}

// LoadOverrides replaces all overrides with the given set.
func (w *World) LoadOverrides(overrides map[blockpos.BlockPos]uint16) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.blocks = make(map[blockpos.BlockPos]uint16, len(overrides))
	for p, s := range overrides {
		w.blocks[p] = s
	}
}

// ForEachOverride calls fn for every block override under a read lock.
func (w *World) ForEachOverride(fn func(p blockpos.BlockPos, state uint16)) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for p, s := range w.blocks {
		fn(p, s)
	}
}
