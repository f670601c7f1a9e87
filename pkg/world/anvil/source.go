package anvil

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

// RegionSource serves chunks out of a directory of .mca files. Regions are
// loaded lazily and kept in memory. Chunks that are absent from disk come
// back as empty (all-air) chunks.
type RegionSource struct {
	dir string

	mu      sync.Mutex
	regions map[gen.ChunkPos]*Region // keyed by region coords; nil = no file
}

// NewRegionSource creates a RegionSource reading from dir.
func NewRegionSource(dir string) *RegionSource {
	return &RegionSource{
		dir:     dir,
		regions: make(map[gen.ChunkPos]*Region),
	}
}

// Chunk returns the blocks of chunk (cx, cz).
func (s *RegionSource) Chunk(cx, cz int) (*gen.ChunkData, error) {
	r, err := s.region(RegionCoords(cx, cz))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &gen.ChunkData{}, nil
	}

	raw, err := r.Chunk(cx, cz)
	if errors.Is(err, ErrChunkNotFound) {
		return &gen.ChunkData{}, nil
	}
	if err != nil {
		return nil, err
	}

	gotX, gotZ, chunk, err := DecodeChunk(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "chunk (%d,%d)", cx, cz)
	}
	if gotX != cx || gotZ != cz {
		return nil, errors.Errorf("chunk slot (%d,%d) holds chunk (%d,%d)", cx, cz, gotX, gotZ)
	}
	return chunk, nil
}

func (s *RegionSource) region(rx, rz int) (*Region, error) {
	key := gen.ChunkPos{X: rx, Z: rz}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.regions[key]; ok {
		return r, nil
	}

	r, err := LoadRegion(s.dir, rx, rz)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			s.regions[key] = nil
			return nil, nil
		}
		return nil, err
	}
	s.regions[key] = r
	return r, nil
}

// SaveChunks encodes chunks and writes them into region files under dir,
// one file per region touched.
func SaveChunks(dir string, chunks map[gen.ChunkPos]*gen.ChunkData) error {
	byRegion := make(map[gen.ChunkPos]map[gen.ChunkPos][]byte)
	for pos, c := range chunks {
		raw, err := EncodeChunk(pos.X, pos.Z, c)
		if err != nil {
			return err
		}
		rx, rz := RegionCoords(pos.X, pos.Z)
		key := gen.ChunkPos{X: rx, Z: rz}
		if byRegion[key] == nil {
			byRegion[key] = make(map[gen.ChunkPos][]byte)
		}
		byRegion[key][pos] = raw
	}

	for key, entries := range byRegion {
		if err := SaveRegion(dir, key.X, key.Z, entries); err != nil {
			return errors.Wrapf(err, "save region (%d,%d)", key.X, key.Z)
		}
	}
	return nil
}
