package cull

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
)

var posOpts = cmp.Options{
	cmp.Comparer(func(a, b blockpos.BlockPos) bool { return a == b }),
	cmpopts.SortSlices(func(a, b blockpos.BlockPos) bool { return a.Uint64() < b.Uint64() }),
	cmpopts.EquateEmpty(),
}

// exposedLinear is the pairwise-scan formulation, kept as an oracle.
func exposedLinear(occupied []blockpos.BlockPos) []blockpos.BlockPos {
	var out []blockpos.BlockPos
	for i, p := range occupied {
		dup := false
		for _, q := range occupied[:i] {
			if q == p {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		present := 0
		for _, d := range blockpos.Directions {
			n, err := p.Neighbor(d)
			if err != nil {
				continue
			}
			for _, q := range occupied {
				if q == n {
					present++
					break
				}
			}
		}
		if present != len(blockpos.Directions) {
			out = append(out, p)
		}
	}
	return out
}

func neighbors(t *testing.T, p blockpos.BlockPos) []blockpos.BlockPos {
	t.Helper()
	out := make([]blockpos.BlockPos, 0, 6)
	for _, d := range blockpos.Directions {
		n, err := p.Neighbor(d)
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

func cube(x0 int32, y0 int16, z0 int32, size int) []blockpos.BlockPos {
	var out []blockpos.BlockPos
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				out = append(out, blockpos.MustNew(x0+int32(x), y0+int16(y), z0+int32(z)))
			}
		}
	}
	return out
}

func TestExposedEmpty(t *testing.T) {
	assert.Empty(t, Exposed(nil))
	assert.Empty(t, Exposed([]blockpos.BlockPos{}))
	assert.Empty(t, NewSet().Exposed())
}

func TestExposedSingle(t *testing.T) {
	p := blockpos.MustNew(42, 35, 96)

	got := Exposed([]blockpos.BlockPos{p})
	assert.Equal(t, []blockpos.BlockPos{p}, got)
}

func TestExposedCross(t *testing.T) {
	center := blockpos.MustNew(21, 34, 59)
	arms := neighbors(t, center)

	occupied := append([]blockpos.BlockPos{center}, arms...)
	got := Exposed(occupied)

	if diff := cmp.Diff(arms, got, posOpts); diff != "" {
		t.Fatalf("Exposed(cross) mismatch (-want +got):\n%s", diff)
	}
}

func TestExposedCube(t *testing.T) {
	occupied := cube(-1, -1, -1, 3)
	require.Len(t, occupied, 27)

	got := Exposed(occupied)
	assert.Len(t, got, 26)
	assert.NotContains(t, got, blockpos.MustNew(0, 0, 0))
}

func TestExposedLargerCube(t *testing.T) {
	occupied := cube(100, 10, -50, 5)

	exposed, interior := Partition(NewSet(occupied...))
	assert.Len(t, exposed, 5*5*5-3*3*3)
	assert.Len(t, interior, 3*3*3)

	for _, p := range interior {
		x, y, z := p.XYZ()
		assert.True(t, x > 100 && x < 104, "interior %v", p)
		assert.True(t, y > 10 && y < 14, "interior %v", p)
		assert.True(t, z > -50 && z < -46, "interior %v", p)
	}
}

func TestExposedDuplicatesCollapse(t *testing.T) {
	p := blockpos.MustNew(1, 2, 3)
	q := blockpos.MustNew(1, 2, 4)

	got := Exposed([]blockpos.BlockPos{p, q, p, p, q})
	assert.Equal(t, []blockpos.BlockPos{p, q}, got)
}

func TestExposedPreservesInputOrder(t *testing.T) {
	occupied := []blockpos.BlockPos{
		blockpos.MustNew(9, 0, 0),
		blockpos.MustNew(-4, 0, 0),
		blockpos.MustNew(3, 0, 0),
	}
	assert.Equal(t, occupied, Exposed(occupied))
}

func TestExposedDoesNotMutateInput(t *testing.T) {
	occupied := cube(0, 0, 0, 3)
	before := append([]blockpos.BlockPos(nil), occupied...)

	_ = Exposed(occupied)
	assert.Equal(t, before, occupied)
}

func TestExposedAtWorldEdge(t *testing.T) {
	// Cube touching the top of the domain. Its centre is still interior.
	top := int16(blockpos.YMax)
	occupied := cube(0, top-2, 0, 3)
	center := blockpos.MustNew(1, top-1, 1)

	got := Exposed(occupied)
	assert.NotContains(t, got, center)
	assert.Len(t, got, 26)

	// The top-layer centre has every in-domain neighbour present; only the
	// out-of-range one above it keeps it exposed.
	topCenter := blockpos.MustNew(1, top, 1)
	assert.True(t, IsExposed(NewSet(occupied...), topCenter))
}

func TestEdgeBlockSurroundedInDomainIsExposed(t *testing.T) {
	// Every in-domain neighbour is present but the block sits on the x edge.
	p := blockpos.MustNew(blockpos.XMax, 0, 0)
	s := NewSet(p)
	for _, d := range blockpos.Directions {
		if n, err := p.Neighbor(d); err == nil {
			s.Add(n)
		}
	}
	assert.Equal(t, 6, s.Len())
	assert.True(t, IsExposed(s, p))
}

func TestExposedMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(300)
		occupied := make([]blockpos.BlockPos, 0, n)
		for i := 0; i < n; i++ {
			// Dense little box so that interior blocks actually occur.
			occupied = append(occupied, blockpos.MustNew(
				int32(rng.Intn(6)),
				int16(rng.Intn(6)),
				int32(rng.Intn(6)),
			))
		}

		got := Exposed(occupied)
		want := exposedLinear(occupied)
		if diff := cmp.Diff(want, got, posOpts); diff != "" {
			t.Fatalf("round %d: Exposed mismatch (-linear +hashed):\n%s", round, diff)
		}
	}
}

func TestExposedSubsetAndInteriorProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewSet()
	for i := 0; i < 2000; i++ {
		s.Add(blockpos.MustNew(int32(rng.Intn(12)), int16(rng.Intn(12)), int32(rng.Intn(12))))
	}

	exposed, interior := Partition(s)
	assert.Equal(t, s.Len(), len(exposed)+len(interior))

	for _, p := range exposed {
		assert.True(t, s.Contains(p), "exposed %v not in input", p)
	}
	for _, p := range interior {
		require.True(t, s.Contains(p))
		for _, d := range blockpos.Directions {
			n, err := p.Neighbor(d)
			require.NoError(t, err)
			assert.True(t, s.Contains(n), "interior %v missing %s neighbour", p, d)
		}
	}

	if diff := cmp.Diff(exposed, s.Exposed(), posOpts); diff != "" {
		t.Fatalf("Set.Exposed disagrees with Partition:\n%s", diff)
	}
}

func TestSetOps(t *testing.T) {
	p := blockpos.MustNew(1, 1, 1)
	s := NewSet()
	assert.False(t, s.Contains(p))

	s.Add(p)
	s.Add(p)
	assert.True(t, s.Contains(p))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []blockpos.BlockPos{p}, s.Slice())

	s.Remove(p)
	assert.Equal(t, 0, s.Len())
}

// execute with: go test -bench=. -benchmem ./pkg/cull
func BenchmarkExposedChunk(b *testing.B) {
	occupied := cube(0, 0, 0, 16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Exposed(occupied)
	}
}
