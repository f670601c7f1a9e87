package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveChunk(t *testing.T) {
	m := New()

	m.ObserveChunk(1280, 512, 3*time.Millisecond)
	m.ObserveChunk(20, 20, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChunksCulled))
	assert.Equal(t, 1300.0, testutil.ToFloat64(m.BlocksOccupied))
	assert.Equal(t, 532.0, testutil.ToFloat64(m.BlocksExposed))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CullDuration))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ChunkErrors.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ChunkErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ChunkErrors))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveChunk(10, 4, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "blockcull_blocks_exposed_total 4")
	assert.Contains(t, string(body), "blockcull_chunk_cull_duration_seconds_count 1")
}
