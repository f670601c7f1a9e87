package storage

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/blockcull/internal/config"
	"github.com/OCharnyshevich/blockcull/internal/world"
	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s, dir
}

func newWorld() *world.World {
	return world.NewWorld(world.GeneratorSource{Generator: gen.NewFlatGenerator(0)})
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	_, err := New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadConfig(t *testing.T) {
	s, dir := newStorage(t)

	cfg := config.DefaultConfig()
	require.NoError(t, s.LoadConfig(cfg))
	assert.Equal(t, config.DefaultConfig(), cfg, "no file leaves cfg unchanged")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("radius: 6\n"), 0o644))
	require.NoError(t, s.LoadConfig(cfg))
	assert.Equal(t, 6, cfg.Radius)
	assert.Equal(t, 4, cfg.Workers)
}

func TestWorldRoundTrip(t *testing.T) {
	s, dir := newStorage(t)

	w := newWorld()
	require.NoError(t, w.SetBlock(blockpos.MustNew(1, 10, -2), gen.State(1, 0)))
	require.NoError(t, w.SetBlock(blockpos.MustNew(-7, 4, 3), 0))
	require.NoError(t, s.SaveWorld(w))

	_, err := os.Stat(filepath.Join(dir, "world", "overrides.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded := newWorld()
	require.NoError(t, s.LoadWorld(loaded))

	got := map[blockpos.BlockPos]uint16{}
	loaded.ForEachOverride(func(p blockpos.BlockPos, state uint16) { got[p] = state })
	assert.Equal(t, map[blockpos.BlockPos]uint16{
		blockpos.MustNew(1, 10, -2): gen.State(1, 0),
		blockpos.MustNew(-7, 4, 3):  0,
	}, got)
}

func TestLoadWorldMissingFile(t *testing.T) {
	s, _ := newStorage(t)
	require.NoError(t, s.LoadWorld(newWorld()))
}

func TestLoadWorldRejectsOutOfRange(t *testing.T) {
	s, dir := newStorage(t)
	body := `{"overrides": [{"x": 0, "y": 5000, "z": 0, "state": 16}]}`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "world"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world", "overrides.json"), []byte(body), 0o644))

	assert.Error(t, s.LoadWorld(newWorld()))
}

func TestSaveReport(t *testing.T) {
	s, dir := newStorage(t)

	report := map[string]int{"exposed": 12, "occupied": 30}
	require.NoError(t, s.SaveReport(filepath.Join("reports", "run.json"), report))

	data, err := os.ReadFile(filepath.Join(dir, "reports", "run.json"))
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report, got)
}
