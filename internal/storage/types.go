package storage

import (
	"github.com/OCharnyshevich/blockcull/internal/world"
	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
)

// WorldData is the serializable set of block overrides.
type WorldData struct {
	Overrides []BlockOverride `json:"overrides"`
}

// BlockOverride is a single block override for JSON serialization.
type BlockOverride struct {
	X     int32  `json:"x"`
	Y     int16  `json:"y"`
	Z     int32  `json:"z"`
	State uint16 `json:"state"`
}

// WorldDataFromWorld collects every override currently held by w.
func WorldDataFromWorld(w *world.World) *WorldData {
	wd := &WorldData{Overrides: []BlockOverride{}}
	w.ForEachOverride(func(p blockpos.BlockPos, state uint16) {
		x, y, z := p.XYZ()
		wd.Overrides = append(wd.Overrides, BlockOverride{X: x, Y: y, Z: z, State: state})
	})
	return wd
}
