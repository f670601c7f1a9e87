// Package culler runs the exposure filter over a square of chunks.
package culler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/blockcull/internal/metrics"
	"github.com/OCharnyshevich/blockcull/internal/world"
)

// Request selects the chunks to cull: every chunk within Radius of the
// center, inclusive, on both axes.
type Request struct {
	CenterX int
	CenterZ int
	Radius  int
}

// Position is a block coordinate as written to reports.
type Position [3]int32

// ChunkReport holds the outcome for one chunk.
type ChunkReport struct {
	X        int        `json:"x"`
	Z        int        `json:"z"`
	Occupied int        `json:"occupied"`
	Exposed  int        `json:"exposed"`
	Interior int        `json:"interior"`
	Blocks   []Position `json:"blocks"`
}

// Report summarises a culling run.
type Report struct {
	CenterX  int           `json:"center_x"`
	CenterZ  int           `json:"center_z"`
	Radius   int           `json:"radius"`
	Chunks   []ChunkReport `json:"chunks"`
	Occupied int           `json:"occupied"`
	Exposed  int           `json:"exposed"`
	Interior int           `json:"interior"`
	Elapsed  string        `json:"elapsed"`
}

// Culler computes exposed blocks chunk by chunk with bounded concurrency.
type Culler struct {
	world   *world.World
	workers int
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New creates a Culler. workers below one are treated as one.
func New(w *world.World, workers int, m *metrics.Metrics, log *slog.Logger) *Culler {
	if workers < 1 {
		workers = 1
	}
	return &Culler{world: w, workers: workers, metrics: m, log: log}
}

// Run culls every chunk selected by req. Chunks appear in the report in
// row-major order (z outer, x inner) regardless of completion order. The
// first chunk error, or cancellation of ctx, stops scheduling and is
// returned.
func (c *Culler) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Radius < 0 {
		return nil, errors.Errorf("negative radius %d", req.Radius)
	}
	start := time.Now()

	side := 2*req.Radius + 1
	results := make([]world.ChunkResult, side*side)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

schedule:
	for i := range results {
		i := i
		cx := req.CenterX - req.Radius + i%side
		cz := req.CenterZ - req.Radius + i/side

		select {
		case <-gctx.Done():
			break schedule
		default:
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.cullChunk(cx, cz)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "culling cancelled")
	}

	report := &Report{
		CenterX: req.CenterX,
		CenterZ: req.CenterZ,
		Radius:  req.Radius,
		Chunks:  make([]ChunkReport, 0, len(results)),
	}
	for _, res := range results {
		cr := ChunkReport{
			X:        res.Pos.X,
			Z:        res.Pos.Z,
			Occupied: res.Occupied,
			Exposed:  len(res.Exposed),
			Interior: res.Interior(),
			Blocks:   make([]Position, 0, len(res.Exposed)),
		}
		for _, p := range res.Exposed {
			cr.Blocks = append(cr.Blocks, Position{p.X(), int32(p.Y()), p.Z()})
		}
		report.Chunks = append(report.Chunks, cr)
		report.Occupied += cr.Occupied
		report.Exposed += cr.Exposed
		report.Interior += cr.Interior
	}
	elapsed := time.Since(start)
	report.Elapsed = elapsed.String()

	c.log.Info("culling done",
		"chunks", len(report.Chunks),
		"occupied", report.Occupied,
		"exposed", report.Exposed,
		"interior", report.Interior,
		"elapsed", elapsed,
	)
	return report, nil
}

func (c *Culler) cullChunk(cx, cz int) (world.ChunkResult, error) {
	c.metrics.InFlight.Inc()
	defer c.metrics.InFlight.Dec()

	start := time.Now()
	res, err := c.world.ExposedInChunk(cx, cz)
	if err != nil {
		c.metrics.ChunkErrors.Inc()
		c.log.Error("cull chunk", "x", cx, "z", cz, "error", err)
		return res, errors.Wrapf(err, "cull chunk (%d,%d)", cx, cz)
	}
	took := time.Since(start)

	c.metrics.ObserveChunk(res.Occupied, len(res.Exposed), took)
	c.log.Debug("culled chunk",
		"x", cx,
		"z", cz,
		"occupied", res.Occupied,
		"exposed", len(res.Exposed),
		"took", took,
	)
	return res, nil
}
