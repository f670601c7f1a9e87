package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/OCharnyshevich/blockcull/internal/config"
	"github.com/OCharnyshevich/blockcull/internal/culler"
	"github.com/OCharnyshevich/blockcull/internal/fetch"
	"github.com/OCharnyshevich/blockcull/internal/metrics"
	"github.com/OCharnyshevich/blockcull/internal/storage"
	"github.com/OCharnyshevich/blockcull/internal/world"
	"github.com/OCharnyshevich/blockcull/pkg/world/anvil"
	"github.com/OCharnyshevich/blockcull/pkg/world/gen"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "", "config file (.yaml, .yml or .json)")

	flag.StringVar(&cfg.Source, "source", cfg.Source, `chunk source: "generator" or "region"`)
	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, `terrain generator: "hills" or "flat"`)
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	flag.IntVar(&cfg.CenterX, "x", cfg.CenterX, "center chunk x")
	flag.IntVar(&cfg.CenterZ, "z", cfg.CenterZ, "center chunk z")
	flag.IntVar(&cfg.Radius, "radius", cfg.Radius, "radius in chunks around the center")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent chunk passes")
	flag.StringVar(&cfg.RegionDir, "region-dir", cfg.RegionDir, "directory of .mca region files")
	flag.StringVar(&cfg.FetchURL, "fetch", cfg.FetchURL, "download the region directory from this go-getter source first")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding config and block overrides")
	flag.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "write the JSON report here")
	flag.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "save loaded chunks as region files here")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics on this address until interrupted")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	bootLog := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := resolveConfig(cfg, explicit, *configPath, bootLog)
	if err != nil {
		bootLog.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		bootLog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, store, log); err != nil {
		log.Error("blockcull failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, store *storage.Storage, log *slog.Logger) error {
	if cfg.FetchURL != "" {
		f, err := fetch.New(log)
		if err != nil {
			return err
		}
		if err := f.Fetch(ctx, cfg.FetchURL, cfg.RegionDir); err != nil {
			return err
		}
	}

	var source world.ChunkSource
	switch cfg.Source {
	case "region":
		source = anvil.NewRegionSource(cfg.RegionDir)
		log.Info("reading chunks from region files", "dir", cfg.RegionDir)
	default:
		var g gen.Generator
		if cfg.Generator == "flat" {
			g = gen.NewFlatGenerator(cfg.Seed)
		} else {
			g = gen.NewHillsGenerator(cfg.Seed)
		}
		source = world.GeneratorSource{Generator: g}
		log.Info("generating chunks", "generator", cfg.Generator, "seed", cfg.Seed)
	}

	w := world.NewWorld(source)
	if store != nil {
		if err := store.LoadWorld(w); err != nil {
			return err
		}
	}

	// The culler reads one ring past the radius for chunk borders.
	n, err := w.PreloadRadius(ctx, cfg.CenterX, cfg.CenterZ, cfg.Radius+1)
	if err != nil {
		return errors.Wrap(err, "preload chunks")
	}
	log.Info("preloaded chunks", "count", n)

	m := metrics.New()
	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "error", err)
			}
		}()
	}

	c := culler.New(w, cfg.Workers, m, log)
	report, err := c.Run(ctx, culler.Request{
		CenterX: cfg.CenterX,
		CenterZ: cfg.CenterZ,
		Radius:  cfg.Radius,
	})
	if err != nil {
		return err
	}

	if cfg.ExportDir != "" {
		chunks := w.Chunks()
		if err := anvil.SaveChunks(cfg.ExportDir, chunks); err != nil {
			return errors.Wrap(err, "export chunks")
		}
		log.Info("exported chunks", "dir", cfg.ExportDir, "count", len(chunks))
	}

	if cfg.ReportPath != "" {
		if store == nil {
			if store, err = storage.New(".", log); err != nil {
				return err
			}
		}
		if err := store.SaveReport(cfg.ReportPath, report); err != nil {
			return err
		}
	}

	if srv == nil {
		return nil
	}

	log.Info("culling finished, serving metrics until interrupted")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
