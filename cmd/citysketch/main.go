package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/config"
	"github.com/citysketch/citysketch/internal/editor"
	"github.com/citysketch/citysketch/internal/journal"
	"github.com/citysketch/citysketch/internal/logger"
	"github.com/citysketch/citysketch/internal/server"
	"github.com/citysketch/citysketch/internal/tilemap"
	"github.com/citysketch/citysketch/internal/wfc"
)

func main() {
	configFile := flag.String("config", "data/citysketch.yaml", "Path to app config YAML file")
	port := flag.Int("port", 0, "Editor server port (overrides config)")
	seed := flag.Int64("seed", 0, "Solver seed (overrides config; 0 = from clock)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.WebSocket.Port = *port
	}
	if *seed != 0 {
		cfg.Solver.Seed = *seed
	}
	if cfg.Solver.Seed == 0 {
		cfg.Solver.Seed = time.Now().UnixNano()
	}

	logConfig, err := logger.LoadConfig(cfg.Paths.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load logging config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cat := catalog.Default()
	if cfg.Paths.Catalog != "" {
		cat, err = catalog.LoadFile(cfg.Paths.Catalog)
		if err != nil {
			logger.Error("failed to load tile catalog", "path", cfg.Paths.Catalog, "error", err.Error())
			os.Exit(1)
		}
	}

	var j *journal.Journal
	if cfg.Paths.Journal != "" {
		j, err = journal.Open(cfg.Paths.Journal)
		if err != nil {
			logger.Error("failed to open edit journal", "path", cfg.Paths.Journal, "error", err.Error())
			os.Exit(1)
		}
		defer j.Close()
	}

	mapConfig := tilemap.Config{
		HorizontalCellsAmount: cfg.Map.Width,
		VerticalCellsAmount:   cfg.Map.Height,
	}
	tm := wfc.SeedTilemap(mapConfig, cat, cat.All())

	opts := []editor.Option{
		editor.WithStepsPerCycle(cfg.Solver.StepsPerCycle),
		editor.WithMaxRestarts(cfg.Solver.MaxRestarts),
	}
	if cfg.Solver.LotInventory > 0 {
		opts = append(opts, editor.WithTileInventory(map[catalog.TileID]int{
			catalog.ResidentialLotID: cfg.Solver.LotInventory,
		}))
	}
	ed := editor.New(tm, cfg.Solver.Seed, opts...)

	logger.Info("citysketch starting",
		"map", fmt.Sprintf("%dx%d", cfg.Map.Width, cfg.Map.Height),
		"seed", cfg.Solver.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.WebSocket, ed, j)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("citysketch stopped")
}
