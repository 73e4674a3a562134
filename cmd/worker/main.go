package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/cashflow-forecast/internal/app"
	"github.com/ignite/cashflow-forecast/internal/config"
	"github.com/ignite/cashflow-forecast/internal/financial"
	"github.com/ignite/cashflow-forecast/internal/forecast"
)

func main() {
	log.Println("Starting cashflow forecast worker...")

	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	app.ConfigureLogger(cfg.Logging)

	// The worker always refreshes periodically.
	if cfg.Snapshot.RefreshIntervalSeconds <= 0 {
		cfg.Snapshot.RefreshIntervalSeconds = 900
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	go a.Refresher.Start(ctx)
	log.Printf("[snapshot.Refresher] started (every %s)", cfg.Snapshot.RefreshInterval())

	if interval := cfg.Storage.ExportInterval(); interval > 0 {
		go exportLoop(ctx, a.Service, cfg, interval)
		log.Printf("[worker.Export] scheduled export every %s", interval)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	a.Refresher.Stop()
	cancel()
	log.Println("Worker stopped")
}

// exportLoop stores a forecast with the configured defaults on every tick.
func exportLoop(ctx context.Context, svc *financial.Service, cfg *config.Config, interval time.Duration) {
	period, err := forecast.ParsePeriod(cfg.Forecast.DefaultPeriod)
	if err != nil {
		log.Printf("[worker.Export] disabled: %v", err)
		return
	}
	q := financial.PredictionQuery{
		ChartQuery: financial.ChartQuery{Period: period},
		Model:      forecast.ParseModelSpec(cfg.Forecast.DefaultModel),
		Horizon:    cfg.Forecast.DefaultHorizon,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			meta, err := svc.Export(ctx, q)
			if err != nil {
				log.Printf("[worker.Export] export failed: %v", err)
				continue
			}
			log.Printf("[worker.Export] exported %s (snapshot %d) to %s", meta.ID, meta.SnapshotVersion, meta.Key)
		}
	}
}
