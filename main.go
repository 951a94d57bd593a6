package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"airbnb-analytics/chart"
	"airbnb-analytics/config"
	"airbnb-analytics/models"
	"airbnb-analytics/services"
	"airbnb-analytics/storage"
	"airbnb-analytics/utils"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	runID := uuid.NewString()
	logger.Info("=== Rental price trend analysis starting (run %s) ===", runID)
	logger.Info("Config — room type: %q | top: %d | store: %s | chart: %v",
		cfg.RoomType, cfg.TopK, cfg.StoreBackend, cfg.ChartEnabled)

	paths := cfg.SnapshotFiles
	if len(paths) == 0 {
		found, err := storage.ListSnapshots(cfg.SnapshotDir, cfg.SnapshotPattern)
		if err != nil {
			return err
		}
		paths = found
		logger.Info("Found %d snapshot files in %s", len(paths), cfg.SnapshotDir)
	}

	reader := storage.NewCSVSnapshotReader()
	seriesSvc := services.NewSeriesService(reader, logger)

	archive, err := openArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
		seriesSvc.WithSink(archive, runID)
	}

	build, err := seriesSvc.Build(ctx, paths, cfg.RoomType)
	if err != nil {
		return err
	}

	trends := services.NewTrendExtractor(logger)
	trend, err := trends.MaxChange(build.Series)
	if err != nil {
		return err
	}
	movers, err := trends.Rank(build.Series, 0)
	if err != nil {
		return err
	}

	if err := writeTrendReport(cfg.ReportCSVPath, movers); err != nil {
		return err
	}
	logger.Info("Trend report (%d rooms) saved to %s", len(movers), cfg.ReportCSVPath)
	if len(movers) > cfg.TopK {
		movers = movers[:cfg.TopK]
	}

	insightPath := cfg.InsightSnapshot
	if insightPath == "" {
		insightPath = build.Snapshots[len(build.Snapshots)-1].Name
	}
	snap, err := reader.Load(insightPath)
	if err != nil {
		return err
	}

	insightSvc := services.NewInsightService(logger)
	report, err := insightSvc.Generate(services.InsightInput{
		Build:                build,
		Trend:                trend,
		TopMovers:            movers,
		RoomType:             cfg.RoomType,
		Snapshot:             snap,
		NeighborhoodRoomType: cfg.NeighborhoodRoomType,
	})
	if err != nil {
		return err
	}
	insightSvc.Print(report)

	if cfg.ChartEnabled {
		if err := renderChart(ctx, cfg, logger, report.ListingHistogram); err != nil {
			return err
		}
	}

	fmt.Printf("  Done. Trends → %s\n\n", cfg.ReportCSVPath)
	return nil
}

func openArchive(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.SnapshotArchive, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		a, err := storage.NewSQLiteArchive(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Archiving snapshot rows to SQLite (%s)", cfg.SQLitePath)
		return a, nil
	case "postgres":
		a, err := storage.NewPostgresArchive(ctx, cfg.DSN(), cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, err
		}
		logger.Info("Archiving snapshot rows to PostgreSQL (table: snapshot_listings)")
		return a, nil
	default:
		return nil, nil
	}
}

func writeTrendReport(path string, records []models.TrendRecord) error {
	w, err := storage.NewTrendCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteTrends(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func renderChart(ctx context.Context, cfg *config.Config, logger *utils.Logger, histogram []int) error {
	if err := os.MkdirAll(filepath.Dir(cfg.ChartHTMLPath), 0755); err != nil {
		return fmt.Errorf("chart: create output dir: %w", err)
	}
	f, err := os.Create(cfg.ChartHTMLPath)
	if err != nil {
		return fmt.Errorf("chart: create %q: %w", cfg.ChartHTMLPath, err)
	}
	if err := chart.WriteHistogramHTML(f, histogram, cfg.ChartMaxListings); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("chart: close %q: %w", cfg.ChartHTMLPath, err)
	}
	logger.Info("[chart] Histogram page saved to %s", cfg.ChartHTMLPath)

	return chart.NewRenderer(cfg.ChromeBin, cfg.MaxRetries, logger).
		Screenshot(ctx, cfg.ChartHTMLPath, cfg.ChartPNGPath)
}
