package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/config"
	"github.com/Afrawles/onboardtracker/internal/diagnostics"
	"github.com/Afrawles/onboardtracker/internal/onboarding"
	"github.com/Afrawles/onboardtracker/internal/report"
	"github.com/Afrawles/onboardtracker/internal/server"
)

type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Limiter    *rate.Limiter
	Client     *asana.Client
	Aggregator *onboarding.Aggregator
	Exporter   *report.Exporter
}

// FetchResult describes a completed fetch.
type FetchResult struct {
	Records []onboarding.Record
	Stats   map[string]any
	Files   []string
}

func New(cfg *config.Config) (*Application, error) {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with logs written to w.
func NewWithOutput(cfg *config.Config, w io.Writer) (*Application, error) {
	logger := NewLogger(cfg.Log.Level, w)
	slog.SetDefault(logger)

	limiter := asana.NewLimiter(cfg.Asana.RequestsPerSecond)
	client := asana.NewClient(cfg.Asana.Token,
		asana.WithBaseURL(cfg.Asana.BaseURL),
		asana.WithTimeout(cfg.Asana.Timeout),
		asana.WithLimiter(limiter),
	)

	aggregator, err := onboarding.NewAggregator(client, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Limiter:    limiter,
		Client:     client,
		Aggregator: aggregator,
		Exporter:   report.NewExporter(cfg.Output.Directory),
	}, nil
}

// NewLogger returns a JSON logger at the named level; unknown names mean info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Fetch aggregates the current onboarding records and writes them in every
// configured output format. A failed export is logged and skipped.
func (app *Application) Fetch(ctx context.Context) (*FetchResult, error) {
	app.Logger.Info("fetching onboarding records", "section_gid", app.Config.Asana.SectionGID)

	records, err := app.Aggregator.Generate(ctx)
	if err != nil {
		app.Logger.Error("failed to fetch onboarding records", "error", err)
		return nil, err
	}

	result := &FetchResult{
		Records: records,
		Stats:   onboarding.Statistics(records),
	}

	if len(records) == 0 {
		app.Logger.Warn("no onboarding tasks found")
		return result, nil
	}

	app.Logger.Info("records fetched", "count", len(records))

	dir := app.Config.Output.Directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")

	for _, format := range app.Config.Output.Formats {
		var (
			file string
			err  error
		)

		switch strings.ToLower(format) {
		case "json":
			file = filepath.Join(dir, fmt.Sprintf("onboarding_%s.json", timestamp))
			err = app.Exporter.ExportJSON(records, filepath.Base(file))
		case "html":
			file = filepath.Join(dir, fmt.Sprintf("onboarding_%s.html", timestamp))
			err = app.Exporter.ExportHTML(records, result.Stats, filepath.Base(file))
		case "csv":
			file, err = report.NewCSVExporter(dir).Export(records)
		case "xlsx", "excel":
			file, err = report.NewExcelExporter(dir).Export(records)
		default:
			app.Logger.Warn("unknown output format", "format", format)
			continue
		}

		if err != nil {
			app.Logger.Error("failed to export", "format", format, "error", err)
			continue
		}
		app.Logger.Info("records exported", "format", format, "file", file)
		result.Files = append(result.Files, file)
	}

	app.Logger.Info("fetch complete",
		"total", result.Stats["total"],
		"completed", result.Stats["completed"],
	)

	return result, nil
}

// Diagnose runs the connectivity checks with the application's client.
func (app *Application) Diagnose(ctx context.Context, progress func(diagnostics.Step)) (*diagnostics.Report, error) {
	return diagnostics.Run(ctx, app.Client, app.Config.Asana, progress)
}

// Serve runs the HTTP endpoint until ctx is cancelled. Each request reloads
// configuration through load; the limiter is shared across requests.
func (app *Application) Serve(ctx context.Context, addr string, load server.ConfigLoader) error {
	if addr == "" {
		addr = app.Config.Server.Addr
	}
	srv := server.New(load, app.Limiter, app.Config.Server.AllowedOrigin, app.Logger)
	return srv.Run(ctx, addr)
}
