package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/harrisonrobin/gantta/pkg/auth"
	"github.com/harrisonrobin/gantta/pkg/colors"
	"github.com/harrisonrobin/gantta/pkg/config"
	"github.com/harrisonrobin/gantta/pkg/gantt"
	"github.com/harrisonrobin/gantta/pkg/google"
	"github.com/harrisonrobin/gantta/pkg/index"
	"github.com/harrisonrobin/gantta/pkg/model"
	"github.com/harrisonrobin/gantta/pkg/outline"
	"github.com/harrisonrobin/gantta/pkg/sheet"
	"github.com/harrisonrobin/gantta/pkg/storage"
)

func main() {
	// 1. Parse Flags
	input := flag.String("input", "-", "Exported rows: a JSON records file, a .csv file, s3://<name> in the configured bucket, or - for JSON on stdin")
	format := flag.String("format", "", "Input format: json or csv (default: from the file extension)")
	spreadsheetID := flag.String("sheet", "", "Google Sheets spreadsheet ID to read instead of -input")
	readRange := flag.String("range", "", "A1 range to read from the spreadsheet (default: the whole first sheet)")
	project := flag.String("project", "", "Project title; its column holds the outline numbers (overrides config)")
	headerRows := flag.Int("header-rows", -1, "Leading records to skip (overrides config)")
	output := flag.String("output", "", "Where to write the Gantt JSON, - for stdout (overrides config)")
	calendarName := flag.String("calendar", "", "Publish tasks to this Google Calendar (overrides config)")
	upload := flag.Bool("upload", false, "Upload the result to the configured S3 bucket")
	validate := flag.Bool("validate", true, "Check the result against the load-response schema before writing")
	strict := flag.Bool("strict", false, "Fail when a child row comes before its parent row")
	doAuth := flag.Bool("auth", false, "Authenticate with Google and exit")
	saveConfig := flag.Bool("save-config", false, "Persist -project, -header-rows, -output, -calendar and -sheet as defaults")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	logger := configureLogger(*logLevel, *logFormat)
	slog.SetDefault(logger)

	// 2. Resolve configuration (Priority: Flag > Env > Config file > Default)
	cfg, err := config.Load()
	if err != nil {
		fatal("Error loading config", err)
	}
	applyFlags := func(c *config.Config) {
		if *project != "" {
			c.Project = *project
		}
		if *headerRows >= 0 {
			c.HeaderRows = *headerRows
		}
		if *output != "" {
			c.Output = *output
		}
		if *calendarName != "" {
			c.Calendar = *calendarName
		}
		if *spreadsheetID != "" {
			c.Sheets.SpreadsheetID = *spreadsheetID
		}
		if *readRange != "" {
			c.Sheets.Range = *readRange
		}
	}
	applyFlags(cfg)

	if *saveConfig {
		// Saved defaults are the file plus flags; env credentials stay out.
		stored, err := config.LoadStored()
		if err != nil {
			fatal("Error loading config", err)
		}
		applyFlags(stored)
		if err := config.Save(stored); err != nil {
			fatal("Error saving config", err)
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Defaults saved to: %s\n", path)
		return
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		fatal("could not find configuration directory", err)
	}
	authenticator := auth.New(configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 3. Handle Authentication
	if *doAuth {
		if err := authenticator.Reset(); err != nil {
			fatal("could not reset token", err)
		}
		if _, err := authenticator.Client(ctx); err != nil {
			fatal("Authentication failed", err)
		}
		logger.Info("authentication successful", "token", authenticator.TokenPath())
		return
	}

	// 4. Read rows
	var records []sheet.Record
	if cfg.Sheets.SpreadsheetID != "" && *input == "-" {
		records, err = readSheet(ctx, authenticator, cfg.Sheets)
	} else {
		records, err = readRecords(ctx, cfg.Storage, *input, *format)
	}
	if err != nil {
		fatal("Error reading rows", err)
	}
	rows := sheet.Rows(records, cfg.ResolvedColumns(), cfg.HeaderRows)
	logger.Debug("rows read", "records", len(records), "rows", len(rows), "header_rows", cfg.HeaderRows)

	if err := outline.CheckOrder(rows); err != nil {
		if *strict {
			fatal("Rows are out of order", err)
		}
		logger.Warn("row order", "err", err)
	}

	// 5. Convert
	resp, plan := gantt.ConvertPlan(rows)
	logger.Info("converted plan",
		"tasks", len(plan.Tasks),
		"roots", len(plan.Roots),
		"dependencies", len(resp.Dependencies.Rows),
		"skipped_rows", plan.Stats.Skipped,
		"orphaned_tasks", plan.Stats.Orphaned,
		"dropped_references", plan.Stats.References-len(resp.Dependencies.Rows),
	)
	if plan.Stats.Duplicates > 0 {
		logger.Debug("outline numbers reused; dependencies resolve to the last row", "duplicates", plan.Stats.Duplicates)
	}

	if *validate {
		if err := gantt.Validate(resp); err != nil {
			fatal("Converted document is invalid", err)
		}
	}

	data, err := gantt.Marshal(resp)
	if err != nil {
		fatal("Error encoding result", err)
	}

	// 6. Write sinks
	if err := writeOutput(cfg.Output, data); err != nil {
		fatal("Error writing output", err)
	}
	if cfg.Output != "-" {
		logger.Info("JSON data written", "path", cfg.Output)
	}

	if *upload {
		if err := uploadResult(ctx, cfg, data); err != nil {
			fatal("Error uploading result", err)
		}
	}

	if cfg.Calendar != "" {
		if err := publish(ctx, authenticator, cfg, configDir, resp); err != nil {
			fatal("Error publishing to calendar", err)
		}
	}
}

func configureLogger(level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func readRecords(ctx context.Context, sc config.StorageConfig, path, format string) ([]sheet.Record, error) {
	var r io.Reader = os.Stdin
	if name, ok := storage.ObjectName(path); ok {
		data, err := download(ctx, sc, name)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	} else if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if format == "" && strings.EqualFold(filepath.Ext(path), ".csv") {
		format = "csv"
	}
	switch strings.ToLower(format) {
	case "", "json":
		return sheet.DecodeRecords(r)
	case "csv":
		grid, err := sheet.ReadCSV(r)
		if err != nil {
			return nil, err
		}
		return sheet.RecordsFromGrid(grid), nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func download(ctx context.Context, sc config.StorageConfig, name string) ([]byte, error) {
	if !sc.Enabled() {
		return nil, fmt.Errorf("storage endpoint and bucket must be configured to read %s%s", storage.URLScheme, name)
	}
	store, err := storage.NewS3Store(sc)
	if err != nil {
		return nil, err
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	slog.Debug("downloaded rows", "bucket", sc.Bucket, "name", name, "bytes", len(data))
	return data, nil
}

func readSheet(ctx context.Context, a *auth.Authenticator, sc config.SheetsConfig) ([]sheet.Record, error) {
	client, err := a.Client(ctx)
	if err != nil {
		return nil, err
	}
	src, err := google.NewSheetsSource(ctx, client)
	if err != nil {
		return nil, err
	}
	grid, err := src.Grid(ctx, sc.SpreadsheetID, sc.Range)
	if err != nil {
		return nil, err
	}
	return sheet.RecordsFromGrid(grid), nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func uploadResult(ctx context.Context, cfg *config.Config, data []byte) error {
	if !cfg.Storage.Enabled() {
		return fmt.Errorf("storage endpoint and bucket must be configured to upload")
	}
	store, err := storage.NewS3Store(cfg.Storage)
	if err != nil {
		return err
	}
	name := filepath.Base(cfg.Output)
	if cfg.Output == "-" {
		name = "data.json"
	}
	key, err := store.Put(ctx, name, data)
	if err != nil {
		return err
	}
	slog.Info("uploaded result", "bucket", cfg.Storage.Bucket, "key", key)
	return nil
}

func publish(ctx context.Context, a *auth.Authenticator, cfg *config.Config, configDir string, resp *model.LoadResponse) error {
	evtIndex, err := index.NewEventIndex(configDir)
	if err != nil {
		slog.Warn("failed to open event index", "err", err)
		evtIndex = nil
	}
	colorCache, err := colors.NewColorCache(configDir)
	if err != nil {
		slog.Warn("failed to open bucket colors", "err", err)
		colorCache = nil
	}

	client, err := a.Client(ctx)
	if err != nil {
		return err
	}
	cal, err := google.NewCalendarClient(ctx, client, cfg.Calendar, cfg.Project, evtIndex, colorCache)
	if err != nil {
		return err
	}
	stats, err := cal.Publish(ctx, resp)
	if err != nil {
		return err
	}
	slog.Info("published to calendar",
		"calendar", cfg.Calendar,
		"created", stats.Created,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"skipped", stats.Skipped,
	)
	return nil
}
