package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"nexatel-customer-analytics/config"
	"nexatel-customer-analytics/csvcodec"
	"nexatel-customer-analytics/customer"
	"nexatel-customer-analytics/risk"
	"nexatel-customer-analytics/store"
)

func main() {
	inputPath := flag.String("input", "", "Path to a customer CSV to import (default: synthetic demo roster)")
	demoSize := flag.Int("demo", customer.DefaultDemoSize, "Demo roster size when no --input is given")
	configPath := flag.String("config", os.Getenv("NEXATEL_CONFIG"), "Optional YAML config file")
	search := flag.String("search", "", "Case-insensitive filter on customer ID or segment")
	months := flag.Int("months", 0, "Trend window in months (default from config)")
	topN := flag.Int("top", -1, "Top N customers by total charges (default from config)")
	seed := flag.Uint64("seed", 0, "Seed for placeholder and trend randomness; 0 picks a random seed")
	asOf := flag.String("as-of", "", "Report date (YYYY-MM-DD); default today")
	quoted := flag.Bool("quoted", false, "Honor commas inside quoted CSV values on import")
	jsonOut := flag.String("json", "", "Optional JSON report output path")
	export := flag.Bool("export", false, "Write the roster to NexaTel_Export_<date>.csv")
	exportDir := flag.String("export-dir", "", "Directory for --export (default from config)")
	predict := flag.Bool("predict", false, "Score a single churn scenario")
	tenure := flag.Int("tenure", 12, "Tenure in months for --predict")
	monthly := flag.Float64("monthly", 70, "Monthly charges for --predict")
	contract := flag.String("contract", string(customer.MonthToMonth), "Contract for --predict (Month-to-month, One year, Two year)")
	dbEnabled := flag.Bool("db", false, "Archive the dashboard run (requires NEXATEL_DB_URL or DATABASE_URL)")
	dbTag := flag.String("db-tag", "", "Optional label for the archived run")
	progress := flag.Bool("progress", false, "Show a progress bar while archiving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		exitWithError(err)
	}
	if *months > 0 {
		cfg.Report.TrendMonths = *months
	}
	if *topN >= 0 {
		cfg.Report.TopCustomers = *topN
	}
	if *exportDir != "" {
		cfg.Export.Dir = *exportDir
	}
	if *dbTag != "" {
		cfg.Database.Tag = *dbTag
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(err)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		exitWithError(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync()

	asOfDate := time.Now()
	if *asOf != "" {
		parsed, err := parseDate(*asOf)
		if err != nil {
			logger.Fatal("Invalid --as-of date", zap.String("value", *asOf), zap.Error(err))
		}
		asOfDate = parsed
	}
	clock := func() time.Time { return asOfDate }

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(*seed, *seed))

	var (
		roster []customer.Customer
		source string
		diag   *csvcodec.Diagnostics
	)
	if *inputPath != "" {
		opts := []csvcodec.Option{csvcodec.WithClock(clock), csvcodec.WithRand(rng)}
		if *quoted {
			opts = append(opts, csvcodec.WithQuotedFields())
		}
		records, d, err := loadRoster(*inputPath, opts...)
		if err != nil {
			logger.Fatal("Import failed", zap.String("input", *inputPath), zap.Error(err))
		}
		roster, source, diag = records, filepath.Base(*inputPath), &d
		logImport(logger, *inputPath, d)
	} else {
		roster = customer.Generate(*demoSize, asOfDate, rng)
		source = fmt.Sprintf("demo (%d customers)", len(roster))
		logger.Debug("Generated demo roster", zap.Int("customers", len(roster)), zap.Uint64("seed", *seed))
	}

	problems := customer.ValidateAll(roster)
	for idx, problem := range problems {
		logger.Warn("Customer violates record invariants", zap.Int("row", idx+1), zap.Error(problem))
	}

	report := buildReport(roster, reportParams{
		AsOf:        asOfDate,
		Source:      source,
		Search:      *search,
		InvalidRows: len(problems),
		Settings:    cfg.Report,
		Rand:        rng,
		Import:      diag,
	})
	printReport(os.Stdout, report)

	if *predict {
		c, ok := customer.ParseContract(*contract)
		if !ok {
			logger.Fatal("Unknown contract", zap.String("contract", *contract))
		}
		params := risk.Parameters{Tenure: *tenure, MonthlyCharges: *monthly, Contract: c}
		printPrediction(os.Stdout, params, params.Predict())
	}

	if *jsonOut != "" {
		if err := writeJSON(report, *jsonOut); err != nil {
			logger.Fatal("Failed to write JSON report", zap.String("path", *jsonOut), zap.Error(err))
		}
		fmt.Printf("\nJSON report saved to %s\n", *jsonOut)
	}

	if *export {
		path, err := csvcodec.Export(cfg.Export.Dir, roster, clock)
		if err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		if path == "" {
			fmt.Println("\nNothing to export.")
		} else {
			fmt.Printf("Export saved to %s (%s)\n", path, csvcodec.ExportContentType)
		}
	}

	if *dbEnabled {
		if cfg.Database.URL == "" {
			logger.Fatal("Database URL missing; set NEXATEL_DB_URL or DATABASE_URL")
		}
		runID, err := archiveRun(cfg.Database, logger, *progress, store.Run{
			AsOf:      asOfDate,
			Source:    source,
			Tag:       cfg.Database.Tag,
			Stats:     report.Stats,
			Segments:  report.Segments,
			Customers: customer.Filter(roster, *search),
		})
		if err != nil {
			logger.Fatal("Archive failed", zap.Error(err))
		}
		fmt.Printf("\nArchived dashboard run (run_id=%s)\n", runID)
	}
}

// logImport reports the import summary, at warn level when any value had to
// be defaulted or coerced.
func logImport(logger *zap.Logger, input string, d csvcodec.Diagnostics) {
	fields := []zap.Field{
		zap.String("input", input),
		zap.Int("rows", d.Rows),
		zap.Any("defaulted", d.Defaulted),
		zap.Any("coerced", d.Coerced),
	}
	if d.Clean() {
		logger.Info("Imported customers", fields...)
		return
	}
	logger.Warn("Imported customers with filled-in values", fields...)
}

func archiveRun(cfg config.DatabaseConfig, logger *zap.Logger, progress bool, run store.Run) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var opts []store.Option
	if progress {
		opts = append(opts, store.WithProgress())
	}
	s, err := store.Open(ctx, cfg.URL, cfg.Schema, logger, opts...)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.Save(ctx, run)
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
