package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"nexatel-customer-analytics/config"
	"nexatel-customer-analytics/csvcodec"
	"nexatel-customer-analytics/risk"
)

const rosterCSV = "Customer ID,Tenure (Months),Monthly Charges,Total Charges,Contract Type,Usage (GB),Last Activity,CLV,Segment,Churned\n" +
	"C-1,24,80,1920,\"Two year\",50,2026-09-01,3100,\"Champions\",No\n" +
	"C-2,3,95,285,\"Month-to-month\",120,2026-10-01,800,\"At Risk\",Yes\n" +
	"C-3,12,70,840,\"One year\",30,2026-08-15,1500,\"Loyal Customers\",No\n"

func writeTempCSV(t *testing.T, data string) string {
	t.Helper()
	file, err := os.CreateTemp(t.TempDir(), "customers-*.csv")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := file.WriteString(data); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	return file.Name()
}

func testParams(asOf time.Time) reportParams {
	return reportParams{
		AsOf:     asOf,
		Source:   "customers.csv",
		Settings: config.DefaultConfig().Report,
		Rand:     rand.New(rand.NewPCG(7, 7)),
	}
}

func TestBuildReportFromImport(t *testing.T) {
	path := writeTempCSV(t, rosterCSV)
	asOf := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(1, 1))

	roster, diag, err := loadRoster(path, csvcodec.WithClock(func() time.Time { return asOf }), csvcodec.WithRand(rng))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if len(roster) != 3 || diag.Rows != 3 {
		t.Fatalf("expected 3 customers, got %d (rows %d)", len(roster), diag.Rows)
	}

	report := buildReport(roster, testParams(asOf))
	if report.Stats.Total != 3 || report.Stats.Active != 2 {
		t.Fatalf("unexpected totals: %+v", report.Stats)
	}
	if report.Stats.ChurnRate != "33.3" {
		t.Fatalf("expected churn rate 33.3, got %s", report.Stats.ChurnRate)
	}
	if report.Stats.AvgCLV != "1800.00" {
		t.Fatalf("expected avg clv 1800.00, got %s", report.Stats.AvgCLV)
	}
	if report.RiskTiers[risk.High] != 1 || report.RiskTiers[risk.Medium] != 2 || report.RiskTiers[risk.Low] != 0 {
		t.Fatalf("unexpected risk tiers: %v", report.RiskTiers)
	}
	if len(report.TopCustomers) != 3 || report.TopCustomers[0].ID != "C-1" {
		t.Fatalf("expected C-1 to lead top customers, got %+v", report.TopCustomers)
	}
	if len(report.HighValue) != 1 || report.HighValue[0].ID != "C-1" {
		t.Fatalf("expected C-1 as the only high value target, got %+v", report.HighValue)
	}
	if len(report.Trend) != 6 || report.Trend[5].Label != "Oct" {
		t.Fatalf("expected six months ending in Oct, got %+v", report.Trend)
	}
	if report.Summary.AsOf != "2026-10-18" {
		t.Fatalf("expected as_of 2026-10-18, got %s", report.Summary.AsOf)
	}
}

func TestBuildReportSearch(t *testing.T) {
	path := writeTempCSV(t, rosterCSV)
	roster, _, err := loadRoster(path)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}

	params := testParams(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	params.Search = "risk"
	report := buildReport(roster, params)
	if report.Summary.RosterSize != 3 || report.Summary.FilteredSize != 1 {
		t.Fatalf("expected 1 of 3 customers, got %d of %d", report.Summary.FilteredSize, report.Summary.RosterSize)
	}
	if report.Stats.ChurnRate != "100.0" {
		t.Fatalf("expected churn rate 100.0, got %s", report.Stats.ChurnRate)
	}
}

func TestLoadRosterHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "Customer ID,Tenure\n")
	_, _, err := loadRoster(path)
	if !errors.Is(err, errNothingImported) {
		t.Fatalf("expected errNothingImported, got %v", err)
	}
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, _, err := loadRoster(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLogImportLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	_, diag, err := loadRoster(writeTempCSV(t, "Customer ID,Tenure\nC-1,abc\n"))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if diag.Clean() {
		t.Fatalf("expected defaulted or coerced values, got %+v", diag)
	}

	logImport(logger, "partial.csv", diag)
	entries := logs.TakeAll()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}

	full := "Customer ID,Tenure (Months),Monthly Charges,Total Charges,Contract Type,Usage (GB),Last Activity,CLV,RFM Score,Segment,Churned\n" +
		"C-1,24,80,1920,Two year,50,2026-09-01,3100,5,Champions,No\n"
	_, diag, err = loadRoster(writeTempCSV(t, full))
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	logImport(logger, "full.csv", diag)
	entries = logs.TakeAll()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected one info entry, got %+v (diagnostics %+v)", entries, diag)
	}
}

func TestPrintReport(t *testing.T) {
	path := writeTempCSV(t, rosterCSV)
	roster, _, err := loadRoster(path)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	report := buildReport(roster, testParams(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))

	var out bytes.Buffer
	printReport(&out, report)
	text := out.String()
	for _, want := range []string{
		"NexaTel Customer Analytics",
		"Total customers: 3 | Active: 2",
		"Churn rate: 33.3% | Avg CLV: $1800.00",
		"Churn risk: high 1 | medium 2 | low 0",
		"Champions: 1 (33%)",
		"C-1 | Champions | Two year | $1920.00 total | Healthy",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestPrintPrediction(t *testing.T) {
	params := risk.Parameters{Tenure: 12, MonthlyCharges: 70, Contract: "Month-to-month"}
	var out bytes.Buffer
	printPrediction(&out, params, params.Predict())
	if !strings.Contains(out.String(), "Probability: 92% | Risk: High") {
		t.Fatalf("unexpected prediction output:\n%s", out.String())
	}
}

func TestWriteJSON(t *testing.T) {
	path := writeTempCSV(t, rosterCSV)
	roster, _, err := loadRoster(path)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	report := buildReport(roster, testParams(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))

	outPath := filepath.Join(t.TempDir(), "report.json")
	if err := writeJSON(report, outPath); err != nil {
		t.Fatalf("write json: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	for _, key := range []string{"summary", "stats", "trend", "clv_distribution", "segments", "risk_tiers", "top_customers"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in report json", key)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, value := range []string{"2026-10-18", "2026/10/18", "10/18/2026", "2026-10-18T00:00:00Z"} {
		parsed, err := parseDate(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if parsed.Format("2006-01-02") != "2026-10-18" {
			t.Fatalf("parse %q: got %s", value, parsed)
		}
	}
	if _, err := parseDate("18 Oct 2026"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := parseDate("  "); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

func TestInitLogger(t *testing.T) {
	if _, err := initLogger(config.LoggingConfig{Level: "debug", Development: true}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if _, err := initLogger(config.LoggingConfig{Level: "verbose"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
