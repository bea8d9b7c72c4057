package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"nexatel-customer-analytics/config"
	"nexatel-customer-analytics/csvcodec"
	"nexatel-customer-analytics/customer"
	"nexatel-customer-analytics/metrics"
	"nexatel-customer-analytics/risk"
)

var errNothingImported = errors.New("could not parse CSV; ensure the headers match the export format")

type ReportSummary struct {
	AsOf         string `json:"as_of"`
	Source       string `json:"source"`
	Search       string `json:"search,omitempty"`
	RosterSize   int    `json:"roster_size"`
	FilteredSize int    `json:"filtered_size"`
	InvalidRows  int    `json:"invalid_rows"`
}

type Report struct {
	Summary      ReportSummary          `json:"summary"`
	Stats        metrics.DashboardStats `json:"stats"`
	Trend        []metrics.TrendPoint   `json:"trend"`
	CLVBands     []metrics.Band         `json:"clv_distribution"`
	Segments     []metrics.SegmentShare `json:"segments"`
	RiskTiers    map[risk.Level]int     `json:"risk_tiers"`
	TopCustomers []customer.Customer    `json:"top_customers"`
	HighValue    []customer.Customer    `json:"high_value_targets"`
	Import       *csvcodec.Diagnostics  `json:"import,omitempty"`
}

type reportParams struct {
	AsOf        time.Time
	Source      string
	Search      string
	InvalidRows int
	Settings    config.ReportConfig
	Rand        *rand.Rand
	Import      *csvcodec.Diagnostics
}

// loadRoster decodes the CSV at path. An import without data rows is an
// error here even though decoding itself never fails.
func loadRoster(path string, opts ...csvcodec.Option) ([]customer.Customer, csvcodec.Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, csvcodec.Diagnostics{}, err
	}
	records, diag := csvcodec.Decode(string(data), opts...)
	if len(records) == 0 {
		return nil, diag, errNothingImported
	}
	return records, diag, nil
}

func buildReport(roster []customer.Customer, params reportParams) Report {
	filtered := customer.Filter(roster, params.Search)
	settings := params.Settings

	return Report{
		Summary: ReportSummary{
			AsOf:         params.AsOf.Format(customer.DateLayout),
			Source:       params.Source,
			Search:       params.Search,
			RosterSize:   len(roster),
			FilteredSize: len(filtered),
			InvalidRows:  params.InvalidRows,
		},
		Stats:        metrics.Stats(filtered),
		Trend:        metrics.Trend(filtered, settings.TrendMonths, params.AsOf, params.Rand),
		CLVBands:     metrics.CLVDistribution(filtered),
		Segments:     metrics.SegmentShares(filtered),
		RiskTiers:    risk.ScoreRoster(filtered),
		TopCustomers: metrics.TopByTotalCharges(filtered, settings.TopCustomers),
		HighValue:    metrics.HighValueTargets(filtered, settings.HighValueThreshold, settings.HighValueLimit),
		Import:       params.Import,
	}
}

func printReport(w io.Writer, report Report) {
	fmt.Fprintln(w, "NexaTel Customer Analytics")
	fmt.Fprintln(w, strings.Repeat("=", 38))
	fmt.Fprintf(w, "Source: %s\n", report.Summary.Source)
	fmt.Fprintf(w, "As of: %s\n", report.Summary.AsOf)
	if report.Summary.Search != "" {
		fmt.Fprintf(w, "Search: %q (%d of %d customers)\n", report.Summary.Search, report.Summary.FilteredSize, report.Summary.RosterSize)
	}
	fmt.Fprintf(w, "Total customers: %d | Active: %d\n", report.Stats.Total, report.Stats.Active)
	fmt.Fprintf(w, "Churn rate: %s%% | Avg CLV: $%s\n", report.Stats.ChurnRate, report.Stats.AvgCLV)
	fmt.Fprintf(w, "Churn risk: high %d | medium %d | low %d\n",
		report.RiskTiers[risk.High], report.RiskTiers[risk.Medium], report.RiskTiers[risk.Low])
	if report.Summary.InvalidRows > 0 {
		fmt.Fprintf(w, "Rows failing validation: %d\n", report.Summary.InvalidRows)
	}

	fmt.Fprintln(w, "\nActivity trend")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, p := range report.Trend {
		fmt.Fprintf(w, "%s | active %d | churned %d\n", p.Label, p.Active, p.Churned)
	}

	fmt.Fprintln(w, "\nSegments")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, s := range report.Segments {
		fmt.Fprintf(w, "%s: %d (%d%%)\n", s.Segment, s.Count, s.Percent)
	}

	fmt.Fprintln(w, "\nCLV distribution")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, b := range report.CLVBands {
		fmt.Fprintf(w, "%s: %d\n", b.Label, b.Count)
	}

	fmt.Fprintln(w, "\nTop customers by total charges")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	if len(report.TopCustomers) == 0 {
		fmt.Fprintln(w, "No customers found.")
	}
	for _, c := range report.TopCustomers {
		fmt.Fprintf(w, "%s | %s | %s | $%.2f total | %s\n", c.ID, c.Segment, c.Contract, c.TotalCharges, churnLabel(c))
	}

	if len(report.HighValue) > 0 {
		fmt.Fprintln(w, "\nHigh lifetime value targets")
		fmt.Fprintln(w, strings.Repeat("-", 38))
		for _, c := range report.HighValue {
			fmt.Fprintf(w, "%s | %d months | %dGB/month | %s | $%.2f CLV\n", c.ID, c.Tenure, c.UsageGB, churnLabel(c), c.CLV)
		}
	}
}

func printPrediction(w io.Writer, params risk.Parameters, prediction risk.Prediction) {
	fmt.Fprintln(w, "\nChurn prediction")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	fmt.Fprintf(w, "Tenure %d months | $%.2f monthly | %s\n", params.Tenure, params.MonthlyCharges, params.Contract)
	fmt.Fprintf(w, "Probability: %d%% | Risk: %s\n", prediction.Probability, prediction.Level)
}

func churnLabel(c customer.Customer) string {
	if c.Churn {
		return "At Risk"
	}
	return "Healthy"
}

func writeJSON(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
