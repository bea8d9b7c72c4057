// Package metrics computes dashboard aggregates over a customer roster.
// Every function reads its input and returns fresh values; nothing here
// modifies the records it is given.
package metrics

import (
	"math"
	"strconv"

	"nexatel-customer-analytics/customer"
)

// DashboardStats are the headline KPIs. Rates are preformatted strings, the
// way the dashboard shows them.
type DashboardStats struct {
	Total     int    `json:"total"`
	ChurnRate string `json:"churnRate"`
	AvgCLV    string `json:"avgClv"`
	Active    int    `json:"active"`
}

// Stats computes the KPIs. An empty roster yields zero values with "0"
// for both formatted rates.
func Stats(records []customer.Customer) DashboardStats {
	if len(records) == 0 {
		return DashboardStats{ChurnRate: "0", AvgCLV: "0"}
	}
	total := len(records)
	churned, active := customer.ChurnCounts(records)

	sum := 0.0
	for _, c := range records {
		sum += c.CLV
	}

	return DashboardStats{
		Total:     total,
		ChurnRate: formatFixed(float64(churned)/float64(total)*100, 1),
		AvgCLV:    formatFixed(sum/float64(total), 2),
		Active:    active,
	}
}

// formatFixed rounds half away from zero before formatting, so 0.25 at one
// digit prints as 0.3.
func formatFixed(value float64, digits int) string {
	scale := math.Pow(10, float64(digits))
	return strconv.FormatFloat(math.Round(value*scale)/scale, 'f', digits, 64)
}
