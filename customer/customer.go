// Package customer defines the customer roster record shared by the codec,
// the metrics engine and the risk scorer.
package customer

import "strings"

// DateLayout is the date-only layout used for LastActivityDate.
const DateLayout = "2006-01-02"

// Contract is the commitment term of a customer.
type Contract string

const (
	MonthToMonth Contract = "Month-to-month"
	OneYear      Contract = "One year"
	TwoYear      Contract = "Two year"
)

// Contracts lists the accepted contract terms in display order.
func Contracts() []Contract {
	return []Contract{MonthToMonth, OneYear, TwoYear}
}

// ParseContract matches value against the known terms, ignoring case and
// surrounding whitespace.
func ParseContract(value string) (Contract, bool) {
	value = strings.TrimSpace(value)
	for _, c := range Contracts() {
		if strings.EqualFold(value, string(c)) {
			return c, true
		}
	}
	return "", false
}

const (
	SegmentChampions   = "Champions"
	SegmentLoyal       = "Loyal Customers"
	SegmentAtRisk      = "At Risk"
	SegmentLost        = "Lost Customers"
	SegmentBigSpenders = "Big Spenders"
	SegmentGeneral     = "General"
)

// Segments returns the conventional segment labels in display order.
// SegmentGeneral is the import fallback and is not part of the set.
func Segments() []string {
	return []string{SegmentChampions, SegmentLoyal, SegmentAtRisk, SegmentLost, SegmentBigSpenders}
}

// Customer is one row of the roster. Records are treated as values: derived
// views copy them and never modify a record in place.
type Customer struct {
	ID               string   `json:"id" validate:"required"`
	Tenure           int      `json:"tenure" validate:"gte=0"`
	MonthlyCharges   float64  `json:"monthlyCharges" validate:"gte=0"`
	TotalCharges     float64  `json:"totalCharges" validate:"gte=0"`
	Churn            bool     `json:"churn"`
	Contract         Contract `json:"contract" validate:"oneof='Month-to-month' 'One year' 'Two year'"`
	UsageGB          int      `json:"usageGB" validate:"gte=0"`
	LastActivityDate string   `json:"lastActivityDate" validate:"datetime=2006-01-02"`
	CLV              float64  `json:"clv" validate:"gte=0"`
	RFMScore         int      `json:"rfmScore"`
	Segment          string   `json:"segment"`
}

// ChurnCounts returns the number of churned and active customers.
func ChurnCounts(records []Customer) (churned, active int) {
	for _, c := range records {
		if c.Churn {
			churned++
		}
	}
	return churned, len(records) - churned
}
