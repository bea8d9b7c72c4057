package metrics

import (
	"math"
	"sort"

	"nexatel-customer-analytics/customer"
)

// Dashboard defaults for the ranked customer lists.
const (
	DefaultHighValueThreshold = 2500.0
	DefaultHighValueLimit     = 6
	DefaultTopCustomers       = 5
)

// Band is a labelled count.
type Band struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

var clvBands = []struct {
	label    string
	min, max float64
}{
	{"$0-500", math.Inf(-1), 500},
	{"$500-1k", 500, 1000},
	{"$1k-2k", 1000, 2000},
	{"$2k-3k", 2000, 3000},
	{"$3k+", 3000, math.Inf(1)},
}

// CLVDistribution counts customers per lifetime value band. Bands are
// closed below and open above.
func CLVDistribution(records []customer.Customer) []Band {
	out := make([]Band, len(clvBands))
	for i, b := range clvBands {
		out[i].Label = b.label
	}
	for _, c := range records {
		for i, b := range clvBands {
			if c.CLV >= b.min && c.CLV < b.max {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// SegmentShare is the size of one conventional segment.
type SegmentShare struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// SegmentShares reports the conventional segments in display order with
// their whole-percent share of the roster. Other labels are not listed but
// still count toward the total.
func SegmentShares(records []customer.Customer) []SegmentShare {
	counts := map[string]int{}
	for _, c := range records {
		counts[c.Segment]++
	}
	segments := customer.Segments()
	out := make([]SegmentShare, 0, len(segments))
	for _, s := range segments {
		share := SegmentShare{Segment: s, Count: counts[s]}
		if len(records) > 0 {
			share.Percent = int(math.Round(float64(share.Count) / float64(len(records)) * 100))
		}
		out = append(out, share)
	}
	return out
}

// TopByTotalCharges returns up to n customers with the highest total
// charges, highest first. n <= 0 keeps all of them.
func TopByTotalCharges(records []customer.Customer, n int) []customer.Customer {
	sorted := append([]customer.Customer{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalCharges > sorted[j].TotalCharges
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// HighValueTargets returns, in roster order, up to limit customers whose
// lifetime value exceeds threshold.
func HighValueTargets(records []customer.Customer, threshold float64, limit int) []customer.Customer {
	var out []customer.Customer
	for _, c := range records {
		if limit > 0 && len(out) == limit {
			break
		}
		if c.CLV > threshold {
			out = append(out, c)
		}
	}
	return out
}
