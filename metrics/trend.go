package metrics

import (
	"math"
	"math/rand/v2"
	"time"

	"nexatel-customer-analytics/customer"
)

// DefaultTrendMonths is the trend window when none is requested.
const DefaultTrendMonths = 6

// TrendPoint is one month of the activity chart.
type TrendPoint struct {
	Label   string `json:"label"`
	Active  int    `json:"active"`
	Churned int    `json:"churned"`
}

// Trend fabricates a plausible monthly activity series from the current
// roster. It does not reconstruct history: active counts shrink by 2% per
// month going back from now and both series get an independent random
// variance in [0.8, 1.2). The result is ordered oldest first and always has
// one point per month.
func Trend(records []customer.Customer, months int, now time.Time, rng *rand.Rand) []TrendPoint {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	churned, active := customer.ChurnCounts(records)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]TrendPoint, 0, months)
	for back := months - 1; back >= 0; back-- {
		month := current.AddDate(0, -back, 0).Month()
		scale := math.Max(0, 1-float64(back)*0.02)
		points = append(points, TrendPoint{
			Label:   month.String()[:3],
			Active:  int(math.Floor(float64(active) * scale * variance(rng))),
			Churned: int(math.Floor(float64(churned) / float64(months) * variance(rng))),
		})
	}
	return points
}

func variance(rng *rand.Rand) float64 {
	if rng == nil {
		return 0.8 + rand.Float64()*0.4
	}
	return 0.8 + rng.Float64()*0.4
}
