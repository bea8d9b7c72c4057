package customer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// DefaultDemoSize is the roster size used when no import is supplied.
const DefaultDemoSize = 800

// Generate builds a synthetic roster of n customers. Month-to-month contracts
// and high monthly charges churn more often, and the segment follows a few
// fixed rules over tenure, spend, churn and recency.
func Generate(n int, now time.Time, rng *rand.Rand) []Customer {
	if n <= 0 {
		return nil
	}
	contracts := Contracts()
	out := make([]Customer, 0, n)

	for i := 0; i < n; i++ {
		tenure := rng.IntN(72) + 1
		monthly := round2(rng.Float64()*100 + 20)
		total := round2(float64(tenure) * monthly)
		contract := contracts[rng.IntN(len(contracts))]

		churnProb := monthly / 120
		if contract == MonthToMonth {
			churnProb *= 0.7
		} else {
			churnProb *= 0.2
		}
		churn := rng.Float64() < churnProb

		usage := rng.IntN(500) + 10
		daysAgo := rng.IntN(180)

		segment := SegmentLoyal
		switch {
		case tenure > 48 && total > 5000:
			segment = SegmentChampions
		case churn && tenure < 12:
			segment = SegmentLost
		case monthly > 90:
			segment = SegmentBigSpenders
		case daysAgo > 90:
			segment = SegmentAtRisk
		}

		out = append(out, Customer{
			ID:               fmt.Sprintf("CUST-%d", 1000+i),
			Tenure:           tenure,
			MonthlyCharges:   monthly,
			TotalCharges:     total,
			Churn:            churn,
			Contract:         contract,
			UsageGB:          usage,
			LastActivityDate: now.AddDate(0, 0, -daysAgo).Format(DateLayout),
			CLV:              round2(total * 0.4),
			RFMScore:         rng.IntN(5) + 1,
			Segment:          segment,
		})
	}
	return out
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
