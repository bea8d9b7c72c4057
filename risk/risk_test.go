package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"nexatel-customer-analytics/customer"
)

func TestPredict_Scenario(t *testing.T) {
	p := Parameters{Tenure: 12, MonthlyCharges: 70, Contract: customer.MonthToMonth}
	assert.InDelta(t, 2.5, p.Logit(), 1e-9)

	got := Predict(12, 70, customer.MonthToMonth)
	assert.Equal(t, Prediction{Probability: 92, Level: High}, got)
}

func TestPredict_Committed(t *testing.T) {
	// z = 0.5 - 3 + 1.2 - 0.8 = -2.1
	got := Predict(60, 60, customer.TwoYear)
	assert.Equal(t, int(math.Round(100/(1+math.Exp(2.1)))), got.Probability)
	assert.Equal(t, Low, got.Level)
	assert.Equal(t, got, Predict(60, 60, customer.OneYear))
}

func TestPredict_TierBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		tenure      int
		monthly     float64
		contract    customer.Contract
		probability int
		level       Level
	}{
		// z = 0.85, score 0.70065
		{"rounded 70 above 0.7 is high", 20, 7.5, customer.MonthToMonth, 70, High},
		// z = 0.8, score 0.68997
		{"69 is medium", 20, 5, customer.MonthToMonth, 69, Medium},
		// z = -0.39, score 0.4037
		{"rounded 40 above 0.4 is medium", 2, 0.5, customer.OneYear, 40, Medium},
		// z = -0.45, score 0.38935
		{"39 is low", 3, 0, customer.OneYear, 39, Low},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict(tt.tenure, tt.monthly, tt.contract)
			assert.Equal(t, tt.probability, got.Probability)
			assert.Equal(t, tt.level, got.Level)
		})
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, Low, LevelFor(0))
	assert.Equal(t, Low, LevelFor(0.4))
	assert.Equal(t, Medium, LevelFor(0.4001))
	assert.Equal(t, Medium, LevelFor(0.7))
	assert.Equal(t, High, LevelFor(0.7001))
	assert.Equal(t, High, LevelFor(1))
}

func TestPredict_TenureMonotonic(t *testing.T) {
	for _, contract := range customer.Contracts() {
		for _, monthly := range []float64{0, 20, 70, 120} {
			prev := Predict(0, monthly, contract).Probability
			for tenure := 1; tenure <= 120; tenure++ {
				cur := Predict(tenure, monthly, contract).Probability
				assert.LessOrEqual(t, cur, prev, "tenure %d monthly %v %s", tenure, monthly, contract)
				prev = cur
			}
		}
	}
}

func TestPredict_MonthToMonthIsRiskier(t *testing.T) {
	for tenure := 0; tenure <= 72; tenure += 6 {
		for _, monthly := range []float64{20, 55.5, 120} {
			mtm := Parameters{Tenure: tenure, MonthlyCharges: monthly, Contract: customer.MonthToMonth}
			for _, contract := range []customer.Contract{customer.OneYear, customer.TwoYear} {
				other := Parameters{Tenure: tenure, MonthlyCharges: monthly, Contract: contract}
				assert.Greater(t, mtm.Logit(), other.Logit())
				assert.GreaterOrEqual(t, mtm.Predict().Probability, other.Predict().Probability)
			}
		}
	}
}

func TestPredict_ProbabilityRange(t *testing.T) {
	for _, tenure := range []int{-100, 0, 1000} {
		for _, monthly := range []float64{-1000, 0, 1000} {
			got := Predict(tenure, monthly, customer.MonthToMonth)
			assert.GreaterOrEqual(t, got.Probability, 0)
			assert.LessOrEqual(t, got.Probability, 100)
		}
	}
}

func TestScoreRoster(t *testing.T) {
	records := []customer.Customer{
		{Tenure: 12, MonthlyCharges: 70, Contract: customer.MonthToMonth},
		{Tenure: 60, MonthlyCharges: 60, Contract: customer.TwoYear},
		{Tenure: 1, MonthlyCharges: 90, Contract: customer.MonthToMonth},
	}
	got := ScoreRoster(records)
	assert.Equal(t, map[Level]int{Low: 1, Medium: 0, High: 2}, got)
	assert.Equal(t, map[Level]int{Low: 0, Medium: 0, High: 0}, ScoreRoster(nil))
}
