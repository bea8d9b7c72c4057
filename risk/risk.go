// Package risk scores churn likelihood with a fixed-coefficient logistic
// model. There is no training; the coefficients are constants.
package risk

import (
	"math"

	"nexatel-customer-analytics/customer"
)

// Level is a discrete risk tier.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Levels lists the tiers from least to most severe.
func Levels() []Level {
	return []Level{Low, Medium, High}
}

const (
	intercept          = 0.5
	tenureWeight       = -0.05
	monthlyWeight      = 0.02
	monthToMonthWeight = 1.2
	committedWeight    = -0.8

	highAbove   = 0.7
	mediumAbove = 0.4
)

// Parameters are the model inputs.
type Parameters struct {
	Tenure         int               `json:"tenure"`
	MonthlyCharges float64           `json:"monthlyCharges"`
	Contract       customer.Contract `json:"contract"`
}

// FromCustomer takes the model inputs from a roster record.
func FromCustomer(c customer.Customer) Parameters {
	return Parameters{Tenure: c.Tenure, MonthlyCharges: c.MonthlyCharges, Contract: c.Contract}
}

// Prediction is the scored outcome.
type Prediction struct {
	Probability int   `json:"probability"`
	Level       Level `json:"riskLevel"`
}

// Logit returns the linear term of the model. Any contract other than
// month-to-month counts as committed.
func (p Parameters) Logit() float64 {
	contract := committedWeight
	if p.Contract == customer.MonthToMonth {
		contract = monthToMonthWeight
	}
	return intercept + tenureWeight*float64(p.Tenure) + monthlyWeight*p.MonthlyCharges + contract
}

// Score maps z to a probability in (0, 1).
func Score(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Predict scores the parameters. Inputs are not range checked.
func Predict(tenure int, monthlyCharges float64, contract customer.Contract) Prediction {
	return Parameters{Tenure: tenure, MonthlyCharges: monthlyCharges, Contract: contract}.Predict()
}

// Predict scores p. The tier comes from the unrounded score, so a 70%
// probability can still be High.
func (p Parameters) Predict() Prediction {
	score := Score(p.Logit())
	return Prediction{Probability: int(math.Round(score * 100)), Level: LevelFor(score)}
}

// LevelFor tiers a score in [0, 1]: above 0.7 is High, above 0.4 is Medium,
// anything else Low.
func LevelFor(score float64) Level {
	switch {
	case score > highAbove:
		return High
	case score > mediumAbove:
		return Medium
	default:
		return Low
	}
}

// ScoreRoster counts records per predicted tier.
func ScoreRoster(records []customer.Customer) map[Level]int {
	counts := make(map[Level]int, len(Levels()))
	for _, l := range Levels() {
		counts[l] = 0
	}
	for _, c := range records {
		counts[FromCustomer(c).Predict().Level]++
	}
	return counts
}
