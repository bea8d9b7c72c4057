package customer

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCustomer() Customer {
	return Customer{
		ID:               "CUST-1001",
		Tenure:           24,
		MonthlyCharges:   65.5,
		TotalCharges:     1572,
		Contract:         OneYear,
		UsageGB:          120,
		LastActivityDate: "2026-09-30",
		CLV:              628.8,
		RFMScore:         4,
		Segment:          SegmentLoyal,
	}
}

func TestParseContract(t *testing.T) {
	tests := []struct {
		in   string
		want Contract
		ok   bool
	}{
		{"Month-to-month", MonthToMonth, true},
		{"  one YEAR ", OneYear, true},
		{"Two year", TwoYear, true},
		{"Three year", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseContract(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChurnCounts(t *testing.T) {
	records := []Customer{{Churn: true}, {}, {}, {Churn: true}, {}}
	churned, active := ChurnCounts(records)
	assert.Equal(t, 2, churned)
	assert.Equal(t, 3, active)
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, Validate(sampleCustomer()))
}

func TestValidate_ReportsEachField(t *testing.T) {
	c := sampleCustomer()
	c.Tenure = -1
	c.Contract = "Weekly"
	c.LastActivityDate = "30/09/2026"

	err := Validate(c)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "tenure is invalid")
	assert.Contains(t, msg, "contract is invalid")
	assert.Contains(t, msg, "lastActivityDate is invalid")
	assert.Contains(t, msg, "CUST-1001")
}

func TestValidate_MissingID(t *testing.T) {
	c := sampleCustomer()
	c.ID = ""
	err := Validate(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestValidateAll(t *testing.T) {
	bad := sampleCustomer()
	bad.CLV = -5
	problems := ValidateAll([]Customer{sampleCustomer(), bad, sampleCustomer()})
	require.Len(t, problems, 1)
	assert.Contains(t, problems[1].Error(), "clv is invalid")
}

func TestFilter(t *testing.T) {
	records := []Customer{
		{ID: "CUST-1001", Segment: SegmentChampions},
		{ID: "CUST-1002", Segment: SegmentAtRisk},
		{ID: "X-77", Segment: SegmentLoyal},
	}

	assert.Len(t, Filter(records, ""), 3)
	assert.Len(t, Filter(records, "cust"), 2)
	assert.Len(t, Filter(records, "AT RISK"), 1)
	assert.Len(t, Filter(records, "loyal"), 1)
	assert.Empty(t, Filter(records, "nobody"))

	// ID and segment only; contract text does not match.
	records[0].Contract = TwoYear
	assert.Empty(t, Filter(records, "two year"))
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	records := []Customer{{ID: "A"}, {ID: "B"}}
	out := Filter(records, "")
	out[0].ID = "changed"
	assert.Equal(t, "A", records[0].ID)
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(1, 2))

	records := Generate(300, now, rng)
	require.Len(t, records, 300)
	assert.Equal(t, "CUST-1000", records[0].ID)
	assert.Equal(t, "CUST-1299", records[299].ID)

	known := map[string]bool{}
	for _, s := range Segments() {
		known[s] = true
	}
	oldest := now.AddDate(0, 0, -179).Format(DateLayout)
	for _, c := range records {
		require.NoError(t, Validate(c))
		assert.GreaterOrEqual(t, c.Tenure, 1)
		assert.LessOrEqual(t, c.Tenure, 72)
		assert.GreaterOrEqual(t, c.MonthlyCharges, 20.0)
		assert.LessOrEqual(t, c.MonthlyCharges, 120.0)
		assert.GreaterOrEqual(t, c.RFMScore, 1)
		assert.LessOrEqual(t, c.RFMScore, 5)
		assert.True(t, known[c.Segment], "unexpected segment %q", c.Segment)
		assert.True(t, c.LastActivityDate >= oldest && c.LastActivityDate <= "2026-10-18")
		assert.InDelta(t, c.TotalCharges*0.4, c.CLV, 0.01)
		if c.Tenure > 48 && c.TotalCharges > 5000 {
			assert.Equal(t, SegmentChampions, c.Segment)
		}
		assert.True(t, strings.HasPrefix(c.ID, "CUST-"))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Generate(20, now, rand.New(rand.NewPCG(7, 7)))
	b := Generate(20, now, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
	assert.Nil(t, Generate(0, now, rand.New(rand.NewPCG(7, 7))))
}
