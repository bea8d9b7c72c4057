package csvcodec

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backfill supplies placeholder values for columns an import does not carry.
type Backfill interface {
	// ID returns a placeholder identifier for rows without one.
	ID() string
	// CLV estimates lifetime value when no explicit non-zero value exists.
	CLV(totalCharges float64) float64
	// RFMScore returns a score in [1,5] when no explicit non-zero value exists.
	RFMScore() int
}

// RandomBackfill draws placeholders from Rand, or from the auto-seeded
// global source when Rand is nil.
type RandomBackfill struct {
	Rand *rand.Rand
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// ID returns "C-" followed by five random base36 characters.
func (b RandomBackfill) ID() string {
	buf := make([]byte, 0, 7)
	buf = append(buf, 'C', '-')
	for i := 0; i < 5; i++ {
		buf = append(buf, idAlphabet[b.intN(len(idAlphabet))])
	}
	return string(buf)
}

// CLV is 40% of total charges, rounded to cents.
func (b RandomBackfill) CLV(totalCharges float64) float64 {
	return math.Round(totalCharges*0.4*100) / 100
}

func (b RandomBackfill) RFMScore() int {
	return b.intN(5) + 1
}

func (b RandomBackfill) intN(n int) int {
	if b.Rand == nil {
		return rand.IntN(n)
	}
	return b.Rand.IntN(n)
}

// Option configures Decode.
type Option func(*options)

type options struct {
	now      func() time.Time
	backfill Backfill
	quoted   bool
}

// WithClock sets the clock used for the default last-activity date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRand makes the default backfill draw from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.backfill = RandomBackfill{Rand: rng}
	}
}

// WithBackfill replaces the placeholder strategy entirely.
func WithBackfill(b Backfill) Option {
	return func(o *options) {
		o.backfill = b
	}
}

// WithQuotedFields splits rows with encoding/csv so commas inside quoted
// values are kept. The default is a plain split on every comma.
func WithQuotedFields() Option {
	return func(o *options) {
		o.quoted = true
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		now:      time.Now,
		backfill: RandomBackfill{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
