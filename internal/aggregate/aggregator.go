// Package aggregate groups dated numeric records into calendar or fiscal periods.
//
// Every report that buckets cash-flow, sensitivity or price data goes through Aggregator,
// so the field semantics table in fields.go is the single definition of how a field
// combines within a period.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one dated observation for an entity (an asset id, a portfolio, a price series).
type Record struct {
	Entity string
	Date   time.Time
	Values map[string]float64
}

// Bucket is the aggregate of all records of one entity inside one period.
type Bucket struct {
	Entity    string
	Period    Period
	FirstDate time.Time
	LastDate  time.Time
	Count     int
	Values    map[string]float64
}

// Aggregator buckets records by granularity. The zero value is not usable; call New.
type Aggregator struct {
	granularity Granularity
	fields      []string
	fiscalStart time.Month
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFields restricts the carried fields. Without it every field present is carried.
func WithFields(fields ...string) Option {
	return func(a *Aggregator) {
		a.fields = fields
	}
}

// WithFiscalYearStart overrides FiscalYearStartMonth.
func WithFiscalYearStart(month time.Month) Option {
	return func(a *Aggregator) {
		a.fiscalStart = month
	}
}

// New returns an Aggregator for the granularity.
func New(g Granularity, opts ...Option) *Aggregator {
	if g == "" {
		g = None
	}
	a := &Aggregator{
		granularity: g,
		fiscalStart: FiscalYearStartMonth,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Granularity returns the configured bucket width.
func (a *Aggregator) Granularity() Granularity {
	return a.granularity
}

type bucketKey struct {
	entity string
	period string
}

type accumulator struct {
	bucket Bucket
	sums   map[string]decimal.Decimal
	counts map[string]int
	seen   map[string]bool
}

// Aggregate buckets the records. Periods without records are never emitted. Output is
// sorted ascending by period; buckets of the same period keep first-appearance order.
// With granularity None each record becomes its own bucket, sorted by date.
func (a *Aggregator) Aggregate(records []Record) []Bucket {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	if !a.granularity.Grouped() {
		out := make([]Bucket, 0, len(sorted))
		for _, r := range sorted {
			out = append(out, Bucket{
				Entity:    r.Entity,
				Period:    PeriodOf(r.Date, None, a.fiscalStart),
				FirstDate: r.Date,
				LastDate:  r.Date,
				Count:     1,
				Values:    a.pick(r.Values),
			})
		}
		return out
	}

	index := map[bucketKey]*accumulator{}
	var order []*accumulator
	for _, r := range sorted {
		period := PeriodOf(r.Date, a.granularity, a.fiscalStart)
		key := bucketKey{entity: r.Entity, period: period.Key()}
		acc, ok := index[key]
		if !ok {
			acc = &accumulator{
				bucket: Bucket{
					Entity:    r.Entity,
					Period:    period,
					FirstDate: r.Date,
					Values:    map[string]float64{},
				},
				sums:   map[string]decimal.Decimal{},
				counts: map[string]int{},
				seen:   map[string]bool{},
			}
			index[key] = acc
			order = append(order, acc)
		}
		acc.add(r.Date, a.pick(r.Values))
	}

	out := make([]Bucket, len(order))
	for i, acc := range order {
		out[i] = acc.finish()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period.Before(out[j].Period)
	})
	return out
}

func (a *Aggregator) pick(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	if a.fields == nil {
		for k, v := range values {
			out[k] = v
		}
		return out
	}
	for _, f := range a.fields {
		if v, ok := values[f]; ok {
			out[f] = v
		}
	}
	return out
}

// add folds one record in. Records arrive in ascending date order, so overwriting
// gives last-by-date and first-write gives first-by-date.
func (acc *accumulator) add(date time.Time, values map[string]float64) {
	acc.bucket.Count++
	acc.bucket.LastDate = date
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		switch SemanticsOf(k) {
		case Last:
			acc.bucket.Values[k] = v
		case First:
			if !acc.seen[k] {
				acc.bucket.Values[k] = v
			}
		default:
			acc.sums[k] = acc.sums[k].Add(decimal.NewFromFloat(v))
			acc.counts[k]++
		}
		acc.seen[k] = true
	}
}

func (acc *accumulator) finish() Bucket {
	b := acc.bucket
	for k, sum := range acc.sums {
		if SemanticsOf(k) == Mean {
			sum = sum.Div(decimal.NewFromInt(int64(acc.counts[k])))
		}
		f, _ := sum.Float64()
		b.Values[k] = f
	}
	return b
}

// SafeDiv returns n/d, or 0 when d is zero or the result is not finite.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
