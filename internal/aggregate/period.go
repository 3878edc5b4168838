package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Granularity is the bucket width.
type Granularity string

const (
	Monthly      Granularity = "monthly"
	Quarterly    Granularity = "quarterly"
	Yearly       Granularity = "yearly"
	FiscalYearly Granularity = "fiscal_yearly"
	None         Granularity = "none"
)

// FiscalYearStartMonth is the first month of the fiscal year.
const FiscalYearStartMonth = time.July

// ErrInvalidGranularity is returned for unknown period names.
var ErrInvalidGranularity = errors.New("invalid period")

// ParseGranularity accepts the period names used by the UI. Empty means None.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return None, nil
	case Monthly, Quarterly, Yearly, FiscalYearly, None:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// Grouped reports whether records are bucketed at all.
func (g Granularity) Grouped() bool {
	return g != None && g != ""
}

// Period identifies one bucket on the time axis.
type Period struct {
	Granularity Granularity
	Year        int
	Month       time.Month
	Quarter     int
	FiscalYear  int
	// Date is the record day for None.
	Date time.Time

	fiscalStart time.Month
}

// PeriodOf places a date into its bucket.
func PeriodOf(t time.Time, g Granularity, fiscalStart time.Month) Period {
	t = t.UTC()
	p := Period{Granularity: g, Year: t.Year(), fiscalStart: fiscalStart}
	switch g {
	case Monthly:
		p.Month = t.Month()
	case Quarterly:
		p.Quarter = (int(t.Month())-1)/3 + 1
	case Yearly:
	case FiscalYearly:
		p.FiscalYear = FiscalYear(t, fiscalStart)
	default:
		p.Granularity = None
		p.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return p
}

// FiscalYear returns the calendar year for months on or after the start month, else year - 1.
func FiscalYear(t time.Time, start time.Month) int {
	if t.Month() >= start {
		return t.Year()
	}
	return t.Year() - 1
}

// Key is the label used as a map key and chart axis value.
func (p Period) Key() string {
	switch p.Granularity {
	case Monthly:
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Quarter)
	case Yearly:
		return fmt.Sprintf("%04d", p.Year)
	case FiscalYearly:
		return fmt.Sprintf("FY%04d", p.FiscalYear)
	default:
		return p.Date.Format("2006-01-02")
	}
}

// Start is the first day of the period.
func (p Period) Start() time.Time {
	switch p.Granularity {
	case Monthly:
		return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		return time.Date(p.Year, time.Month((p.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	case FiscalYearly:
		start := p.fiscalStart
		if start == 0 {
			start = FiscalYearStartMonth
		}
		return time.Date(p.FiscalYear, start, 1, 0, 0, 0, 0, time.UTC)
	default:
		return p.Date
	}
}

// Components returns the grouping key parts in the shape the UI reads from `_id`.
func (p Period) Components() map[string]int {
	switch p.Granularity {
	case Monthly:
		return map[string]int{"year": p.Year, "month": int(p.Month)}
	case Quarterly:
		return map[string]int{"year": p.Year, "quarter": p.Quarter}
	case Yearly:
		return map[string]int{"year": p.Year}
	case FiscalYearly:
		return map[string]int{"fiscalYear": p.FiscalYear}
	default:
		return map[string]int{}
	}
}

// Before orders periods chronologically.
func (p Period) Before(q Period) bool {
	return p.Start().Before(q.Start())
}
