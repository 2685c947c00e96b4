// Package elapsed computes the "years of experience" counter shown on the
// site. Months are 30 days and years are 365 days; the figures are
// approximate on purpose and match what the site has always displayed.
package elapsed

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/config"
)

const (
	daysPerYear  = 365
	daysPerMonth = 30
	startLayout  = "2006-01-02"
)

// DefaultStart is the career start date used when CAREER_START_DATE is unset.
var DefaultStart = time.Date(2008, time.February, 6, 0, 0, 0, 0, time.UTC)

type Elapsed struct {
	Years     int `json:"years"`
	Months    int `json:"months"`
	Days      int `json:"days"`
	TotalDays int `json:"total_days"`
}

// Compute returns the time between start and now. Partial days round up.
func Compute(start, now time.Time) Elapsed {
	diff := now.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	total := int(math.Ceil(diff.Hours() / 24))

	rest := total % daysPerYear
	return Elapsed{
		Years:     total / daysPerYear,
		Months:    rest / daysPerMonth,
		Days:      rest % daysPerMonth,
		TotalDays: total,
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Format renders the non-zero parts, e.g. "1 year 1 month 5 days".
func (e Elapsed) Format() string {
	var parts []string
	if e.Years > 0 {
		parts = append(parts, plural(e.Years, "year"))
	}
	if e.Months > 0 {
		parts = append(parts, plural(e.Months, "month"))
	}
	if e.Days > 0 {
		parts = append(parts, plural(e.Days, "day"))
	}
	return strings.Join(parts, " ")
}

func (e Elapsed) YearsOnly() string  { return plural(e.Years, "year") }
func (e Elapsed) MonthsOnly() string { return plural(e.Months, "month") }
func (e Elapsed) DaysOnly() string   { return plural(e.Days, "day") }

// StartFromConfig reads CAREER_START_DATE (YYYY-MM-DD).
func StartFromConfig(c map[string]string) (time.Time, error) {
	raw := config.GetString(c, "CAREER_START_DATE", "")
	if raw == "" {
		return DefaultStart, nil
	}
	start, err := time.Parse(startLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse CAREER_START_DATE %q: %w", raw, err)
	}
	return start, nil
}
