package contract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Day is the width of one calendar day as used by period buckets.
const Day = 24 * time.Hour

// spanRe matches "N unit" with an optional plural "s" and an optional "ago".
var spanRe = regexp.MustCompile(`^(\d+)\s*([a-z]+?)s?(\s+ago)?$`)

// spanUnits maps every accepted unit spelling to its canonical name.
var spanUnits = map[string]string{
	"minute": "minute", "min": "minute",
	"hour": "hour", "hr": "hour",
	"day": "day",
	"week": "week", "wk": "week",
	"month": "month", "mo": "month",
	"year": "year", "yr": "year",
}

// span is a count of one calendar unit, e.g. "3 weeks".
type span struct {
	n    int
	unit string
	ago  bool
}

func parseSpan(s string) (span, error) {
	m := spanRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return span{}, fmt.Errorf("expected 'N <unit>', got %q", s)
	}
	unit, ok := spanUnits[m[2]]
	if !ok {
		return span{}, fmt.Errorf("unknown time unit %q", m[2])
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return span{}, fmt.Errorf("bad count in %q: %w", s, err)
	}
	// widths are time.Durations, so roughly 292 years at most
	if limit := math.MaxInt64 / int64(span{n: 1, unit: unit}.width()); int64(n) > limit {
		return span{}, fmt.Errorf("%q is too long", s)
	}
	return span{n: n, unit: unit, ago: m[3] != ""}, nil
}

// before steps back from t. Months and years follow the calendar.
func (sp span) before(t time.Time) time.Time {
	switch sp.unit {
	case "year":
		return t.AddDate(-sp.n, 0, 0)
	case "month":
		return t.AddDate(0, -sp.n, 0)
	}
	return t.Add(-sp.width())
}

// width is the fixed length of the span. A month counts as 30 days and a
// year as 365.
func (sp span) width() time.Duration {
	n := time.Duration(sp.n)
	switch sp.unit {
	case "minute":
		return n * time.Minute
	case "hour":
		return n * time.Hour
	case "week":
		return n * 7 * Day
	case "month":
		return n * 30 * Day
	case "year":
		return n * 365 * Day
	}
	return n * Day
}

// ParseTimeAgo resolves "N <unit> ago" against now, e.g. "6 months ago".
func ParseTimeAgo(s string, now time.Time) (time.Time, error) {
	sp, err := parseSpan(s)
	if err != nil {
		return time.Time{}, err
	}
	if !sp.ago {
		return time.Time{}, fmt.Errorf("%q is a span, not a point in time (missing 'ago')", s)
	}
	return sp.before(now), nil
}

// ParsePeriodWidth reads a bucket width. Go duration syntax ("720h") and
// "N <unit>" ("30 days", "2 wks") are both accepted; the width must be positive.
func ParsePeriodWidth(s string) (time.Duration, error) {
	width, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		sp, spanErr := parseSpan(s)
		if spanErr != nil {
			return 0, spanErr
		}
		if sp.ago {
			return 0, fmt.Errorf("period %q cannot be relative ('ago')", s)
		}
		width = sp.width()
	}
	if width <= 0 {
		return 0, fmt.Errorf("period %q must be longer than zero", s)
	}
	return width, nil
}
