package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Period is a calendar quarter, formatted as "YYYY-Qn".
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// ParsePeriod parses a "YYYY-Qn" string.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	year, quarter, ok := strings.Cut(s, "-Q")
	if !ok {
		return Period{}, eris.Errorf("model: invalid period %q (want YYYY-Qn)", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1900 || y > 9999 {
		return Period{}, eris.Errorf("model: invalid period year %q", year)
	}
	q, err := strconv.Atoi(quarter)
	if err != nil || q < 1 || q > 4 {
		return Period{}, eris.Errorf("model: invalid period quarter %q", quarter)
	}
	return Period{Year: y, Quarter: q}, nil
}

// PeriodOf returns the quarter containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
}

// String returns the "YYYY-Qn" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-Q%d", p.Year, p.Quarter)
}

// IsZero reports whether p is the zero period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Quarter == 0
}

// Sub returns the period n quarters before p. Negative n moves forward.
func (p Period) Sub(n int) Period {
	idx := p.Year*4 + (p.Quarter - 1) - n
	return Period{Year: idx / 4, Quarter: idx%4 + 1}
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// Window returns the inclusive [start, end] range covering lookback quarters
// ending at end. lookback < 1 is treated as 1.
func Window(end Period, lookback int) (Period, Period) {
	if lookback < 1 {
		lookback = 1
	}
	return end.Sub(lookback - 1), end
}

// InWindow reports whether the period string s falls within [start, end].
// Unparseable strings are never in the window.
func InWindow(s string, start, end Period) bool {
	p, err := ParsePeriod(s)
	if err != nil {
		return false
	}
	return !p.Before(start) && !end.Before(p)
}
