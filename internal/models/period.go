package models

import "fmt"

// Period identifies a focus-time slot. Periods 9 and 10 are distinct slots;
// PeriodCombined spans both of them.
type Period int

const (
	PeriodNine     Period = 9
	PeriodTen      Period = 10
	PeriodCombined Period = 910
)

// Valid reports whether p is one of the known slot codes.
func (p Period) Valid() bool {
	switch p {
	case PeriodNine, PeriodTen, PeriodCombined:
		return true
	}
	return false
}

// Overlaps reports whether two periods claim the same time. The combined
// slot owns the time of both single slots.
func (p Period) Overlaps(other Period) bool {
	if p == other {
		return true
	}
	if p == PeriodCombined || other == PeriodCombined {
		return true
	}
	return false
}

// Covers returns the single slots occupied by p.
func (p Period) Covers() []Period {
	if p == PeriodCombined {
		return []Period{PeriodNine, PeriodTen}
	}
	return []Period{p}
}

func (p Period) String() string {
	if p == PeriodCombined {
		return "P9+P10"
	}
	return fmt.Sprintf("P%d", int(p))
}

// ParsePeriod converts a stored slot code into a Period.
func ParsePeriod(code int) (Period, error) {
	p := Period(code)
	if !p.Valid() {
		return 0, fmt.Errorf("unknown period code %d", code)
	}
	return p, nil
}
