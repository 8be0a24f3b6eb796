package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Degree is a student's year tier. Zero means the directory lookup found no
// entry; DegreeStaff marks teaching staff.
type Degree int

const (
	DegreeUnresolved Degree = 0
	DegreeOne        Degree = 1
	DegreeTwo        Degree = 2
	DegreeThree      Degree = 3
	DegreeStaff      Degree = 4
)

// Resolved reports whether the directory produced a usable tier.
func (d Degree) Resolved() bool {
	return d != DegreeUnresolved
}

// Staff reports whether the degree is the staff sentinel.
func (d Degree) Staff() bool {
	return d == DegreeStaff
}

// StudentTier reports whether the degree is an ordinary student tier (1-3).
func (d Degree) StudentTier() bool {
	return d >= DegreeOne && d <= DegreeThree
}

func (d Degree) String() string {
	return fmt.Sprintf("D%d", int(d))
}

// DegreeScope is the audience of an activity: a single degree, or the
// shared pool where degrees 2 and 3 draw on joint capacity.
type DegreeScope struct {
	Degree Degree
	Shared bool
}

// SharedScope is the joint D2/D3 pool.
var SharedScope = DegreeScope{Shared: true}

// ScopeFor returns the single-degree scope for d.
func ScopeFor(d Degree) DegreeScope {
	return DegreeScope{Degree: d}
}

// Covers reports whether a student of degree d may take activities in this
// scope. The shared pool admits degrees 2 and up.
func (s DegreeScope) Covers(d Degree) bool {
	if s.Shared {
		return d >= DegreeTwo && d <= DegreeThree
	}
	return s.Degree == d && d.StudentTier()
}

// SubDegrees lists the degrees whose occupancy counts against this scope's
// capacity. Shared-pool seats are consumed by both tiers.
func (s DegreeScope) SubDegrees() []Degree {
	if s.Shared {
		return []Degree{DegreeTwo, DegreeThree}
	}
	return []Degree{s.Degree}
}

func (s DegreeScope) String() string {
	if s.Shared {
		return "D2_D3"
	}
	return s.Degree.String()
}

// ParseDegreeScope decodes a catalog scope key ("D1".."D3" or "D2_D3").
func ParseDegreeScope(key string) (DegreeScope, error) {
	key = strings.TrimSpace(key)
	if key == "D2_D3" {
		return SharedScope, nil
	}
	if !strings.HasPrefix(key, "D") {
		return DegreeScope{}, fmt.Errorf("unknown degree scope %q", key)
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil {
		return DegreeScope{}, fmt.Errorf("unknown degree scope %q", key)
	}
	d := Degree(n)
	if !d.StudentTier() {
		return DegreeScope{}, fmt.Errorf("degree scope %q out of range", key)
	}
	return ScopeFor(d), nil
}
