package models

import "time"

// Registration is one stored choice record. Records are insert-only: a
// registration is never updated or removed once written.
type Registration struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Choice    string    `db:"choice" json:"choice"`
	Period    Period    `db:"period" json:"period"`
	Degree    Degree    `db:"degree" json:"degree"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OccupancyKey identifies one occupancy bucket. Shared-pool activities keep
// separate buckets per registrant degree; consumers sum the buckets the
// activity's scope covers.
type OccupancyKey struct {
	Choice string
	Period Period
	Degree Degree
}

// Occupancy maps occupancy buckets to registration counts.
type Occupancy map[OccupancyKey]int

// Count returns the number of registrations recorded under key.
func (o Occupancy) Count(key OccupancyKey) int {
	return o[key]
}
