package models

// Student is one directory entry mapping an email to a degree. The
// directory is the single source for role resolution: degree 4 entries are
// staff, everything else is a student.
type Student struct {
	Email  string `db:"email" json:"email"`
	Name   string `db:"name" json:"name"`
	Degree Degree `db:"degree" json:"degree"`
}

// Role is the coarse access level derived from the directory degree.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
)

// RoleForDegree maps a directory degree onto a role.
func RoleForDegree(d Degree) Role {
	if d.Staff() {
		return RoleStaff
	}
	return RoleStudent
}
