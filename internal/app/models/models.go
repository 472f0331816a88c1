package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent       RoleType = "STUDENT"
	RoleAdministrator RoleType = "ADMIN"
)

// Valid reports whether r is one of the two known roles.
func (r RoleType) Valid() bool {
	return r == RoleStudent || r == RoleAdministrator
}
