package models

// User is a registered account. Users are created once and never mutated or deleted.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	RoleType     RoleType `json:"roleType"`
}

// IsStudent reports whether the user registered as a student
func (u *User) IsStudent() bool {
	return u.RoleType == RoleStudent
}

// IsAdministrator reports whether the user registered as an administrator
func (u *User) IsAdministrator() bool {
	return u.RoleType == RoleAdministrator
}
