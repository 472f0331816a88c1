package models

// Each registration operation reports its outcome through its own status type so a
// caller cannot confuse, say, a login result with a course registration result.

// RegisterStatus is the outcome of registering a user
type RegisterStatus uint8

const (
	StatusRegistered RegisterStatus = iota
	StatusAlreadyRegistered
	StatusInvalidRole
)

func (s RegisterStatus) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusAlreadyRegistered:
		return "already_registered"
	case StatusInvalidRole:
		return "invalid_role"
	}
	return "unknown"
}

// OK reports whether the registration was accepted
func (s RegisterStatus) OK() bool { return s == StatusRegistered }

// LoginStatus is the outcome of a login attempt
type LoginStatus uint8

const (
	LoginOK LoginStatus = iota
	LoginAlreadyLoggedIn
	LoginWrongPassword
	LoginNotRegistered
)

func (s LoginStatus) String() string {
	switch s {
	case LoginOK:
		return "ok"
	case LoginAlreadyLoggedIn:
		return "already_logged_in"
	case LoginWrongPassword:
		return "wrong_password"
	case LoginNotRegistered:
		return "not_registered"
	}
	return "unknown"
}

// OK reports whether the user is now logged in
func (s LoginStatus) OK() bool { return s == LoginOK }

// LogoutStatus is the outcome of a logout
type LogoutStatus uint8

const (
	LogoutOK LogoutStatus = iota
	LogoutNotLoggedIn
)

func (s LogoutStatus) String() string {
	switch s {
	case LogoutOK:
		return "ok"
	case LogoutNotLoggedIn:
		return "not_logged_in"
	}
	return "unknown"
}

// OK reports whether the session was closed
func (s LogoutStatus) OK() bool { return s == LogoutOK }

// CourseRegStatus is the outcome of a course registration. The constants are listed in
// the order the checks run; the first failing check decides the result.
type CourseRegStatus uint8

const (
	CourseRegistered CourseRegStatus = iota
	CourseRegNotLoggedIn
	CourseRegNotStudent
	CourseRegNoSuchCourse
	CourseRegAlreadyEnrolled
	CourseRegFull
	CourseRegMissingPrerequisites
)

func (s CourseRegStatus) String() string {
	switch s {
	case CourseRegistered:
		return "registered"
	case CourseRegNotLoggedIn:
		return "not_logged_in"
	case CourseRegNotStudent:
		return "not_student"
	case CourseRegNoSuchCourse:
		return "no_such_course"
	case CourseRegAlreadyEnrolled:
		return "already_enrolled"
	case CourseRegFull:
		return "course_full"
	case CourseRegMissingPrerequisites:
		return "missing_prerequisites"
	}
	return "unknown"
}

// OK reports whether the student is now enrolled
func (s CourseRegStatus) OK() bool { return s == CourseRegistered }

// UnregisterStatus is the outcome of dropping a course
type UnregisterStatus uint8

const (
	Unregistered UnregisterStatus = iota
	UnregisterNotLoggedIn
	UnregisterNotStudent
	UnregisterNotEnrolled
)

func (s UnregisterStatus) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case UnregisterNotLoggedIn:
		return "not_logged_in"
	case UnregisterNotStudent:
		return "not_student"
	case UnregisterNotEnrolled:
		return "not_enrolled"
	}
	return "unknown"
}

// OK reports whether the enrollment was removed
func (s UnregisterStatus) OK() bool { return s == Unregistered }

// QueryStatus is the outcome of a read-only query
type QueryStatus uint8

const (
	QueryOK QueryStatus = iota
	QueryNotLoggedIn
	QueryForbidden
	QueryNoSuchCourse
	QueryNoSuchStudent
)

func (s QueryStatus) String() string {
	switch s {
	case QueryOK:
		return "ok"
	case QueryNotLoggedIn:
		return "not_logged_in"
	case QueryForbidden:
		return "forbidden"
	case QueryNoSuchCourse:
		return "no_such_course"
	case QueryNoSuchStudent:
		return "no_such_student"
	}
	return "unknown"
}

// OK reports whether the query produced a result
func (s QueryStatus) OK() bool { return s == QueryOK }
