package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/repositories"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
)

// RegistrationService defines the registration engine: the authority over users,
// sessions, the course catalog and enrollments.
type RegistrationService interface {
	RegisterUser(username, password string, role models.RoleType) (models.RegisterStatus, error)
	Login(username, password string) (models.LoginStatus, models.RoleType)
	Logout(username string) models.LogoutStatus
	IsLoggedIn(username string) bool

	RegisterCourse(student string, courseID int) models.CourseRegStatus
	UnregisterCourse(student string, courseID int) models.UnregisterStatus
	KdamCheck(actor string, courseID int) ([]int, models.QueryStatus)
	CourseStat(actor string, courseID int) (*models.CourseStat, models.QueryStatus)
	StudentStat(actor, student string) (*models.StudentStat, models.QueryStatus)
	IsEnrolled(student string, courseID int) (bool, models.QueryStatus)
	MyCourses(student string) ([]int, models.QueryStatus)

	LoadCatalog(courses []*models.Course) error
	CatalogLoaded() bool
	CourseCount() int
	SessionCount() int

	// Operator projections, not gated by a session
	InspectCourses() []*models.CourseStat
	InspectCourse(courseID int) (*models.CourseStat, error)
	InspectStudent(username string) (*models.StudentStat, error)
}

// registrationServiceImpl implements RegistrationService.
//
// mu serialises every check-then-act sequence over the catalog and the ledger, which
// must agree with each other. The user repository has its own lock; the two are
// never held at the same time.
type registrationServiceImpl struct {
	mu      sync.Mutex
	users   *repositories.UserRepository
	courses *repositories.CourseRepository
	ledger  *repositories.EnrollmentRepository
	logger  zerolog.Logger
}

// NewRegistrationService creates the registration engine over the given stores
func NewRegistrationService(repos *repositories.Repositories, logger zerolog.Logger) RegistrationService {
	return &registrationServiceImpl{
		users:   repos.UserRepository,
		courses: repos.CourseRepository,
		ledger:  repos.EnrollmentRepository,
		logger:  logger.With().Str("component", "registration").Logger(),
	}
}

// RegisterUser registers a student or an administrator. Students get an empty
// ledger entry right away so their course set is never undefined.
func (s *registrationServiceImpl) RegisterUser(username, password string, role models.RoleType) (models.RegisterStatus, error) {
	status, err := s.users.Register(username, password, role)
	if err != nil {
		return status, fmt.Errorf("error registering %q: %w", username, err)
	}
	if status != models.StatusRegistered {
		s.logger.Debug().Str("username", username).Stringer("status", status).Msg("Registration rejected")
		return status, nil
	}

	if role == models.RoleStudent {
		s.mu.Lock()
		s.ledger.Open(username)
		s.mu.Unlock()
	}
	s.logger.Info().Str("username", username).Str("role", string(role)).Msg("User registered")
	return status, nil
}

// Login opens a session for username
func (s *registrationServiceImpl) Login(username, password string) (models.LoginStatus, models.RoleType) {
	status, role := s.users.Login(username, password)
	if status == models.LoginOK {
		s.logger.Info().Str("username", username).Str("role", string(role)).Msg("User logged in")
	} else {
		s.logger.Debug().Str("username", username).Stringer("status", status).Msg("Login rejected")
	}
	return status, role
}

// Logout closes the session of username
func (s *registrationServiceImpl) Logout(username string) models.LogoutStatus {
	status := s.users.Logout(username)
	if status == models.LogoutOK {
		s.logger.Info().Str("username", username).Msg("User logged out")
	}
	return status
}

// IsLoggedIn reports whether username holds a session
func (s *registrationServiceImpl) IsLoggedIn(username string) bool {
	return s.users.IsLoggedIn(username)
}

// authorize checks the session and, when role is set, the role of actor
func (s *registrationServiceImpl) authorize(actor string, role models.RoleType) (loggedIn, permitted bool) {
	if !s.users.IsLoggedIn(actor) {
		return false, false
	}
	if role == "" {
		return true, true
	}
	actual, _ := s.users.RoleOf(actor)
	return true, actual == role
}

// RegisterCourse enrolls student in courseID. The checks run in a fixed order and the
// first failing one decides the result; the ledger is only touched when all pass.
func (s *registrationServiceImpl) RegisterCourse(student string, courseID int) models.CourseRegStatus {
	status := s.registerCourse(student, courseID)
	s.logger.Debug().Str("username", student).Int("courseID", courseID).Stringer("status", status).Msg("Course registration")
	return status
}

func (s *registrationServiceImpl) registerCourse(student string, courseID int) models.CourseRegStatus {
	loggedIn, permitted := s.authorize(student, models.RoleStudent)
	if !loggedIn {
		return models.CourseRegNotLoggedIn
	}
	if !permitted {
		return models.CourseRegNotStudent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses.Get(courseID)
	if !ok {
		return models.CourseRegNoSuchCourse
	}
	if s.ledger.IsEnrolled(student, courseID) {
		return models.CourseRegAlreadyEnrolled
	}
	if course.Full() {
		return models.CourseRegFull
	}
	for _, prereq := range course.Prerequisites {
		if !s.ledger.IsEnrolled(student, prereq) {
			return models.CourseRegMissingPrerequisites
		}
	}

	s.ledger.Enroll(student, course)
	return models.CourseRegistered
}

// UnregisterCourse drops student from courseID
func (s *registrationServiceImpl) UnregisterCourse(student string, courseID int) models.UnregisterStatus {
	loggedIn, permitted := s.authorize(student, models.RoleStudent)
	if !loggedIn {
		return models.UnregisterNotLoggedIn
	}
	if !permitted {
		return models.UnregisterNotStudent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.IsEnrolled(student, courseID) {
		return models.UnregisterNotEnrolled
	}
	course, ok := s.courses.Get(courseID)
	if !ok {
		// Ledger entries only ever point at loaded courses.
		return models.UnregisterNotEnrolled
	}
	s.ledger.Unenroll(student, course)
	s.logger.Debug().Str("username", student).Int("courseID", courseID).Msg("Course unregistered")
	return models.Unregistered
}

// KdamCheck returns the prerequisites of courseID in catalog order
func (s *registrationServiceImpl) KdamCheck(actor string, courseID int) ([]int, models.QueryStatus) {
	if loggedIn, _ := s.authorize(actor, ""); !loggedIn {
		return nil, models.QueryNotLoggedIn
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses.Get(courseID); !ok {
		return nil, models.QueryNoSuchCourse
	}
	return s.courses.PrerequisitesOf(courseID), models.QueryOK
}

// CourseStat returns the state of courseID; administrators only
func (s *registrationServiceImpl) CourseStat(actor string, courseID int) (*models.CourseStat, models.QueryStatus) {
	loggedIn, permitted := s.authorize(actor, models.RoleAdministrator)
	if !loggedIn {
		return nil, models.QueryNotLoggedIn
	}
	if !permitted {
		return nil, models.QueryForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses.Get(courseID)
	if !ok {
		return nil, models.QueryNoSuchCourse
	}
	return courseStat(course), models.QueryOK
}

// StudentStat returns the courses of student; administrators only
func (s *registrationServiceImpl) StudentStat(actor, student string) (*models.StudentStat, models.QueryStatus) {
	loggedIn, permitted := s.authorize(actor, models.RoleAdministrator)
	if !loggedIn {
		return nil, models.QueryNotLoggedIn
	}
	if !permitted {
		return nil, models.QueryForbidden
	}
	if role, ok := s.users.RoleOf(student); !ok || role != models.RoleStudent {
		return nil, models.QueryNoSuchStudent
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.StudentStat{Username: student, Courses: s.orderedCoursesOf(student)}, models.QueryOK
}

// IsEnrolled reports whether student is enrolled in courseID
func (s *registrationServiceImpl) IsEnrolled(student string, courseID int) (bool, models.QueryStatus) {
	loggedIn, permitted := s.authorize(student, models.RoleStudent)
	if !loggedIn {
		return false, models.QueryNotLoggedIn
	}
	if !permitted {
		return false, models.QueryForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsEnrolled(student, courseID), models.QueryOK
}

// MyCourses returns the courses of the calling student in catalog order
func (s *registrationServiceImpl) MyCourses(student string) ([]int, models.QueryStatus) {
	loggedIn, permitted := s.authorize(student, models.RoleStudent)
	if !loggedIn {
		return nil, models.QueryNotLoggedIn
	}
	if !permitted {
		return nil, models.QueryForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedCoursesOf(student), models.QueryOK
}

// orderedCoursesOf returns the ledger entry of student sorted by catalog position.
// A missing entry is an empty set. Callers hold mu.
func (s *registrationServiceImpl) orderedCoursesOf(student string) []int {
	ids, ok := s.ledger.CoursesOf(student)
	if !ok {
		return []int{}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return s.courses.Position(ids[i]) < s.courses.Position(ids[j])
	})
	return ids
}

// LoadCatalog replaces the course catalog. On failure the previous catalog stays in
// place; on success every enrollment is dropped, since rosters start empty.
func (s *registrationServiceImpl) LoadCatalog(courses []*models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.courses.Load(courses); err != nil {
		s.logger.Error().Err(err).Msg("Catalog load rejected")
		return err
	}
	s.ledger.Reset()
	s.logger.Info().Int("courses", s.courses.Len()).Msg("Catalog loaded")
	return nil
}

// CatalogLoaded reports whether a catalog has been loaded
func (s *registrationServiceImpl) CatalogLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courses.Loaded()
}

// CourseCount returns the number of courses in the catalog
func (s *registrationServiceImpl) CourseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courses.Len()
}

// SessionCount returns the number of logged-in users
func (s *registrationServiceImpl) SessionCount() int {
	return s.users.SessionCount()
}

// InspectCourses returns every course in catalog order
func (s *registrationServiceImpl) InspectCourses() []*models.CourseStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.courses.All()
	stats := make([]*models.CourseStat, 0, len(all))
	for _, c := range all {
		stats = append(stats, courseStat(c))
	}
	return stats
}

// InspectCourse returns the state of courseID
func (s *registrationServiceImpl) InspectCourse(courseID int) (*models.CourseStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.courses.Loaded() {
		return nil, apperrors.ErrCatalogNotLoaded
	}
	course, ok := s.courses.Get(courseID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrCourseNotFound, courseID)
	}
	return courseStat(course), nil
}

// InspectStudent returns the courses of a registered student
func (s *registrationServiceImpl) InspectStudent(username string) (*models.StudentStat, error) {
	if role, ok := s.users.RoleOf(username); !ok || role != models.RoleStudent {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrStudentNotFound, username)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.StudentStat{Username: username, Courses: s.orderedCoursesOf(username)}, nil
}

func courseStat(c *models.Course) *models.CourseStat {
	return &models.CourseStat{
		ID:             c.ID,
		Name:           c.Name,
		Prerequisites:  append([]int{}, c.Prerequisites...),
		Capacity:       c.Capacity,
		Enrolled:       c.Enrolled(),
		SeatsAvailable: c.SeatsAvailable(),
		Students:       c.Students(),
	}
}
