package repositories

import (
	"fmt"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
)

// CourseRepository is the course catalog. It does no locking of its own: the
// registration service serialises every access together with the enrollment ledger.
type CourseRepository struct {
	courses  map[int]*models.Course
	position map[int]int
	order    []int
	loaded   bool
}

// NewCourseRepository creates an empty, not yet loaded catalog
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{
		courses:  make(map[int]*models.Course),
		position: make(map[int]int),
	}
}

// Load replaces the catalog with courses, in the given order. Either every course is
// accepted or the catalog is left exactly as it was. Only empty records and duplicate
// ids are rejected; a course with no seats or one that requires itself loads but can
// never be registered for.
func (r *CourseRepository) Load(courses []*models.Course) error {
	next := make(map[int]*models.Course, len(courses))
	position := make(map[int]int, len(courses))
	order := make([]int, 0, len(courses))

	for i, c := range courses {
		if c == nil {
			return fmt.Errorf("%w: record %d is empty", apperrors.ErrCatalogInvalid, i+1)
		}
		if _, dup := next[c.ID]; dup {
			return fmt.Errorf("%w: duplicate course id %d", apperrors.ErrCatalogInvalid, c.ID)
		}
		next[c.ID] = models.NewCourse(c.ID, c.Name, append([]int(nil), c.Prerequisites...), c.Capacity)
		position[c.ID] = i
		order = append(order, c.ID)
	}

	r.courses = next
	r.position = position
	r.order = order
	r.loaded = true
	return nil
}

// Loaded reports whether a catalog has been loaded successfully
func (r *CourseRepository) Loaded() bool {
	return r.loaded
}

// Len returns the number of courses
func (r *CourseRepository) Len() int {
	return len(r.courses)
}

// Get returns the course with the given id
func (r *CourseRepository) Get(courseID int) (*models.Course, bool) {
	c, ok := r.courses[courseID]
	return c, ok
}

// All returns every course in load order
func (r *CourseRepository) All() []*models.Course {
	out := make([]*models.Course, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.courses[id])
	}
	return out
}

// PrerequisitesOf returns a copy of the prerequisite list, in listed order
func (r *CourseRepository) PrerequisitesOf(courseID int) []int {
	c, ok := r.courses[courseID]
	if !ok {
		return []int{}
	}
	return append([]int{}, c.Prerequisites...)
}

// Roster returns the enrolled usernames, sorted
func (r *CourseRepository) Roster(courseID int) []string {
	c, ok := r.courses[courseID]
	if !ok {
		return []string{}
	}
	return c.Students()
}

// Capacity returns the seat count of a course, 0 if unknown
func (r *CourseRepository) Capacity(courseID int) int {
	c, ok := r.courses[courseID]
	if !ok {
		return 0
	}
	return c.Capacity
}

// Position returns the index of the course in load order, -1 if unknown
func (r *CourseRepository) Position(courseID int) int {
	p, ok := r.position[courseID]
	if !ok {
		return -1
	}
	return p
}
