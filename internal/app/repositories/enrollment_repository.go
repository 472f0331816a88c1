package repositories

import (
	"sort"

	"github.com/yigit/bgrs/internal/app/models"
)

// EnrollmentRepository is the student side of the enrollment relation; the course
// side is each course's roster. Enroll and Unenroll keep both sides in step and do
// no validation. Like the catalog, it relies on the registration service for locking.
type EnrollmentRepository struct {
	studentCourses map[string]map[int]struct{}
}

// NewEnrollmentRepository creates an empty ledger
func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{
		studentCourses: make(map[string]map[int]struct{}),
	}
}

// Open creates an empty entry for student if none exists
func (r *EnrollmentRepository) Open(student string) {
	if _, ok := r.studentCourses[student]; !ok {
		r.studentCourses[student] = make(map[int]struct{})
	}
}

// Has reports whether student has a ledger entry
func (r *EnrollmentRepository) Has(student string) bool {
	_, ok := r.studentCourses[student]
	return ok
}

// CoursesOf returns the course ids of student in ascending order. The second result
// is false when the student has no entry at all.
func (r *EnrollmentRepository) CoursesOf(student string) ([]int, bool) {
	set, ok := r.studentCourses[student]
	if !ok {
		return nil, false
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, true
}

// IsEnrolled reports whether student is enrolled in courseID
func (r *EnrollmentRepository) IsEnrolled(student string, courseID int) bool {
	_, ok := r.studentCourses[student][courseID]
	return ok
}

// Enroll records student in course on both sides of the relation
func (r *EnrollmentRepository) Enroll(student string, course *models.Course) {
	r.Open(student)
	r.studentCourses[student][course.ID] = struct{}{}
	course.AddStudent(student)
}

// Unenroll removes student from course on both sides of the relation
func (r *EnrollmentRepository) Unenroll(student string, course *models.Course) {
	delete(r.studentCourses[student], course.ID)
	course.RemoveStudent(student)
}

// Reset drops every enrollment. Used when a new catalog replaces the old one.
func (r *EnrollmentRepository) Reset() {
	for student := range r.studentCourses {
		r.studentCourses[student] = make(map[int]struct{})
	}
}
