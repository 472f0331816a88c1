package repositories

import (
	"github.com/yigit/bgrs/internal/pkg/auth"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(hasher auth.PasswordHasher) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(hasher),
		CourseRepository:     NewCourseRepository(),
		EnrollmentRepository: NewEnrollmentRepository(),
	}
}
