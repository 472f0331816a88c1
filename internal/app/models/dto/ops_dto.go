package dto

import "github.com/yigit/bgrs/internal/app/models"

// CourseResponse is the ops API view of a course
type CourseResponse struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Prerequisites  []int    `json:"prerequisites"`
	Capacity       int      `json:"capacity"`
	Enrolled       int      `json:"enrolled"`
	SeatsAvailable int      `json:"seatsAvailable"`
	Students       []string `json:"students"`
}

// StudentResponse is the ops API view of a student
type StudentResponse struct {
	Username string `json:"username"`
	Courses  []int  `json:"courses"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status        string `json:"status"`
	CatalogLoaded bool   `json:"catalogLoaded"`
	Courses       int    `json:"courses"`
	Connections   int    `json:"connections"`
	Sessions      int    `json:"sessions"`
}

// NewCourseResponse converts a course projection
func NewCourseResponse(stat *models.CourseStat) *CourseResponse {
	if stat == nil {
		return nil
	}
	return &CourseResponse{
		ID:             stat.ID,
		Name:           stat.Name,
		Prerequisites:  stat.Prerequisites,
		Capacity:       stat.Capacity,
		Enrolled:       stat.Enrolled,
		SeatsAvailable: stat.SeatsAvailable,
		Students:       stat.Students,
	}
}

// NewStudentResponse converts a student projection
func NewStudentResponse(stat *models.StudentStat) *StudentResponse {
	if stat == nil {
		return nil
	}
	return &StudentResponse{Username: stat.Username, Courses: stat.Courses}
}
