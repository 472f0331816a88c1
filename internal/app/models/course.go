package models

import "sort"

// Course is a catalog entry. ID, Name, Prerequisites and Capacity are fixed once the
// catalog is loaded; only the roster changes at runtime.
type Course struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Prerequisites []int  `json:"prerequisites"`
	Capacity      int    `json:"capacity"`

	roster map[string]struct{}
}

// NewCourse creates a course with an empty roster
func NewCourse(id int, name string, prerequisites []int, capacity int) *Course {
	if prerequisites == nil {
		prerequisites = []int{}
	}
	return &Course{
		ID:            id,
		Name:          name,
		Prerequisites: prerequisites,
		Capacity:      capacity,
		roster:        make(map[string]struct{}),
	}
}

// Enrolled returns the current roster size
func (c *Course) Enrolled() int {
	return len(c.roster)
}

// Full reports whether no seat is left.
func (c *Course) Full() bool {
	return len(c.roster) >= c.Capacity
}

// SeatsAvailable returns the number of free seats, never negative
func (c *Course) SeatsAvailable() int {
	if free := c.Capacity - len(c.roster); free > 0 {
		return free
	}
	return 0
}

// HasStudent reports whether username is on the roster
func (c *Course) HasStudent(username string) bool {
	_, ok := c.roster[username]
	return ok
}

// AddStudent puts username on the roster
func (c *Course) AddStudent(username string) {
	if c.roster == nil {
		c.roster = make(map[string]struct{})
	}
	c.roster[username] = struct{}{}
}

// RemoveStudent takes username off the roster
func (c *Course) RemoveStudent(username string) {
	delete(c.roster, username)
}

// Students returns the roster sorted alphabetically
func (c *Course) Students() []string {
	students := make([]string, 0, len(c.roster))
	for s := range c.roster {
		students = append(students, s)
	}
	sort.Strings(students)
	return students
}

// CourseStat is the read-only projection returned by COURSESTAT
type CourseStat struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Prerequisites  []int    `json:"prerequisites"`
	Capacity       int      `json:"capacity"`
	Enrolled       int      `json:"enrolled"`
	SeatsAvailable int      `json:"seatsAvailable"`
	Students       []string `json:"students"`
}

// StudentStat is the read-only projection returned by STUDENTSTAT
type StudentStat struct {
	Username string `json:"username"`
	Courses  []int  `json:"courses"`
}
