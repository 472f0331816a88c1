// Package seed loads the course catalog into the registration engine at startup.
// Records use the Courses.txt layout: id|name|[prerequisites]|capacity.
package seed

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
)

const fieldSeparator = "|"

// ParseCourseLine parses a single catalog record
func ParseCourseLine(line string) (*models.Course, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: expected 4 fields, got %d", apperrors.ErrCatalogInvalid, len(fields))
	}

	id, err := parseCourseID(fields[0])
	if err != nil {
		return nil, err
	}
	prerequisites, err := ParsePrerequisites(fields[2])
	if err != nil {
		return nil, err
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad capacity %q", apperrors.ErrCatalogInvalid, fields[3])
	}

	return models.NewCourse(id, fields[1], prerequisites, capacity), nil
}

// ParsePrerequisites parses the bracket notation used for prerequisite lists: [] or [a,b,...]
func ParsePrerequisites(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: bad prerequisite list %q", apperrors.ErrCatalogInvalid, s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []int{}, nil
	}

	parts := strings.Split(inner, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := parseCourseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseCourseID accepts only numbers that fit the two-byte course field of the wire format
func parseCourseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 || id > math.MaxUint16 {
		return 0, fmt.Errorf("%w: bad course number %q", apperrors.ErrCatalogInvalid, s)
	}
	return id, nil
}

// ParseCatalog reads catalog records from r, one per line. Blank lines are skipped and
// the first bad record aborts the parse.
func ParseCatalog(r io.Reader) ([]*models.Course, error) {
	var courses []*models.Course
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		course, err := ParseCourseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		courses = append(courses, course)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return courses, nil
}
