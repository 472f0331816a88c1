package seed

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/services"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
	"github.com/yigit/bgrs/internal/pkg/dberrors"
	"github.com/yigit/bgrs/internal/pkg/metrics"
)

// CatalogSource yields the course catalog in load order
type CatalogSource interface {
	Load(ctx context.Context) ([]*models.Course, error)
	// Describe names the source in logs
	Describe() string
}

// FileSource reads a Courses.txt style file
type FileSource struct {
	Path string
}

// Load implements CatalogSource
func (s FileSource) Load(ctx context.Context) ([]*models.Course, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	courses, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return courses, nil
}

// Describe implements CatalogSource
func (s FileSource) Describe() string {
	return "file:" + s.Path
}

// Querier is the part of a pgx pool the postgres source needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the catalog from a table with the columns
// course_id, name, prerequisites, capacity and position. Prerequisites use the same
// bracket notation as the catalog file.
type PostgresSource struct {
	DB    Querier
	Table string
}

// Load implements CatalogSource
func (s PostgresSource) Load(ctx context.Context) ([]*models.Course, error) {
	query := fmt.Sprintf(
		"SELECT course_id, name, prerequisites, capacity FROM %s ORDER BY position",
		pgx.Identifier{s.Table}.Sanitize(),
	)
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		switch {
		case dberrors.IsUndefinedTable(err):
			return nil, fmt.Errorf("catalog table %q does not exist: %w", s.Table, err)
		case dberrors.IsUndefinedColumn(err):
			return nil, fmt.Errorf("catalog table %q lacks an expected column: %w", s.Table, err)
		}
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	row := 0
	for rows.Next() {
		row++
		var (
			id, capacity  int
			name, prereqs string
		)
		if err := rows.Scan(&id, &name, &prereqs, &capacity); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row %d: %w", row, err)
		}
		// Course numbers travel as u16 on the wire.
		if id < 0 || id > math.MaxUint16 {
			return nil, fmt.Errorf("row %d: %w: bad course number %d", row, apperrors.ErrCatalogInvalid, id)
		}
		prerequisites, err := ParsePrerequisites(prereqs)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		courses = append(courses, models.NewCourse(id, name, prerequisites, capacity))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	return courses, nil
}

// Describe implements CatalogSource
func (s PostgresSource) Describe() string {
	return "postgres:" + s.Table
}

// LoadCatalog reads src and hands the courses to the engine. m may be nil.
func LoadCatalog(ctx context.Context, src CatalogSource, svc services.RegistrationService, m *metrics.Metrics, lgr zerolog.Logger) error {
	lgr.Info().Str("source", src.Describe()).Msg("Loading course catalog...")

	courses, err := src.Load(ctx)
	if err != nil {
		lgr.Error().Err(err).Str("source", src.Describe()).Msg("Failed to read course catalog")
		return err
	}
	if err := svc.LoadCatalog(courses); err != nil {
		return fmt.Errorf("failed to load catalog from %s: %w", src.Describe(), err)
	}
	if m != nil {
		m.Courses.Set(float64(svc.CourseCount()))
	}

	lgr.Info().Int("courses", svc.CourseCount()).Msg("Course catalog loaded")
	return nil
}
