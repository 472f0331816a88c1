package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

// PostgreSQL error codes the catalog reader reports on
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
)

// IsUndefinedTable checks if the error is a PostgreSQL undefined_table error
func IsUndefinedTable(err error) bool {
	return hasCode(err, codeUndefinedTable)
}

// IsUndefinedColumn checks if the error is a PostgreSQL undefined_column error, raised
// when the catalog table lacks one of the expected columns.
func IsUndefinedColumn(err error) bool {
	return hasCode(err, codeUndefinedColumn)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
