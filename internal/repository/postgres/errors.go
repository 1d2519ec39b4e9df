package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgStorageFullError reports disk_full (53100) and program_limit_exceeded
// (54000), the errors a write gets when the database cannot hold the value.
func IsPgStorageFullError(err error) bool {
	return hasPgCode(err, "53100") || hasPgCode(err, "54000")
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
