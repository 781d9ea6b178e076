package db

import (
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrStoreUnavailable marks failures of the backing store itself. Callers
// propagate it unchanged; nothing in the service layer retries it.
var ErrStoreUnavailable = errors.New("store_unavailable")

// Unavailable wraps err with ErrStoreUnavailable. Nil stays nil and errors
// that already carry the marker are returned as is.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailedTx = "UNIQUE constraint failed"
)

// IsDuplicateKeyErr reports unique-constraint violations from any of the
// supported drivers, translated by gorm or not.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	// The sqlite drivers only expose the message.
	msg := err.Error()
	return strings.Contains(msg, sqliteUniqueFailedTx) ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Error 1062")
}
