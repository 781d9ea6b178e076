package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pgconn code", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pgconn other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "mysql driver", err: &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "mysql other", err: &mysqldriver.MySQLError{Number: 1213}, want: false},
		{name: "mysql message", err: errors.New("Error 1062: Duplicate entry"), want: true},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: invitations.team_id, invitations.email"), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestUnavailableWrapsOnce(t *testing.T) {
	assert.NoError(t, Unavailable(nil))

	base := errors.New("connection reset")
	wrapped := Unavailable(base)
	assert.ErrorIs(t, wrapped, ErrStoreUnavailable)
	assert.ErrorIs(t, wrapped, base)
	assert.Same(t, wrapped, Unavailable(wrapped))
}
