package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), ErrNotFound},
		{"pgx unique", &pgconn.PgError{Code: "23505", Detail: "Key (id)=(1) already exists."}, ErrUniqueViolation},
		{"pgx not null", &pgconn.PgError{Code: "23502", ColumnName: "label"}, ErrNotNullViolation},
		{"pgx check", &pgconn.PgError{Code: "23514"}, ErrCheckViolation},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, ErrForeignKeyViolation},
		{"pq unique", &pq.Error{Code: "23505"}, ErrUniqueViolation},
		{"pq not null", &pq.Error{Code: "23502", Column: "label"}, ErrNotNullViolation},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrUniqueViolation},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrUniqueViolation},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, ErrNotNullViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ConvertDBError(tt.err), tt.want)
		})
	}
}

func TestConvertDBError_Passthrough(t *testing.T) {
	assert.NoError(t, ConvertDBError(nil))

	other := errors.New("connection refused")
	assert.Same(t, other, ConvertDBError(other))

	pgOther := &pgconn.PgError{Code: "42P01"}
	assert.Same(t, pgOther, ConvertDBError(pgOther))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(ConvertDBError(sql.ErrNoRows)))
	assert.True(t, IsUniqueViolation(ConvertDBError(&pq.Error{Code: "23505"})))
	assert.True(t, IsValidationFailed(&ValidationError{}))
	assert.False(t, IsValidationFailed(ErrNotFound))
}
