package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/enumbler/internal/store"
)

func colorsSchema() store.Schema {
	return store.Schema{Table: "colors", Columns: []string{"label", "hex"}, Required: []string{"label"}}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, "pgx", colorsSchema())
	require.NoError(t, err)
	return s, mock
}

func TestNew_Errors(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, "mysql", colorsSchema())
	assert.Error(t, err)

	_, err = New(db, "pgx", store.Schema{})
	assert.Error(t, err)
}

func TestFindOrInitialize_Existing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "colors" WHERE "id" = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "hex"}).AddRow(1, []byte("black"), "#000000"))

	rec, err := s.FindOrInitialize(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, rec.IsNew())
	assert.Equal(t, "black", rec.Attributes["label"])
	assert.Equal(t, "#000000", rec.Attributes["hex"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrInitialize_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "colors" WHERE "id" = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "hex"}))

	rec, err := s.FindOrInitialize(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, rec.IsNew())
	assert.Equal(t, 3, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Insert(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.NewRecord(3)
	rec.Assign(map[string]any{"id": 3, "label": "grey", "hex": "#888888"})

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "colors" ("hex", "id", "label") VALUES ($1, $2, $3)`)).
		WithArgs("#888888", 3, "grey").
		WillReturnResult(sqlmock.NewResult(3, 1))

	require.NoError(t, s.Save(context.Background(), rec, true))
	assert.False(t, rec.IsNew())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UpdateDirtyColumnsOnly(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.LoadedRecord(1, map[string]any{"id": int64(1), "label": "black", "hex": "#111111"})
	rec.Assign(map[string]any{"id": 1, "label": "black", "hex": "#000000"})

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "colors" SET "hex" = $1 WHERE "id" = $2`)).
		WithArgs("#000000", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), rec, true))
	assert.Empty(t, rec.Dirty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UnchangedIsNoop(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.LoadedRecord(1, map[string]any{"id": int64(1), "label": "black"})
	rec.Assign(map[string]any{"id": 1, "label": "black"})

	require.NoError(t, s.Save(context.Background(), rec, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UpdateMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.LoadedRecord(1, map[string]any{"id": 1, "label": "black"})
	rec.Assign(map[string]any{"label": "noir"})

	mock.ExpectExec(`UPDATE "colors"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Save(context.Background(), rec, false)
	assert.True(t, store.IsNotFound(err))
}

func TestSave_ValidationFailure(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.NewRecord(4)
	rec.Assign(map[string]any{"id": 4, "label": ""})

	err := s.Save(context.Background(), rec, true)
	assert.True(t, store.IsValidationFailed(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_ConvertsConstraintErrors(t *testing.T) {
	s, mock := newMockStore(t)

	rec := store.NewRecord(4)
	rec.Assign(map[string]any{"id": 4, "label": "black"})

	mock.ExpectExec(`INSERT INTO "colors"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (label)=(black) already exists."})

	err := s.Save(context.Background(), rec, true)
	assert.True(t, store.IsUniqueViolation(err))
	assert.True(t, rec.IsNew())
}

func TestListIDs(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "colors" ORDER BY "id"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(5))

	ids, err := s.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAll(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "colors" WHERE "id" IN ($1, $2)`)).
		WithArgs(4, 5).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.DeleteAll(context.Background(), []int{4, 5}))
	require.NoError(t, s.DeleteAll(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumns(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "colors" WHERE 1 = 0`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "hex"}))

	cols, err := s.Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "label", "hex"}, cols)
}

func TestWithTransaction_Commit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "colors"`).WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTransaction(context.Background(), func(tx *Store) error {
		return tx.DeleteAll(context.Background(), []int{9})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Rollback(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.WithTransaction(context.Background(), func(tx *Store) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Nested(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := s.WithTransaction(context.Background(), func(tx *Store) error {
		return tx.WithTransaction(context.Background(), func(inner *Store) error {
			calls++
			assert.Same(t, tx, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialect(t *testing.T) {
	d, err := DialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "?, ?, ?", d.Placeholders(1, 3))

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "$2, $3", d.Placeholders(2, 2))

	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}
