package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/enumbler/internal/store"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE colors (
		id INTEGER PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		hex TEXT
	)`)
	require.NoError(t, err)

	s, err := New(db, "sqlite3", colorsSchema())
	require.NoError(t, err)
	return s
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	rec, err := s.FindOrInitialize(ctx, 1)
	require.NoError(t, err)
	require.True(t, rec.IsNew())

	rec.Assign(map[string]any{"id": 1, "label": "black", "hex": "#000000"})
	require.NoError(t, s.Save(ctx, rec, true))

	loaded, err := s.FindOrInitialize(ctx, 1)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew())
	assert.Equal(t, "black", loaded.Attributes["label"])
	assert.False(t, loaded.Changed(map[string]any{"id": 1, "label": "black", "hex": "#000000"}))

	loaded.Assign(map[string]any{"hex": "#010101"})
	require.NoError(t, s.Save(ctx, loaded, true))

	again, err := s.FindOrInitialize(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "#010101", again.Attributes["hex"])

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	cols, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "label", "hex"}, cols)
}

func TestSQLite_UniqueViolation(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	first := store.NewRecord(1)
	first.Assign(map[string]any{"label": "black"})
	require.NoError(t, s.Save(ctx, first, true))

	second := store.NewRecord(2)
	second.Assign(map[string]any{"label": "black"})
	err := s.Save(ctx, second, true)
	assert.True(t, store.IsUniqueViolation(err))
}

func TestSQLite_TransactionRollback(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	err := s.WithTransaction(ctx, func(tx *Store) error {
		rec := store.NewRecord(1)
		rec.Assign(map[string]any{"label": "black"})
		if err := tx.Save(ctx, rec, true); err != nil {
			return err
		}
		dup := store.NewRecord(2)
		dup.Assign(map[string]any{"label": "black"})
		return tx.Save(ctx, dup, true)
	})
	require.Error(t, err)

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLite_DeleteAllBatches(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO colors (id, label) VALUES (1, 'black'), (40000, 'stale')`)
	require.NoError(t, err)

	// more ids than SQLite accepts bind parameters in one statement
	ids := make([]int, 0, 40000)
	for id := 2; id <= 40000; id++ {
		ids = append(ids, id)
	}
	require.NoError(t, s.DeleteAll(ctx, ids))

	left, err := s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, left)
}
