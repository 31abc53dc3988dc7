package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/enumbler/internal/store"
)

func newTestStore() *Store {
	return New(store.Schema{Table: "colors", Columns: []string{"label", "hex"}, Required: []string{"label"}})
}

func TestStore_FindOrInitialize(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(1, map[string]any{"label": "black"}))

	rec, err := s.FindOrInitialize(ctx, 1)
	require.NoError(t, err)
	assert.False(t, rec.IsNew())
	assert.Equal(t, "black", rec.Attributes["label"])

	rec, err = s.FindOrInitialize(ctx, 2)
	require.NoError(t, err)
	assert.True(t, rec.IsNew())
	assert.Equal(t, 2, rec.ID)
}

func TestStore_Save(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	rec := store.NewRecord(2)
	rec.Assign(map[string]any{"id": 2, "label": "white"})
	require.NoError(t, s.Save(ctx, rec, true))
	assert.False(t, rec.IsNew())

	row, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": 2, "label": "white"}, row)
}

func TestStore_SaveValidation(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	rec := store.NewRecord(3)
	rec.Assign(map[string]any{"label": ""})
	err := s.Save(ctx, rec, true)
	assert.True(t, store.IsValidationFailed(err))
	assert.Empty(t, s.IDs())

	// Skipping validation writes anyway
	require.NoError(t, s.Save(ctx, rec, false))
	assert.Equal(t, []int{3}, s.IDs())
}

func TestStore_ListIDsAndDeleteAll(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	ids, err := s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []int{5, 1, 2} {
		require.NoError(t, s.Insert(id, map[string]any{"label": "x"}))
	}
	ids, err = s.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, ids)

	require.NoError(t, s.DeleteAll(ctx, []int{2, 5, 9}))
	assert.Equal(t, []int{1}, s.IDs())
}

func TestStore_InsertDuplicate(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Insert(1, nil))
	assert.True(t, store.IsUniqueViolation(s.Insert(1, nil)))
}

func TestStore_RowsAreCopies(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Insert(1, map[string]any{"label": "black"}))

	rows := s.Rows()
	rows[1]["label"] = "mutated"

	row, _ := s.Get(1)
	assert.Equal(t, "black", row["label"])
}
