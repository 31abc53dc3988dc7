package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Lifecycle(t *testing.T) {
	rec := NewRecord(3)
	assert.True(t, rec.IsNew())
	assert.True(t, rec.Changed(map[string]any{}))

	rec.Assign(map[string]any{"id": 3, "label": "black"})
	rec.MarkPersisted()
	assert.False(t, rec.IsNew())
	assert.Equal(t, []string{"id", "label"}, rec.Columns())
}

func TestRecord_Dirty(t *testing.T) {
	rec := LoadedRecord(1, map[string]any{"id": int64(1), "label": "black", "hex": "#000"})
	assert.Empty(t, rec.Dirty())

	rec.Assign(map[string]any{"id": 1, "label": "black", "hex": "#111", "rank": 2})
	assert.Equal(t, []string{"hex", "rank"}, rec.Dirty())

	rec.MarkPersisted()
	assert.Empty(t, rec.Dirty())
}

func TestRecord_AssignSyncsID(t *testing.T) {
	rec := NewRecord(0)
	rec.Assign(map[string]any{"id": int64(9)})
	assert.Equal(t, 9, rec.ID)
}

func TestRecord_Changed(t *testing.T) {
	rec := LoadedRecord(1, map[string]any{
		"id":    int64(1),
		"label": []byte("black"),
		"hex":   "#000000",
		"note":  nil,
	})

	assert.False(t, rec.Changed(map[string]any{"id": 1, "label": "black", "hex": "#000000"}))
	assert.False(t, rec.Changed(map[string]any{"note": nil}))
	assert.True(t, rec.Changed(map[string]any{"label": "white"}))
	assert.True(t, rec.Changed(map[string]any{"rank": 1}))
	assert.True(t, rec.Changed(map[string]any{"note": "x"}))
}

func TestRecord_ChangedStructuredValues(t *testing.T) {
	// shapes a JSON round trip or a JSON column hands back
	rec := LoadedRecord(1, map[string]any{
		"tags": []any{"warm", "dark"},
		"meta": map[string]any{"rank": float64(2), "rgb": []any{float64(0), float64(0), float64(0)}},
		"raw":  `{"rank": 2}`,
	})

	assert.False(t, rec.Changed(map[string]any{
		"tags": []string{"warm", "dark"},
		"meta": map[string]any{"rgb": []int{0, 0, 0}, "rank": 2},
		"raw":  map[string]any{"rank": 2},
	}))
	assert.True(t, rec.Changed(map[string]any{"tags": []string{"dark", "warm"}}))
	assert.True(t, rec.Changed(map[string]any{"meta": map[string]any{"rank": 3}}))
	assert.True(t, rec.Changed(map[string]any{"raw": map[string]any{"rank": 3}}))

	rec.Assign(map[string]any{"tags": []string{"warm", "dark"}})
	assert.Empty(t, rec.Dirty())

	// brackets in plain text stay plain text
	plain := LoadedRecord(2, map[string]any{"label": "[draft]"})
	assert.False(t, plain.Changed(map[string]any{"label": "[draft]"}))
	assert.True(t, plain.Changed(map[string]any{"label": "draft"}))
}

func TestSchema_Validate(t *testing.T) {
	schema := Schema{Table: "colors", Columns: []string{"label", "hex"}, Required: []string{"label"}}

	ok := LoadedRecord(1, map[string]any{"id": 1, "label": "black", "hex": "#000"})
	assert.NoError(t, schema.Validate(ok))

	blank := LoadedRecord(1, map[string]any{"id": 1, "label": "  "})
	err := schema.Validate(blank)
	require.Error(t, err)
	assert.True(t, IsValidationFailed(err))
	assert.Contains(t, err.Error(), "label: cannot be blank")

	unknown := LoadedRecord(0, map[string]any{"shade": "x"})
	err = schema.Validate(unknown)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestSchema_PK(t *testing.T) {
	assert.Equal(t, "id", Schema{}.PK())
	assert.Equal(t, "code", Schema{PrimaryKey: "code"}.PK())
}
