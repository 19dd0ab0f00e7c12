package claims

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "claims.json"))
	claims, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "claims.json")
	store := NewFileStore(path)

	c, err := NewClaim("John Doe", "POL1", yesterday(),
		[]Bill{mustBill(t, "Surgery", 1200)}, decimal.NewFromInt(300), decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, store.SaveAll([]Claim{c}))

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, c.ID, loaded[0].ID)
	assert.Equal(t, "John Doe", loaded[0].PatientName)
	assert.True(t, loaded[0].TotalBillAmount().Equal(decimal.NewFromInt(1200)))
	assert.True(t, loaded[0].AdvancePaid.Equal(decimal.NewFromInt(300)))
}

func TestFileStoreSaveReplacesPreviousContents(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "claims.json"))

	first, err := NewClaim("John Doe", "POL1", yesterday(), nil, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, store.SaveAll([]Claim{first}))
	require.NoError(t, store.SaveAll(nil))

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store := NewFileStore(path)
	_, err := store.LoadAll()
	assert.Error(t, err)
}
