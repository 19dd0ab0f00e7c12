package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/claimdesk/internal/claims"
)

func sampleClaim(t *testing.T) claims.Claim {
	t.Helper()
	surgery, err := claims.NewBill("Surgery", decimal.NewFromInt(1200))
	require.NoError(t, err)
	pharmacy, err := claims.NewBill("Pharmacy", decimal.NewFromFloat(350.5))
	require.NoError(t, err)

	claimDate := time.Now().UTC().AddDate(0, 0, -3)
	c, err := claims.NewClaim("John Doe", "POL12345", claimDate,
		[]claims.Bill{surgery, pharmacy}, decimal.NewFromInt(300), decimal.Zero)
	require.NoError(t, err)
	return c
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	data, err := WriteCSV(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestWriteCSVRows(t *testing.T) {
	c := sampleClaim(t)

	data, err := WriteCSV([]claims.Claim{c})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, c.ID, row[0])
	assert.Equal(t, "John Doe", row[1])
	assert.Equal(t, "POL12345", row[2])
	assert.Equal(t, "Draft", row[4])
	assert.Equal(t, "1550.50", row[5])
	assert.Equal(t, "300.00", row[6])
	assert.Equal(t, "0.00", row[7])
	assert.Equal(t, "1250.50", row[8])
	assert.Equal(t, "2", row[9])

	_, err = time.Parse(time.RFC3339, row[10])
	assert.NoError(t, err, "created at is RFC3339")
}

func TestWriteCSVMultipleRows(t *testing.T) {
	data, err := WriteCSV([]claims.Claim{sampleClaim(t), sampleClaim(t)})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, row, len(csvHeader), "every row carries the full column set")
	}
}
