package claims

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	c, err := NewClaim("Jane Roe", "POL9", yesterday(),
		[]Bill{
			mustBill(t, "Room charges", 500),
			mustBill(t, "Surgery", 1200),
			mustBill(t, "Medication", 800),
		},
		decimal.NewFromInt(500), decimal.NewFromInt(100))
	require.NoError(t, err)
	c = c.WithStatus(StatusSubmitted)

	rec := toRecord(c)
	back, err := fromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, c.PatientName, back.PatientName)
	assert.Equal(t, c.PolicyNumber, back.PolicyNumber)
	assert.Equal(t, c.Status, back.Status)
	assert.True(t, back.AdvancePaid.Equal(c.AdvancePaid))
	assert.True(t, back.SettlementAmount.Equal(c.SettlementAmount))
	assert.Equal(t, billIDs(c), billIDs(back), "bill order survives the round trip")
	assert.True(t, back.TotalBillAmount().Equal(c.TotalBillAmount()))

	// A second encode yields an identical record.
	assert.Equal(t, rec, toRecord(back))
}

func TestRecordJSONFieldNames(t *testing.T) {
	c, err := NewClaim("Jane Roe", "POL9", yesterday(),
		[]Bill{mustBill(t, "Surgery", 1200)}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	data, err := json.Marshal(toRecord(c))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"id", "patientName", "policyNumber", "claimDate", "bills",
		"advancePaid", "settlementAmount", "status", "createdAt", "updatedAt",
	} {
		assert.Contains(t, m, key)
	}

	bills := m["bills"].([]any)
	bill := bills[0].(map[string]any)
	assert.Contains(t, bill, "description")
	assert.InDelta(t, 1200.0, bill["amount"], 0.0001, "amounts travel as numbers")
}

func TestFromRecordUnknownStatusDefaultsToDraft(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	rec := claimRecord{
		ID:           "claim-1",
		PatientName:  "Jane Roe",
		PolicyNumber: "POL9",
		ClaimDate:    now,
		Status:       "archived",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c, err := fromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, c.Status)

	rec.Status = ""
	c, err = fromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, c.Status)
}

func TestFromRecordBadTimestamp(t *testing.T) {
	rec := claimRecord{
		ID:        "claim-1",
		ClaimDate: "not-a-date",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := fromRecord(rec)
	require.Error(t, err)
}
