package claims

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// billRecord is the wire/storage shape of a bill. Field names are part of
// the persisted-data contract and must not change.
type billRecord struct {
	ID          string  `json:"id" dynamodbav:"id"`
	Description string  `json:"description" dynamodbav:"description"`
	Amount      float64 `json:"amount" dynamodbav:"amount"`
	CreatedAt   string  `json:"createdAt" dynamodbav:"createdAt"`
}

// claimRecord is the wire/storage shape of a claim. Timestamps travel as
// RFC 3339 strings and amounts as plain numbers, matching what the SPA
// already has persisted.
type claimRecord struct {
	ID               string       `json:"id" dynamodbav:"id"`
	PatientName      string       `json:"patientName" dynamodbav:"patientName"`
	PolicyNumber     string       `json:"policyNumber" dynamodbav:"policyNumber"`
	ClaimDate        string       `json:"claimDate" dynamodbav:"claimDate"`
	Bills            []billRecord `json:"bills" dynamodbav:"bills"`
	AdvancePaid      float64      `json:"advancePaid" dynamodbav:"advancePaid"`
	SettlementAmount float64      `json:"settlementAmount" dynamodbav:"settlementAmount"`
	Status           string       `json:"status" dynamodbav:"status"`
	CreatedAt        string       `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        string       `json:"updatedAt" dynamodbav:"updatedAt"`
}

func toRecord(c Claim) claimRecord {
	bills := make([]billRecord, 0, len(c.Bills))
	for _, b := range c.Bills {
		bills = append(bills, billRecord{
			ID:          b.ID,
			Description: b.Description,
			Amount:      b.Amount.InexactFloat64(),
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return claimRecord{
		ID:               c.ID,
		PatientName:      c.PatientName,
		PolicyNumber:     c.PolicyNumber,
		ClaimDate:        c.ClaimDate.UTC().Format(time.RFC3339),
		Bills:            bills,
		AdvancePaid:      c.AdvancePaid.InexactFloat64(),
		SettlementAmount: c.SettlementAmount.InexactFloat64(),
		Status:           string(c.Status),
		CreatedAt:        c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func fromRecord(rec claimRecord) (Claim, error) {
	claimDate, err := parseRecordTime("claimDate", rec.ClaimDate)
	if err != nil {
		return Claim{}, err
	}
	createdAt, err := parseRecordTime("createdAt", rec.CreatedAt)
	if err != nil {
		return Claim{}, err
	}
	updatedAt, err := parseRecordTime("updatedAt", rec.UpdatedAt)
	if err != nil {
		return Claim{}, err
	}

	bills := make([]Bill, 0, len(rec.Bills))
	for _, br := range rec.Bills {
		billCreated, err := parseRecordTime("bill createdAt", br.CreatedAt)
		if err != nil {
			return Claim{}, err
		}
		bills = append(bills, Bill{
			ID:          br.ID,
			Description: br.Description,
			Amount:      decimal.NewFromFloat(br.Amount),
			CreatedAt:   billCreated,
		})
	}

	return Claim{
		ID:               rec.ID,
		PatientName:      rec.PatientName,
		PolicyNumber:     rec.PolicyNumber,
		ClaimDate:        claimDate,
		Bills:            bills,
		AdvancePaid:      decimal.NewFromFloat(rec.AdvancePaid),
		SettlementAmount: decimal.NewFromFloat(rec.SettlementAmount),
		Status:           ParseStatus(rec.Status),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func parseRecordTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("claims: failed to parse %s %q: %w", field, value, err)
	}
	return t.UTC(), nil
}
