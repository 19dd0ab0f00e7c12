package claims

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	patientNamePattern  = regexp.MustCompile(`^[A-Za-z ]+$`)
	policyNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// minClaimDate is the earliest date a claim may carry.
var minClaimDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Claim is the aggregate root for one patient/policy insurance claim. All
// operations are copy-on-write and perform no I/O; whether a mutation is
// legal for the claim's current status is the Repository's concern, which
// keeps the entity usable in tests without a policy layer.
type Claim struct {
	ID               string
	PatientName      string
	PolicyNumber     string
	ClaimDate        time.Time
	Bills            []Bill
	AdvancePaid      decimal.Decimal
	SettlementAmount decimal.Decimal
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewClaim creates a draft claim. The policy number is normalized to upper
// case. Bills may be nil for an empty claim.
func NewClaim(patientName, policyNumber string, claimDate time.Time, bills []Bill, advancePaid, settlementAmount decimal.Decimal) (Claim, error) {
	patientName = strings.TrimSpace(patientName)
	policyNumber = strings.ToUpper(strings.TrimSpace(policyNumber))

	if patientName == "" {
		return Claim{}, newValidationError("patient name", "must not be empty")
	}
	if !patientNamePattern.MatchString(patientName) {
		return Claim{}, newValidationError("patient name", "must contain only letters and spaces")
	}
	if policyNumber == "" {
		return Claim{}, newValidationError("policy number", "must not be empty")
	}
	if !policyNumberPattern.MatchString(policyNumber) {
		return Claim{}, newValidationError("policy number", "must be alphanumeric")
	}
	if err := validateClaimDate(claimDate); err != nil {
		return Claim{}, err
	}
	if advancePaid.IsNegative() {
		return Claim{}, newValidationError("advance paid", "must not be negative")
	}
	if settlementAmount.IsNegative() {
		return Claim{}, newValidationError("settlement amount", "must not be negative")
	}

	now := time.Now().UTC()
	c := Claim{
		ID:               uuid.NewString(),
		PatientName:      patientName,
		PolicyNumber:     policyNumber,
		ClaimDate:        claimDate,
		Bills:            append([]Bill(nil), bills...),
		AdvancePaid:      advancePaid,
		SettlementAmount: settlementAmount,
		Status:           StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return c, nil
}

func validateClaimDate(d time.Time) error {
	if d.IsZero() {
		return newValidationError("claim date", "must be set")
	}
	if d.After(time.Now().UTC()) {
		return newValidationError("claim date", "must not be in the future")
	}
	if d.Before(minClaimDate) {
		return newValidationError("claim date", "is before the earliest supported date")
	}
	return nil
}

// TotalBillAmount sums all bill amounts. Zero when the claim has no bills.
// Derived values are recomputed on every call and never stored.
func (c Claim) TotalBillAmount() decimal.Decimal {
	total := decimal.Zero
	for _, b := range c.Bills {
		total = total.Add(b.Amount)
	}
	return total
}

// PendingAmount is total billed minus advance minus settlement, floored at
// zero even when the payments overshoot the total.
func (c Claim) PendingAmount() decimal.Decimal {
	pending := c.TotalBillAmount().Sub(c.AdvancePaid).Sub(c.SettlementAmount)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// BillCount returns the number of bills on the claim.
func (c Claim) BillCount() int { return len(c.Bills) }

// IsFullySettled reports whether nothing remains to pay on a claim that has
// at least one bill.
func (c Claim) IsFullySettled() bool {
	return c.PendingAmount().IsZero() && c.TotalBillAmount().IsPositive()
}

// IsEditable reports whether the claim's fields may still change.
func (c Claim) IsEditable() bool { return c.Status.IsEditable() }

// ValidNextStatuses lists the statuses this claim may move to.
func (c Claim) ValidNextStatuses() []Status { return c.Status.ValidTransitions() }

// touch returns a copy with a fresh UpdatedAt and its own bills slice so
// snapshots never share backing arrays.
func (c Claim) touch() Claim {
	c.Bills = append([]Bill(nil), c.Bills...)
	c.UpdatedAt = time.Now().UTC()
	return c
}

// AddBill appends a bill, preserving insertion order.
func (c Claim) AddBill(b Bill) Claim {
	next := c.touch()
	next.Bills = append(next.Bills, b)
	return next
}

// UpdateBill replaces the bill with the same id in place. A bill id that is
// not present leaves the collection unchanged.
func (c Claim) UpdateBill(b Bill) Claim {
	next := c.touch()
	for i := range next.Bills {
		if next.Bills[i].ID == b.ID {
			next.Bills[i] = b
			break
		}
	}
	return next
}

// RemoveBill deletes the bill with the given id. Removing an absent id is a
// no-op; the second removal of the same id leaves the collection unchanged.
func (c Claim) RemoveBill(billID string) Claim {
	next := c.touch()
	kept := next.Bills[:0]
	for _, b := range next.Bills {
		if b.ID != billID {
			kept = append(kept, b)
		}
	}
	next.Bills = kept
	return next
}

// HasBill reports whether a bill with the given id exists on the claim.
func (c Claim) HasBill(billID string) bool {
	for _, b := range c.Bills {
		if b.ID == billID {
			return true
		}
	}
	return false
}

// WithStatus returns a copy in the new status. The transition itself is not
// validated here; the repository checks the workflow table.
func (c Claim) WithStatus(s Status) Claim {
	next := c.touch()
	next.Status = s
	return next
}

// WithAdvancePaid returns a copy with the advance replaced.
func (c Claim) WithAdvancePaid(amount decimal.Decimal) Claim {
	next := c.touch()
	next.AdvancePaid = amount
	return next
}

// WithSettlementAmount returns a copy with the settlement replaced.
func (c Claim) WithSettlementAmount(amount decimal.Decimal) Claim {
	next := c.touch()
	next.SettlementAmount = amount
	return next
}

// WithDetails returns a copy with the identity fields replaced, applying the
// same validation and normalization as NewClaim.
func (c Claim) WithDetails(patientName, policyNumber string, claimDate time.Time) (Claim, error) {
	validated, err := NewClaim(patientName, policyNumber, claimDate, nil, decimal.Zero, decimal.Zero)
	if err != nil {
		return Claim{}, err
	}
	next := c.touch()
	next.PatientName = validated.PatientName
	next.PolicyNumber = validated.PolicyNumber
	next.ClaimDate = validated.ClaimDate
	return next, nil
}
