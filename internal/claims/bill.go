package claims

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minBillDescriptionLen = 3

// Bill is a single billable line item attached to a claim. Bills are value
// objects: once created they are never mutated in place, only replaced.
type Bill struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// NewBill creates a bill line item. The description must carry at least
// three characters and the amount must not be negative.
func NewBill(description string, amount decimal.Decimal) (Bill, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Bill{}, newValidationError("bill description", "must not be empty")
	}
	if utf8.RuneCountInString(description) < minBillDescriptionLen {
		return Bill{}, newValidationError("bill description", "must be at least 3 characters")
	}
	if amount.IsNegative() {
		return Bill{}, newValidationError("bill amount", "must not be negative")
	}

	return Bill{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// WithChanges returns a copy with the description and amount replaced,
// preserving ID and CreatedAt. The same validation as NewBill applies.
func (b Bill) WithChanges(description string, amount decimal.Decimal) (Bill, error) {
	next, err := NewBill(description, amount)
	if err != nil {
		return Bill{}, err
	}
	next.ID = b.ID
	next.CreatedAt = b.CreatedAt
	return next, nil
}

// Equal reports value equality by id, description, and amount.
func (b Bill) Equal(other Bill) bool {
	return b.ID == other.ID &&
		b.Description == other.Description &&
		b.Amount.Equal(other.Amount)
}
