package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("ledger entry not found")

// Type represents the direction of a ledger entry.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Entry is a single line of the budgeting ledger.
// Amount is always positive; Type carries the sign.
type Entry struct {
	ID             uuid.UUID
	Amount         decimal.Decimal
	Type           Type
	Description    string
	RawDescription string
	Date           time.Time
	Reconciled     bool
	ReceiptRef     *string // Set once a receipt has been linked
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// HasReceipt reports whether a receipt is already attached to the entry.
func (e *Entry) HasReceipt() bool {
	return e.ReceiptRef != nil && *e.ReceiptRef != ""
}

// Patch lists the fields a confirmed match may overwrite.
// Nil fields are left untouched.
type Patch struct {
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
}

// IsEmpty reports whether the patch would not change anything.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Date == nil
}

// Apply returns a copy of the entry with the patch applied.
func (p Patch) Apply(e Entry) Entry {
	if p.Description != nil {
		e.Description = *p.Description
	}

	if p.Amount != nil {
		e.Amount = *p.Amount
	}

	if p.Date != nil {
		e.Date = *p.Date
	}

	return e
}
