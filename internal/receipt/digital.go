package receipt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DigitalReceipt is a receipt as delivered by the remote digital feed.
type DigitalReceipt struct {
	ID                   string          `json:"id"`
	Merchant             string          `json:"merchant"`
	Amount               decimal.Decimal `json:"amount"`
	Date                 time.Time       `json:"date"`
	Category             string          `json:"category,omitempty"`
	Description          string          `json:"description,omitempty"`
	Status               string          `json:"status"`
	MatchedTransactionID *string         `json:"matchedTransactionId,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// FromDigital converts a digital feed record into the canonical receipt.
func FromDigital(d DigitalReceipt) UnifiedReceipt {
	raw := d

	r := UnifiedReceipt{
		ID:                     d.ID,
		Source:                 SourceDigital,
		Merchant:               strings.TrimSpace(d.Merchant),
		Amount:                 new(d.Amount),
		Status:                 digitalStatus(d.Status),
		SuggestedLedgerEntryID: parseEntryID(d.MatchedTransactionID),
		Raw:                    &raw,
	}

	if !d.Date.IsZero() {
		r.Date = new(d.Date)
	}

	return r
}

// digitalStatus passes feed statuses through. Anything the feed can't
// legitimately report for a digital receipt is read as pending.
func digitalStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusMatched, StatusIgnored:
		return st
	default:
		return StatusPending
	}
}

func parseEntryID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}

	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}

	return &id
}
