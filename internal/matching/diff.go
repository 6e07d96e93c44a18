package matching

import (
	"time"

	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// Field is a ledger field a confirmed receipt can overwrite.
type Field string

const (
	FieldMerchant Field = "merchant"
	FieldAmount   Field = "amount"
	FieldDate     Field = "date"
)

var Fields = []Field{FieldMerchant, FieldAmount, FieldDate}

func (f Field) Valid() bool {
	return f == FieldMerchant || f == FieldAmount || f == FieldDate
}

// FieldDifference is a display-ready pair of differing values.
type FieldDifference struct {
	Field        Field
	ReceiptValue string
	LedgerValue  string
}

// Diff lists the fields where receipt and entry disagree, comparing merchant
// text normalized, amounts exactly and dates by calendar day. Fields the
// receipt does not carry are never reported.
func (m *Matcher) Diff(r receipt.UnifiedReceipt, e ledger.Entry) []FieldDifference {
	var out []FieldDifference

	if r.Merchant != "" && m.norm.Normalize(r.Merchant) != m.norm.Normalize(e.Description) {
		out = append(out, FieldDifference{
			Field:        FieldMerchant,
			ReceiptValue: r.Merchant,
			LedgerValue:  e.Description,
		})
	}

	if r.Amount != nil && !r.Amount.Abs().Equal(e.Amount.Abs()) {
		out = append(out, FieldDifference{
			Field:        FieldAmount,
			ReceiptValue: r.Amount.StringFixed(2),
			LedgerValue:  e.Amount.StringFixed(2),
		})
	}

	if r.Date != nil && !SameDay(*r.Date, e.Date) {
		out = append(out, FieldDifference{
			Field:        FieldDate,
			ReceiptValue: r.Date.Format(time.DateOnly),
			LedgerValue:  e.Date.Format(time.DateOnly),
		})
	}

	return out
}
