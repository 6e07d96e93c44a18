package matching

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// Tier is a named band of match confidence.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
	TierNone   Tier = "none"
)

// TierFor buckets a confidence. Anything under minimum is TierNone.
func TierFor(confidence, minimum float64) Tier {
	switch {
	case confidence >= High:
		return TierHigh
	case confidence >= Medium:
		return TierMedium
	case confidence >= minimum:
		return TierLow
	default:
		return TierNone
	}
}

// Breakdown shows how a confidence was reached.
type Breakdown struct {
	Amount     float64
	Date       float64
	Merchant   float64
	AmountDiff decimal.Decimal
	DaysApart  int
}

// Suggestion is a scored candidate link between a receipt and a ledger entry.
// It is recomputed on demand and never stored.
type Suggestion struct {
	LedgerEntryID uuid.UUID
	Confidence    float64
	Tier          Tier
	Entry         ledger.Entry // snapshot at scoring time
	Breakdown     Breakdown
}

// Matcher scores receipts against ledger entries. It does no I/O.
type Matcher struct {
	cfg  Config
	norm *Normalizer
}

func NewMatcher(cfg Config, norm *Normalizer) *Matcher {
	if norm == nil {
		norm = NewNormalizer(nil)
	}

	return &Matcher{cfg: cfg, norm: norm}
}

func (m *Matcher) Config() Config { return m.cfg }

func (m *Matcher) Normalizer() *Normalizer { return m.norm }

// FindMatches ranks entries by confidence, highest first. Entries that already
// carry a receipt are skipped, results below minConfidence are dropped and at
// most maxResults are returned (no limit when maxResults <= 0). Equal scores
// keep their input order.
func (m *Matcher) FindMatches(r receipt.UnifiedReceipt, entries []*ledger.Entry, minConfidence float64, maxResults int) []Suggestion {
	out := make([]Suggestion, 0, len(entries))

	for _, e := range entries {
		if e == nil || e.HasReceipt() {
			continue
		}

		s := m.Score(r, *e)
		if s.Confidence < minConfidence {
			continue
		}

		s.Tier = TierFor(s.Confidence, minConfidence)
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}

	return out
}

// BestMatch returns the top candidate if it reaches the medium tier.
func (m *Matcher) BestMatch(r receipt.UnifiedReceipt, entries []*ledger.Entry) (Suggestion, bool) {
	found := m.FindMatches(r, entries, Medium, 1)
	if len(found) == 0 {
		return Suggestion{}, false
	}

	return found[0], true
}

// Score computes the weighted confidence of a single pair.
func (m *Matcher) Score(r receipt.UnifiedReceipt, e ledger.Entry) Suggestion {
	amount, diff := m.amountScore(r.Amount, e.Amount)
	date, days := m.dateScore(r.Date, e.Date)
	merchant := max(m.merchantScore(r.Merchant, e.Description), m.merchantScore(r.Merchant, e.RawDescription))

	total := m.cfg.AmountWeight + m.cfg.DateWeight + m.cfg.MerchantWeight
	confidence := 0.0

	if total > 0 {
		confidence = (m.cfg.AmountWeight*amount + m.cfg.DateWeight*date + m.cfg.MerchantWeight*merchant) / total
	}

	return Suggestion{
		LedgerEntryID: e.ID,
		Confidence:    min(max(confidence, 0), 1),
		Tier:          TierNone,
		Entry:         e,
		Breakdown: Breakdown{
			Amount:     amount,
			Date:       date,
			Merchant:   merchant,
			AmountDiff: diff,
			DaysApart:  days,
		},
	}
}

// amountScore compares magnitudes; the ledger stores direction separately.
// A missing or zero receipt amount scores nothing.
func (m *Matcher) amountScore(receiptAmount *decimal.Decimal, entryAmount decimal.Decimal) (float64, decimal.Decimal) {
	if receiptAmount == nil {
		return 0, decimal.Zero
	}

	a, b := receiptAmount.Abs(), entryAmount.Abs()
	diff := a.Sub(b).Abs()

	if a.IsZero() {
		return 0, diff
	}

	if diff.IsZero() {
		return 1, diff
	}

	tol := decimal.Max(a.Mul(decimal.NewFromFloat(m.cfg.AmountTolerancePct)), m.cfg.AmountToleranceAbs)
	if tol.IsZero() || diff.GreaterThanOrEqual(tol) {
		return 0, diff
	}

	ratio := diff.Div(tol).InexactFloat64()

	return m.cfg.NearMissCeiling * (1 - ratio), diff
}

// dateScore returns -1 days when either side has no date.
func (m *Matcher) dateScore(receiptDate *time.Time, entryDate time.Time) (float64, int) {
	if receiptDate == nil || receiptDate.IsZero() || entryDate.IsZero() {
		return 0, -1
	}

	days := DaysApart(*receiptDate, entryDate)

	switch {
	case days == 0:
		return 1, 0
	case days > m.cfg.DateWindowDays:
		return 0, days
	default:
		w := float64(m.cfg.DateWindowDays)
		return m.cfg.NearMissCeiling * (w + 1 - float64(days)) / w, days
	}
}

func (m *Matcher) merchantScore(receiptMerchant, description string) float64 {
	a, b := m.norm.Normalize(receiptMerchant), m.norm.Normalize(description)
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}

	sim := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return m.cfg.ContainmentFloor + (m.cfg.ContainmentCeiling-m.cfg.ContainmentFloor)*sim
	}

	return m.cfg.FuzzyCeiling * sim
}

// DaysApart counts whole calendar days between two dates, ignoring time of day.
func DaysApart(a, b time.Time) int {
	d := calendarDay(a).Sub(calendarDay(b)).Hours() / 24
	if d < 0 {
		d = -d
	}

	return int(d + 0.5)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether both times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return calendarDay(a).Equal(calendarDay(b))
}
