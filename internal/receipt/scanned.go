package receipt

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ScannedReceipt is a receipt produced by the OCR scan pipeline. Anything
// read off the image is optional: OCR may still be running or may have
// failed to find the field.
type ScannedReceipt struct {
	ID            string     `json:"id"`
	JobStatus     string     `json:"jobStatus"`
	Status        string     `json:"status"`
	Merchant      *string    `json:"merchant,omitempty"`
	Total         *string    `json:"total,omitempty"`
	Date          *string    `json:"date,omitempty"`
	TransactionID *string    `json:"transactionId,omitempty"`
	OCR           *OCRResult `json:"ocr,omitempty"`
	FileName      string     `json:"fileName,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// OCRResult holds the raw scores reported by the OCR engine.
type OCRResult struct {
	Confidence *float64    `json:"confidence,omitempty"`
	Fields     FieldScores `json:"fieldConfidence"`
}

type FieldScores struct {
	Merchant *float64 `json:"merchant,omitempty"`
	Total    *float64 `json:"total,omitempty"`
	Date     *float64 `json:"date,omitempty"`
}

// FromScanned converts a scan pipeline record into the canonical receipt.
// Missing or malformed fields stay absent rather than defaulting to zero.
func FromScanned(s ScannedReceipt) UnifiedReceipt {
	raw := s

	r := UnifiedReceipt{
		ID:                     s.ID,
		Source:                 SourceScanned,
		Status:                 scannedStatus(s.JobStatus, s.Status),
		SuggestedLedgerEntryID: parseEntryID(s.TransactionID),
		Raw:                    &raw,
	}

	if s.Merchant != nil {
		r.Merchant = strings.TrimSpace(*s.Merchant)
	}

	if s.Total != nil {
		if amount, ok := parseAmount(*s.Total); ok {
			r.Amount = &amount
		}
	}

	if s.Date != nil {
		if d, ok := parseDate(*s.Date); ok {
			r.Date = &d
		}
	}

	if s.OCR != nil {
		overall := normalizeScore(s.OCR.Confidence)
		r.Extraction = &ExtractionConfidence{
			Merchant: levelOf(s.OCR.Fields.Merchant),
			Total:    levelOf(s.OCR.Fields.Total),
			Date:     levelOf(s.OCR.Fields.Date),
			Overall:  overall,
		}

		if overall != nil && r.Status != StatusProcessing && r.Status != StatusFailed {
			r.MatchConfidence = overall
		}
	}

	return r
}

func scannedStatus(job, status string) Status {
	switch strings.ToLower(strings.TrimSpace(job)) {
	case "queued", "uploading", "processing", "running":
		return StatusProcessing
	case "failed", "error":
		return StatusFailed
	}

	switch st := Status(strings.ToLower(strings.TrimSpace(status))); st {
	case StatusMatched, StatusIgnored:
		return st
	default:
		return StatusPending
	}
}

func levelOf(score *float64) ConfidenceLevel {
	n := normalizeScore(score)
	if n == nil {
		return LevelNone
	}

	return LevelFor(*n)
}

// normalizeScore accepts scores on a 0..1 or 0..100 scale and returns nil
// for anything that isn't a usable score.
func normalizeScore(score *float64) *float64 {
	if score == nil {
		return nil
	}

	v := *score
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return nil
	}

	if v > 1 {
		v /= 100
	}

	return &v
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount reads OCR'd totals such as "$12.34", "12,34 €" or "1,234.56".
// The right-most separator followed by one or two digits is the decimal point.
func parseAmount(s string) (decimal.Decimal, bool) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	if clean == "" {
		return decimal.Decimal{}, false
	}

	sep := strings.LastIndexAny(clean, ".,")
	if sep >= 0 && len(clean)-sep-1 <= 2 {
		intPart := strings.NewReplacer(".", "", ",", "").Replace(clean[:sep])
		clean = intPart + "." + clean[sep+1:]
	} else {
		clean = strings.NewReplacer(".", "", ",", "").Replace(clean)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}
