package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("receipt not found")
	// ErrSourceUnavailable marks failures to reach a receipt source at all
	// (transport errors, 5xx), as opposed to rejected requests.
	ErrSourceUnavailable = errors.New("receipt source unavailable")
)

// Source identifies where a receipt came from.
type Source string

const (
	SourceDigital Source = "digital"
	SourceScanned Source = "scanned"
)

func (s Source) Valid() bool {
	return s == SourceDigital || s == SourceScanned
}

// Status represents the lifecycle state of a receipt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing" // scanned only, OCR running
	StatusMatched    Status = "matched"
	StatusFailed     Status = "failed" // scanned only, OCR failed
	StatusIgnored    Status = "ignored"
)

// IsOpen reports whether the receipt still awaits a decision.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusProcessing
}

// ConfidenceLevel buckets an OCR score.
type ConfidenceLevel string

const (
	LevelNone   ConfidenceLevel = "none"
	LevelLow    ConfidenceLevel = "low"
	LevelMedium ConfidenceLevel = "medium"
	LevelHigh   ConfidenceLevel = "high"
)

// LevelFor buckets a score in [0,1].
func LevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return LevelHigh
	case score >= 0.6:
		return LevelMedium
	case score >= 0.4:
		return LevelLow
	default:
		return LevelNone
	}
}

// ExtractionConfidence describes how much the OCR engine trusts what it read.
type ExtractionConfidence struct {
	Merchant ConfidenceLevel
	Total    ConfidenceLevel
	Date     ConfidenceLevel
	Overall  *float64
}

// Key identifies a receipt across sources. IDs are only unique within a source.
type Key struct {
	Source Source
	ID     string
}

func (k Key) String() string {
	return string(k.Source) + ":" + k.ID
}

// ParseKey parses the form produced by Key.String.
func ParseKey(s string) (Key, error) {
	src, id, ok := strings.Cut(s, ":")
	if !ok || id == "" || !Source(src).Valid() {
		return Key{}, fmt.Errorf("invalid receipt key %q", s)
	}

	return Key{Source: Source(src), ID: id}, nil
}

// UnifiedReceipt is the canonical, source-agnostic receipt. Values are
// never mutated in place; a refresh replaces them wholesale.
type UnifiedReceipt struct {
	ID       string
	Source   Source
	Merchant string
	// Amount and Date are nil when the source did not provide a usable value.
	Amount   *decimal.Decimal
	Date     *time.Time // date of purchase, never the upload time
	Status   Status

	MatchConfidence        *float64
	SuggestedLedgerEntryID *uuid.UUID
	Extraction             *ExtractionConfidence // scanned only

	// Raw points back at the source record. Treat as read-only.
	Raw any
}

func (r UnifiedReceipt) Key() Key {
	return Key{Source: r.Source, ID: r.ID}
}

// WithMatch returns a copy of the receipt marked as matched to entryID.
func (r UnifiedReceipt) WithMatch(entryID uuid.UUID, confidence float64) UnifiedReceipt {
	r.Status = StatusMatched
	r.SuggestedLedgerEntryID = &entryID
	r.MatchConfidence = &confidence

	return r
}

// Validate checks the structural invariants of the canonical model.
func (r UnifiedReceipt) Validate() error {
	if !r.Source.Valid() {
		return fmt.Errorf("receipt %s: unknown source %q", r.ID, r.Source)
	}

	if r.Extraction != nil && r.Source != SourceScanned {
		return fmt.Errorf("receipt %s: extraction confidence on %s receipt", r.ID, r.Source)
	}

	if r.MatchConfidence != nil && (r.Status == StatusProcessing || r.Status == StatusFailed) {
		return fmt.Errorf("receipt %s: match confidence set while %s", r.ID, r.Status)
	}

	if r.Source == SourceDigital && (r.Status == StatusProcessing || r.Status == StatusFailed) {
		return fmt.Errorf("receipt %s: status %s only applies to scanned receipts", r.ID, r.Status)
	}

	return nil
}
