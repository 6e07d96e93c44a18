package matching

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Confidence tier cutoffs.
const (
	High           = 0.8
	Medium         = 0.6
	DefaultMinimum = 0.4
)

// Config holds the tunable scoring constants.
type Config struct {
	AmountWeight   float64
	DateWeight     float64
	MerchantWeight float64

	// An amount within max(AmountTolerancePct * |receipt|, AmountToleranceAbs)
	// is a near miss; anything further scores zero.
	AmountTolerancePct float64
	AmountToleranceAbs decimal.Decimal

	// Days apart (exclusive of same-day) that still score on the date term.
	DateWindowDays int

	// Best score any non-exact amount or date can reach.
	NearMissCeiling float64

	// Merchant score band for one name containing the other.
	ContainmentFloor   float64
	ContainmentCeiling float64
	// Best score an edit-distance-only merchant match can reach.
	FuzzyCeiling float64

	MinConfidence float64
	MaxResults    int
	// Ledger entries further than this from the receipt date are not candidates.
	MaxDaysApart int
}

func DefaultConfig() Config {
	return Config{
		AmountWeight:       0.5,
		DateWeight:         0.3,
		MerchantWeight:     0.2,
		AmountTolerancePct: 0.05,
		AmountToleranceAbs: decimal.RequireFromString("0.50"),
		DateWindowDays:     7,
		NearMissCeiling:    0.8,
		ContainmentFloor:   0.7,
		ContainmentCeiling: 0.9,
		FuzzyCeiling:       0.6,
		MinConfidence:      DefaultMinimum,
		MaxResults:         5,
		MaxDaysApart:       14,
	}
}

// Validate checks that the constants keep the ranking guarantees: exact
// beats near, containment beats fuzzy, and the hard financial facts weigh
// at least as much as merchant text.
func (c Config) Validate() error {
	if c.AmountWeight < 0 || c.DateWeight < 0 || c.MerchantWeight < 0 {
		return errors.New("weights must not be negative")
	}

	if c.AmountWeight+c.DateWeight+c.MerchantWeight == 0 {
		return errors.New("at least one weight must be positive")
	}

	if c.AmountWeight < c.MerchantWeight || c.DateWeight < c.MerchantWeight {
		return fmt.Errorf("amount (%.2f) and date (%.2f) weights must be at least the merchant weight (%.2f)",
			c.AmountWeight, c.DateWeight, c.MerchantWeight)
	}

	if c.AmountTolerancePct < 0 || c.AmountToleranceAbs.IsNegative() {
		return errors.New("amount tolerance must not be negative")
	}

	if c.DateWindowDays < 0 {
		return errors.New("date window must not be negative")
	}

	if c.NearMissCeiling <= 0 || c.NearMissCeiling >= 1 {
		return fmt.Errorf("near miss ceiling %.2f must be in (0,1)", c.NearMissCeiling)
	}

	if c.ContainmentCeiling >= 1 || c.ContainmentFloor > c.ContainmentCeiling {
		return errors.New("containment band must be ordered and below 1")
	}

	if c.FuzzyCeiling < 0 || c.FuzzyCeiling >= c.ContainmentFloor {
		return errors.New("fuzzy ceiling must be below the containment floor")
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence %.2f out of range", c.MinConfidence)
	}

	if c.MaxDaysApart < 0 {
		return errors.New("max days apart must not be negative")
	}

	return nil
}
