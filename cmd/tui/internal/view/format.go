package view

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const requestTimeout = 30 * time.Second

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatOptionalAmount renders a missing amount as a dash.
func FormatOptionalAmount(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}

	return FormatAmount(*d)
}

// FormatDate formats a time.Time into YYYY-MM-DD. Unknown dates render as a dash.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.DateOnly)
}

func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return FormatDate(*t)
}

func FormatConfidence(c *float64) string {
	if c == nil {
		return "-"
	}

	return FormatPercent(*c)
}

func FormatPercent(c float64) string {
	return fmt.Sprintf("%.0f%%", c*100)
}

// RequestCtx returns a context with a standard timeout for engine calls.
func RequestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
