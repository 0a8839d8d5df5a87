package history

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID           string          `json:"id"`
	PeriodStart  time.Time       `json:"periodStart"`
	PeriodEnd    time.Time       `json:"periodEnd"`
	Gross        decimal.Decimal `json:"gross"`
	Withheld     decimal.Decimal `json:"withheld"`
	Net          decimal.Decimal `json:"net"`
	FailureCount int             `json:"failureCount"`
	CreatedAt    time.Time       `json:"createdAt"`
}
