package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindFlat        = "flat"
	KindProgressive = "progressive"
	KindComposite   = "composite"

	PolicySum        = "sum"
	PolicySequential = "sequential"

	RoundingHalfUp  = "half_up"
	RoundingBankers = "bankers"
)

// Bracket is one row of a progressive rate table. Upper is the exclusive
// upper bound of the bracket; nil means the bracket is unbounded and must be
// the final row.
type Bracket struct {
	Upper *decimal.Decimal `json:"upper"`
	Rate  decimal.Decimal  `json:"rate"`
}

type RuleBody struct {
	Kind       string          `json:"kind"`
	Rate       decimal.Decimal `json:"rate,omitempty"`
	Brackets   []Bracket       `json:"brackets,omitempty"`
	Components []string        `json:"components,omitempty"`
	Policy     string          `json:"policy,omitempty"`
}

// RuleDocument describes one jurisdiction's withholding rules for one
// effective window [EffectiveStart, EffectiveEnd). A nil EffectiveEnd means
// the document is in force indefinitely. Documents are immutable once
// registered.
type RuleDocument struct {
	Jurisdiction   string     `json:"jurisdiction"`
	SchemaVersion  string     `json:"schemaVersion"`
	EffectiveStart time.Time  `json:"effectiveStart"`
	EffectiveEnd   *time.Time `json:"effectiveEnd,omitempty"`
	Rounding       string     `json:"rounding,omitempty"`
	Rule           RuleBody   `json:"rule"`
}

// InForce reports whether the document's effective window contains date.
func (d *RuleDocument) InForce(date time.Time) bool {
	if date.Before(d.EffectiveStart) {
		return false
	}
	return d.EffectiveEnd == nil || date.Before(*d.EffectiveEnd)
}
