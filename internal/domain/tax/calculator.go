package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// minorUnitPlaces is the rounding precision for final withheld amounts.
const minorUnitPlaces = 2

// Resolver supplies the document in force for a jurisdiction on a date.
// *Registry satisfies it.
type Resolver interface {
	Resolve(jurisdiction string, date time.Time) (*RuleDocument, error)
}

// Env is the context a calculator evaluates in. Composite rules use it to
// resolve their component documents against the same effective date as the
// parent.
type Env struct {
	Rules Resolver
	On    time.Time
}

// Contribution is one document's share of a withholding amount.
type Contribution struct {
	Jurisdiction string
	Version      string
	Amount       decimal.Decimal
}

// Withholding is the unrounded output of a calculator.
type Withholding struct {
	Amount decimal.Decimal
	Parts  []Contribution
}

// Calculator computes withholding for one rule kind. Implementations must
// not fail for documents that passed Validate, except for composite rules
// whose components cannot be resolved.
type Calculator interface {
	Kind() string
	Withhold(env Env, taxableGross decimal.Decimal, doc *RuleDocument) (Withholding, error)
}

var calculators = map[string]Calculator{}

// RegisterCalculator installs a calculator for its rule kind. New rule
// shapes plug in here without touching the computation engine.
func RegisterCalculator(c Calculator) {
	calculators[c.Kind()] = c
}

func init() {
	RegisterCalculator(flatCalculator{})
	RegisterCalculator(progressiveCalculator{})
	RegisterCalculator(compositeCalculator{})
}

// Compute dispatches on the document's rule kind and rounds the result once,
// per the document's declared rounding mode, to the nearest minor currency
// unit. Contribution amounts are rounded the same way for display; the total
// is authoritative.
func Compute(env Env, taxableGross decimal.Decimal, doc *RuleDocument) (Withholding, error) {
	calc, ok := calculators[doc.Rule.Kind]
	if !ok {
		return Withholding{}, fmt.Errorf("%w: no calculator for rule kind %q", ErrMalformedRule, doc.Rule.Kind)
	}
	withholding, err := calc.Withhold(env, taxableGross, doc)
	if err != nil {
		return Withholding{}, err
	}
	withholding.Amount = roundAmount(doc.Rounding, withholding.Amount)
	for i := range withholding.Parts {
		withholding.Parts[i].Amount = roundAmount(doc.Rounding, withholding.Parts[i].Amount)
	}
	return withholding, nil
}

func roundAmount(mode string, amount decimal.Decimal) decimal.Decimal {
	if mode == RoundingBankers {
		return amount.RoundBank(minorUnitPlaces)
	}
	return amount.Round(minorUnitPlaces)
}

type flatCalculator struct{}

func (flatCalculator) Kind() string { return KindFlat }

func (flatCalculator) Withhold(_ Env, taxableGross decimal.Decimal, doc *RuleDocument) (Withholding, error) {
	amount := taxableGross.Mul(doc.Rule.Rate)
	return Withholding{
		Amount: amount,
		Parts:  []Contribution{{Jurisdiction: doc.Jurisdiction, Version: doc.SchemaVersion, Amount: amount}},
	}, nil
}

type progressiveCalculator struct{}

func (progressiveCalculator) Kind() string { return KindProgressive }

// Withhold applies standard marginal semantics: each bracket taxes only the
// portion of taxable gross that falls between its lower and upper bound.
func (progressiveCalculator) Withhold(_ Env, taxableGross decimal.Decimal, doc *RuleDocument) (Withholding, error) {
	amount := decimal.Zero
	lower := decimal.Zero
	for _, bracket := range doc.Rule.Brackets {
		if taxableGross.LessThanOrEqual(lower) {
			break
		}
		portion := taxableGross.Sub(lower)
		if bracket.Upper != nil {
			width := bracket.Upper.Sub(lower)
			if portion.GreaterThan(width) {
				portion = width
			}
			lower = *bracket.Upper
		}
		amount = amount.Add(portion.Mul(bracket.Rate))
	}
	return Withholding{
		Amount: amount,
		Parts:  []Contribution{{Jurisdiction: doc.Jurisdiction, Version: doc.SchemaVersion, Amount: amount}},
	}, nil
}

type compositeCalculator struct{}

func (compositeCalculator) Kind() string { return KindComposite }

// Withhold evaluates each component against the full taxable gross (sum
// policy) or against the gross less prior component withholding (sequential
// policy). Component amounts stay unrounded; Compute rounds once at the top.
func (compositeCalculator) Withhold(env Env, taxableGross decimal.Decimal, doc *RuleDocument) (Withholding, error) {
	if env.Rules == nil {
		return Withholding{}, fmt.Errorf("composite rule %s: no resolver available", doc.Jurisdiction)
	}
	total := decimal.Zero
	base := taxableGross
	parts := make([]Contribution, 0, len(doc.Rule.Components))
	for _, component := range doc.Rule.Components {
		componentDoc, err := env.Rules.Resolve(component, env.On)
		if err != nil {
			return Withholding{}, fmt.Errorf("composite rule %s: %w", doc.Jurisdiction, err)
		}
		if componentDoc.Rule.Kind == KindComposite {
			return Withholding{}, fmt.Errorf("%w: composite rule %s references composite %s",
				ErrMalformedRule, doc.Jurisdiction, component)
		}
		calc, ok := calculators[componentDoc.Rule.Kind]
		if !ok {
			return Withholding{}, fmt.Errorf("%w: no calculator for rule kind %q", ErrMalformedRule, componentDoc.Rule.Kind)
		}
		componentWithholding, err := calc.Withhold(env, base, componentDoc)
		if err != nil {
			return Withholding{}, err
		}
		total = total.Add(componentWithholding.Amount)
		parts = append(parts, Contribution{
			Jurisdiction: componentDoc.Jurisdiction,
			Version:      componentDoc.SchemaVersion,
			Amount:       componentWithholding.Amount,
		})
		if doc.Rule.Policy == PolicySequential {
			base = base.Sub(componentWithholding.Amount)
			// A component can withhold more than the remaining base when
			// its rate exceeds 100%. Later components tax nothing then.
			if base.IsNegative() {
				base = decimal.Zero
			}
		}
	}
	return Withholding{Amount: total, Parts: parts}, nil
}
