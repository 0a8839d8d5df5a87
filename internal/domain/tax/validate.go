package tax

import (
	"fmt"
	"strings"
)

// Validate rejects documents that could fail during computation. Anything
// that passes here is safe to hand to a calculator.
func (d *RuleDocument) Validate() error {
	if strings.TrimSpace(d.Jurisdiction) == "" {
		return fmt.Errorf("%w: jurisdiction is required", ErrMalformedRule)
	}
	if strings.TrimSpace(d.SchemaVersion) == "" {
		return fmt.Errorf("%w: schemaVersion is required", ErrMalformedRule)
	}
	if d.EffectiveStart.IsZero() {
		return fmt.Errorf("%w: effectiveStart is required", ErrMalformedRule)
	}
	if d.EffectiveEnd != nil && !d.EffectiveEnd.After(d.EffectiveStart) {
		return fmt.Errorf("%w: effectiveEnd must be after effectiveStart", ErrMalformedRule)
	}
	switch d.Rounding {
	case "", RoundingHalfUp, RoundingBankers:
	default:
		return fmt.Errorf("%w: unknown rounding mode %q", ErrMalformedRule, d.Rounding)
	}

	switch d.Rule.Kind {
	case KindFlat:
		return d.validateFlat()
	case KindProgressive:
		return d.validateProgressive()
	case KindComposite:
		return d.validateComposite()
	default:
		return fmt.Errorf("%w: unknown rule kind %q", ErrMalformedRule, d.Rule.Kind)
	}
}

func (d *RuleDocument) validateFlat() error {
	if d.Rule.Rate.IsNegative() {
		return fmt.Errorf("%w: flat rate must not be negative", ErrMalformedRule)
	}
	return nil
}

func (d *RuleDocument) validateProgressive() error {
	brackets := d.Rule.Brackets
	if len(brackets) == 0 {
		return fmt.Errorf("%w: progressive rule requires at least one bracket", ErrMalformedRule)
	}
	for i, bracket := range brackets {
		if bracket.Rate.IsNegative() {
			return fmt.Errorf("%w: bracket %d rate must not be negative", ErrMalformedRule, i)
		}
		last := i == len(brackets)-1
		if last {
			if bracket.Upper != nil {
				return fmt.Errorf("%w: final bracket must be unbounded", ErrMalformedRule)
			}
			continue
		}
		if bracket.Upper == nil {
			return fmt.Errorf("%w: bracket %d must declare an upper bound", ErrMalformedRule, i)
		}
		if bracket.Upper.IsNegative() {
			return fmt.Errorf("%w: bracket %d upper bound must not be negative", ErrMalformedRule, i)
		}
		if i > 0 && brackets[i-1].Upper.GreaterThanOrEqual(*bracket.Upper) {
			return fmt.Errorf("%w: bracket upper bounds must be strictly increasing", ErrMalformedRule)
		}
	}
	return nil
}

func (d *RuleDocument) validateComposite() error {
	if len(d.Rule.Components) == 0 {
		return fmt.Errorf("%w: composite rule requires components", ErrMalformedRule)
	}
	switch d.Rule.Policy {
	case PolicySum, PolicySequential:
	default:
		return fmt.Errorf("%w: unknown composite policy %q", ErrMalformedRule, d.Rule.Policy)
	}
	seen := make(map[string]bool, len(d.Rule.Components))
	for _, component := range d.Rule.Components {
		if strings.TrimSpace(component) == "" {
			return fmt.Errorf("%w: composite component jurisdiction is required", ErrMalformedRule)
		}
		if component == d.Jurisdiction {
			return fmt.Errorf("%w: composite rule must not reference itself", ErrMalformedRule)
		}
		if seen[component] {
			return fmt.Errorf("%w: duplicate composite component %q", ErrMalformedRule, component)
		}
		seen[component] = true
	}
	return nil
}
