package tax

import (
	"errors"
	"testing"
)

func TestValidateRejectsNegativeFlatRate(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "-0.05")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected ErrMalformedRule, got %v", err)
	}
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-06-01", "2025-01-01", "0.05")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected ErrMalformedRule, got %v", err)
	}
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.05")
	doc.Rule.Kind = "lookup_table"
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected ErrMalformedRule, got %v", err)
	}
}

func TestValidateRejectsUnknownRounding(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.05")
	doc.Rounding = "ceiling"
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected ErrMalformedRule, got %v", err)
	}
}

func TestValidateRejectsMissingJurisdiction(t *testing.T) {
	doc := flatDoc(t, "  ", "2025", "2025-01-01", "", "0.05")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected ErrMalformedRule, got %v", err)
	}
}

func TestValidateProgressiveBrackets(t *testing.T) {
	base := func(t *testing.T) *RuleDocument {
		doc := progressiveDoc(t)
		return doc
	}

	doc := base(t)
	if err := doc.Validate(); err != nil {
		t.Fatalf("valid progressive document rejected: %v", err)
	}

	doc = base(t)
	doc.Rule.Brackets[2].Upper = upper("9000")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of bounded final bracket, got %v", err)
	}

	doc = base(t)
	doc.Rule.Brackets[1].Upper = upper("500")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of non-increasing bounds, got %v", err)
	}

	doc = base(t)
	doc.Rule.Brackets[0].Upper = nil
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of unbounded inner bracket, got %v", err)
	}

	doc = base(t)
	doc.Rule.Brackets[1].Rate = dec("-0.10")
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of negative bracket rate, got %v", err)
	}

	doc = base(t)
	doc.Rule.Brackets = nil
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of empty bracket table, got %v", err)
	}
}

func TestValidateComposite(t *testing.T) {
	base := func(t *testing.T) *RuleDocument {
		return &RuleDocument{
			Jurisdiction:   "US-NY",
			SchemaVersion:  "2025",
			EffectiveStart: date(t, "2025-01-01"),
			Rule: RuleBody{
				Kind:       KindComposite,
				Components: []string{"US-FED", "US-NY-STATE"},
				Policy:     PolicySum,
			},
		}
	}

	doc := base(t)
	if err := doc.Validate(); err != nil {
		t.Fatalf("valid composite document rejected: %v", err)
	}

	doc = base(t)
	doc.Rule.Policy = "weighted"
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of unknown policy, got %v", err)
	}

	doc = base(t)
	doc.Rule.Components = []string{"US-FED", "US-NY"}
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of self reference, got %v", err)
	}

	doc = base(t)
	doc.Rule.Components = []string{"US-FED", "US-FED"}
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of duplicate component, got %v", err)
	}

	doc = base(t)
	doc.Rule.Components = nil
	if err := doc.Validate(); !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("expected rejection of empty components, got %v", err)
	}
}
