package tax

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func upper(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func progressiveDoc(t *testing.T) *RuleDocument {
	t.Helper()
	return &RuleDocument{
		Jurisdiction:   "US-CA",
		SchemaVersion:  "2025",
		EffectiveStart: date(t, "2025-01-01"),
		Rule: RuleBody{
			Kind: KindProgressive,
			Brackets: []Bracket{
				{Upper: upper("1000"), Rate: dec("0")},
				{Upper: upper("5000"), Rate: dec("0.10")},
				{Upper: nil, Rate: dec("0.20")},
			},
		},
	}
}

func TestFlatWithholding(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.05")
	withholding, err := Compute(Env{}, dec("4000"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.Equal(dec("200")) {
		t.Fatalf("expected 200 withheld, got %s", withholding.Amount)
	}
	if len(withholding.Parts) != 1 || withholding.Parts[0].Jurisdiction != "US-OK" {
		t.Fatalf("unexpected breakdown: %+v", withholding.Parts)
	}
}

func TestFlatWithholdingZeroGross(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.05")
	withholding, err := Compute(Env{}, dec("0"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.IsZero() {
		t.Fatalf("expected zero withheld, got %s", withholding.Amount)
	}
}

func TestProgressiveMarginalSemantics(t *testing.T) {
	doc := progressiveDoc(t)
	cases := []struct {
		gross string
		want  string
	}{
		{"0", "0"},
		{"500", "0"},
		{"1000", "0"},
		{"1001", "0.1"},
		{"2000", "100"},
		{"5000", "400"},
		{"6000", "600"},
	}
	for _, tc := range cases {
		withholding, err := Compute(Env{}, dec(tc.gross), doc)
		if err != nil {
			t.Fatalf("compute(%s) failed: %v", tc.gross, err)
		}
		if !withholding.Amount.Equal(dec(tc.want)) {
			t.Fatalf("gross %s: expected %s withheld, got %s", tc.gross, tc.want, withholding.Amount)
		}
	}
}

func TestProgressiveNonDecreasing(t *testing.T) {
	doc := progressiveDoc(t)
	previous := dec("0")
	for gross := 0; gross <= 10000; gross += 250 {
		withholding, err := Compute(Env{}, decimal.NewFromInt(int64(gross)), doc)
		if err != nil {
			t.Fatalf("compute(%d) failed: %v", gross, err)
		}
		if withholding.Amount.LessThan(previous) {
			t.Fatalf("withholding decreased at gross %d: %s < %s", gross, withholding.Amount, previous)
		}
		previous = withholding.Amount
	}
}

func compositeRegistry(t *testing.T, policy string) *Registry {
	t.Helper()
	registry := NewRegistry()
	if err := registry.Register(flatDoc(t, "US-FED", "2025", "2025-01-01", "", "0.10")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(flatDoc(t, "US-NY-STATE", "2025", "2025-01-01", "", "0.05")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	composite := &RuleDocument{
		Jurisdiction:   "US-NY",
		SchemaVersion:  "2025",
		EffectiveStart: date(t, "2025-01-01"),
		Rule: RuleBody{
			Kind:       KindComposite,
			Components: []string{"US-NY-STATE", "US-FED"},
			Policy:     policy,
		},
	}
	if err := registry.Register(composite); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Freeze(); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	return registry
}

func TestCompositeSumPolicy(t *testing.T) {
	registry := compositeRegistry(t, PolicySum)
	doc, err := registry.Resolve("US-NY", date(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	withholding, err := Compute(Env{Rules: registry, On: date(t, "2025-03-01")}, dec("1000"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.Equal(dec("150")) {
		t.Fatalf("expected 150 withheld, got %s", withholding.Amount)
	}
	if len(withholding.Parts) != 2 {
		t.Fatalf("expected 2 breakdown parts, got %d", len(withholding.Parts))
	}
	if !withholding.Parts[0].Amount.Equal(dec("50")) || !withholding.Parts[1].Amount.Equal(dec("100")) {
		t.Fatalf("unexpected component amounts: %+v", withholding.Parts)
	}
}

func TestCompositeSequentialPolicy(t *testing.T) {
	registry := compositeRegistry(t, PolicySequential)
	doc, err := registry.Resolve("US-NY", date(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	withholding, err := Compute(Env{Rules: registry, On: date(t, "2025-03-01")}, dec("1000"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// state 5% of 1000 = 50, then fed 10% of the remaining 950 = 95
	if !withholding.Amount.Equal(dec("145")) {
		t.Fatalf("expected 145 withheld, got %s", withholding.Amount)
	}
}

func TestCompositeSequentialExhaustedBase(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(flatDoc(t, "US-LEVY", "2025", "2025-01-01", "", "1.5")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(flatDoc(t, "US-FED", "2025", "2025-01-01", "", "0.10")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	composite := &RuleDocument{
		Jurisdiction:   "US-NY",
		SchemaVersion:  "2025",
		EffectiveStart: date(t, "2025-01-01"),
		Rule: RuleBody{
			Kind:       KindComposite,
			Components: []string{"US-LEVY", "US-FED"},
			Policy:     PolicySequential,
		},
	}
	if err := registry.Register(composite); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Freeze(); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}

	doc, err := registry.Resolve("US-NY", date(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	withholding, err := Compute(Env{Rules: registry, On: date(t, "2025-03-01")}, dec("100"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// the 150% levy consumes the whole base; the fed component taxes nothing
	if !withholding.Amount.Equal(dec("150")) {
		t.Fatalf("expected 150 withheld, got %s", withholding.Amount)
	}
	if len(withholding.Parts) != 2 || !withholding.Parts[1].Amount.Equal(dec("0")) {
		t.Fatalf("expected the second component to withhold nothing, got %+v", withholding.Parts)
	}
}

func TestCompositeMissingComponentVersion(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(flatDoc(t, "US-FED", "2024", "2024-01-01", "2025-01-01", "0.10")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	composite := &RuleDocument{
		Jurisdiction:   "US-NY",
		SchemaVersion:  "2025",
		EffectiveStart: date(t, "2025-01-01"),
		Rule: RuleBody{
			Kind:       KindComposite,
			Components: []string{"US-FED"},
			Policy:     PolicySum,
		},
	}
	if err := registry.Register(composite); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Freeze(); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	doc, err := registry.Resolve("US-NY", date(t, "2025-06-01"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// the composite itself is in force but its component has no 2025 version
	if _, err := Compute(Env{Rules: registry, On: date(t, "2025-06-01")}, dec("1000"), doc); err == nil {
		t.Fatal("expected component resolution error")
	}
}

func TestRoundingHalfUp(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.125")
	withholding, err := Compute(Env{}, dec("1"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.Equal(dec("0.13")) {
		t.Fatalf("expected 0.13 with half-up rounding, got %s", withholding.Amount)
	}
}

func TestRoundingBankers(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "0.125")
	doc.Rounding = RoundingBankers
	withholding, err := Compute(Env{}, dec("1"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.Equal(dec("0.12")) {
		t.Fatalf("expected 0.12 with banker's rounding, got %s", withholding.Amount)
	}
}

func TestPathologicalRateExceedsGross(t *testing.T) {
	doc := flatDoc(t, "US-OK", "2025", "2025-01-01", "", "1.5")
	withholding, err := Compute(Env{}, dec("100"), doc)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !withholding.Amount.Equal(dec("150")) {
		t.Fatalf("expected 150 withheld, got %s", withholding.Amount)
	}
}
