package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAggregateSkipsFailures(t *testing.T) {
	period := junePeriod(t)
	results := []CalculationResult{
		{EmployeeID: "emp-1", Outcome: OutcomeSuccess, Gross: dec("1000"), Withheld: dec("100"), Net: dec("900")},
		{EmployeeID: "emp-2", Outcome: OutcomeFailure, Reason: "no applicable rule"},
		{EmployeeID: "emp-3", Outcome: OutcomeSuccess, Gross: dec("2000"), Withheld: dec("300"), Net: dec("1700")},
	}

	out := Aggregate(period, results)
	if out.Summary.FailureCount != 1 {
		t.Fatalf("expected 1 failure, got %d", out.Summary.FailureCount)
	}
	if !out.Summary.Gross.Equal(dec("3000")) {
		t.Fatalf("expected gross 3000, got %s", out.Summary.Gross)
	}
	if !out.Summary.Withheld.Equal(dec("400")) {
		t.Fatalf("expected withheld 400, got %s", out.Summary.Withheld)
	}
	if !out.Summary.Net.Equal(dec("2600")) {
		t.Fatalf("expected net 2600, got %s", out.Summary.Net)
	}
	if len(out.Results) != 3 || out.Results[1].EmployeeID != "emp-2" {
		t.Fatalf("results must keep input order, got %+v", out.Results)
	}
}

func TestAggregateEmptyRun(t *testing.T) {
	out := Aggregate(junePeriod(t), nil)
	if out.Summary.FailureCount != 0 {
		t.Fatalf("expected no failures, got %d", out.Summary.FailureCount)
	}
	if !out.Summary.Gross.Equal(decimal.Zero) || !out.Summary.Net.Equal(decimal.Zero) {
		t.Fatalf("expected zero totals, got %+v", out.Summary)
	}
}
