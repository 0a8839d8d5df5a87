package payroll

import "github.com/shopspring/decimal"

// Aggregate combines per-employee results into a PayRunResult. Totals are
// accumulated in input order over successful results only; failed results
// contribute nothing beyond the failure count. For a fixed input sequence
// the output is identical on every invocation.
func Aggregate(period PayPeriod, results []CalculationResult) PayRunResult {
	summary := Summary{
		Gross:    decimal.Zero,
		Withheld: decimal.Zero,
		Net:      decimal.Zero,
	}
	for _, result := range results {
		if result.Outcome != OutcomeSuccess {
			summary.FailureCount++
			continue
		}
		summary.Gross = summary.Gross.Add(result.Gross)
		summary.Withheld = summary.Withheld.Add(result.Withheld)
		summary.Net = summary.Net.Add(result.Net)
	}
	return PayRunResult{
		PayPeriod: period,
		Results:   results,
		Summary:   summary,
	}
}
