package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wagecore/internal/domain/tax"
)

// Engine turns a PayRunRequest into a PayRunResult. Employees are computed
// in parallel on a bounded worker group; the only shared state is the frozen
// rule registry. A failure for one employee becomes a failure-tagged result
// for that employee and never touches any other worker.
type Engine struct {
	rules   *tax.Registry
	workers int
}

func NewEngine(rules *tax.Registry, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{rules: rules, workers: workers}
}

// Compute runs the payroll for every requested employee. Results keep the
// input employee order regardless of worker completion order, so repeated
// runs over the same input and registry state are identical.
func (e *Engine) Compute(ctx context.Context, req PayRunRequest) (PayRunResult, error) {
	if !e.rules.Frozen() {
		return PayRunResult{}, tax.ErrRegistryNotFrozen
	}
	if req.PayPeriod.Start.IsZero() || req.PayPeriod.End.Before(req.PayPeriod.Start) {
		return PayRunResult{}, ErrInvalidPeriod
	}

	results := make([]CalculationResult, len(req.Employees))
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i := range req.Employees {
		slot := i
		employee := req.Employees[i]
		group.Go(func() error {
			results[slot] = e.computeEmployee(employee, req.PayItems[employee.ID], req.PayPeriod)
			return nil
		})
	}
	// Workers never return errors; Wait is only a barrier.
	_ = group.Wait()

	return Aggregate(req.PayPeriod, results), nil
}

func (e *Engine) computeEmployee(employee Employee, items []PayItem, period PayPeriod) (result CalculationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("payroll computation panic", "employeeId", employee.ID, "panic", rec)
			result = failureResult(employee, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	if err := validateEmployee(employee, items); err != nil {
		return failureResult(employee, err.Error())
	}

	gross, taxableGross := sumPayItems(items)
	// Taxable deductions can exceed taxable earnings; withholding bottoms
	// out at zero, it never becomes a refund.
	if taxableGross.IsNegative() {
		taxableGross = decimal.Zero
	}

	// The rule version in force on the period start date governs the whole
	// period, even when the period spans a law change.
	doc, err := e.rules.Resolve(employee.Jurisdiction, period.Start)
	if err != nil {
		return failureResult(employee, err.Error())
	}
	withholding, err := tax.Compute(tax.Env{Rules: e.rules, On: period.Start}, taxableGross, doc)
	if err != nil {
		return failureResult(employee, err.Error())
	}

	net := gross.Sub(withholding.Amount)
	result = CalculationResult{
		EmployeeID:   employee.ID,
		Name:         employee.Name,
		Outcome:      OutcomeSuccess,
		Gross:        gross,
		TaxableGross: taxableGross,
		Withheld:     withholding.Amount,
		Net:          net,
		Breakdown:    breakdown(withholding),
	}
	if net.IsNegative() {
		result.Warnings = append(result.Warnings, WarningNegativeNet)
	}
	return result
}

func validateEmployee(employee Employee, items []PayItem) error {
	if strings.TrimSpace(employee.ID) == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidEmployeeData)
	}
	if strings.TrimSpace(employee.Jurisdiction) == "" {
		return fmt.Errorf("%w: home jurisdiction is required", ErrInvalidEmployeeData)
	}
	if employee.PayRate.IsNegative() {
		return fmt.Errorf("%w: pay rate must not be negative", ErrInvalidEmployeeData)
	}
	if employee.PayFrequency != "" && !payFrequencies[employee.PayFrequency] {
		return fmt.Errorf("%w: unknown pay frequency %q", ErrInvalidEmployeeData, employee.PayFrequency)
	}
	for _, item := range items {
		if item.ItemType != ItemTypeEarning && item.ItemType != ItemTypeDeduction {
			return fmt.Errorf("%w: pay item %q has unknown type %q", ErrInvalidEmployeeData, item.Name, item.ItemType)
		}
		if item.Amount.IsNegative() {
			return fmt.Errorf("%w: pay item %q amount must not be negative", ErrInvalidEmployeeData, item.Name)
		}
	}
	return nil
}

func sumPayItems(items []PayItem) (gross, taxableGross decimal.Decimal) {
	gross = decimal.Zero
	taxableGross = decimal.Zero
	for _, item := range items {
		amount := item.Amount
		if item.ItemType == ItemTypeDeduction {
			amount = amount.Neg()
		}
		gross = gross.Add(amount)
		if item.Taxable {
			taxableGross = taxableGross.Add(amount)
		}
	}
	return gross, taxableGross
}

func breakdown(withholding tax.Withholding) []JurisdictionWithholding {
	out := make([]JurisdictionWithholding, 0, len(withholding.Parts))
	for _, part := range withholding.Parts {
		out = append(out, JurisdictionWithholding{
			Jurisdiction: part.Jurisdiction,
			Version:      part.Version,
			Withheld:     part.Amount,
		})
	}
	return out
}

func failureResult(employee Employee, reason string) CalculationResult {
	return CalculationResult{
		EmployeeID:   employee.ID,
		Name:         employee.Name,
		Outcome:      OutcomeFailure,
		Reason:       reason,
		Gross:        decimal.Zero,
		TaxableGross: decimal.Zero,
		Withheld:     decimal.Zero,
		Net:          decimal.Zero,
	}
}
