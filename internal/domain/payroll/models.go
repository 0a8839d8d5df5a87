package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Jurisdiction string          `json:"jurisdiction"`
	PayRate      decimal.Decimal `json:"payRate"`
	PayFrequency string          `json:"payFrequency"`
}

// PayItem is one earning or deduction line. Earnings add to gross and
// deductions subtract; only items flagged taxable move taxable gross.
type PayItem struct {
	Name     string          `json:"name"`
	ItemType string          `json:"itemType"`
	Amount   decimal.Decimal `json:"amount"`
	Taxable  bool            `json:"taxable"`
}

// PayPeriod selects which rule version applies. Both dates are inclusive.
// The engine never prorates pay across a period.
type PayPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type PayRunRequest struct {
	Employees []Employee
	PayItems  map[string][]PayItem
	PayPeriod PayPeriod
}

type JurisdictionWithholding struct {
	Jurisdiction string          `json:"jurisdiction"`
	Version      string          `json:"version"`
	Withheld     decimal.Decimal `json:"withheld"`
}

type CalculationResult struct {
	EmployeeID   string                    `json:"employeeId"`
	Name         string                    `json:"name"`
	Outcome      string                    `json:"outcome"`
	Reason       string                    `json:"reason,omitempty"`
	Gross        decimal.Decimal           `json:"gross"`
	TaxableGross decimal.Decimal           `json:"taxableGross"`
	Withheld     decimal.Decimal           `json:"withheld"`
	Net          decimal.Decimal           `json:"net"`
	Breakdown    []JurisdictionWithholding `json:"breakdown,omitempty"`
	Warnings     []string                  `json:"warnings,omitempty"`
}

// Summary totals cover successful results only.
type Summary struct {
	Gross        decimal.Decimal `json:"gross"`
	Withheld     decimal.Decimal `json:"withheld"`
	Net          decimal.Decimal `json:"net"`
	FailureCount int             `json:"failureCount"`
}

type PayRunResult struct {
	RunID     string              `json:"runId,omitempty"`
	PayPeriod PayPeriod           `json:"payPeriod"`
	Results   []CalculationResult `json:"results"`
	Summary   Summary             `json:"summary"`
}
