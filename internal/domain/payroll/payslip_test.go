package payroll

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleResult() CalculationResult {
	return CalculationResult{
		EmployeeID:   "emp-1",
		Name:         "Ada Smith",
		Outcome:      OutcomeSuccess,
		Gross:        dec("4000"),
		TaxableGross: dec("4000"),
		Withheld:     dec("200"),
		Net:          dec("3800"),
		Breakdown: []JurisdictionWithholding{
			{Jurisdiction: "US-OK", Version: "2025", Withheld: dec("200")},
		},
	}
}

func TestPayslipRender(t *testing.T) {
	svc := NewPayslipService("", nil)
	data, err := svc.Render("run-1", junePeriod(t), sampleResult())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", data[:min(len(data), 8)])
	}
}

func TestPayslipStoredToDir(t *testing.T) {
	dir := t.TempDir()
	svc := NewPayslipService(dir, nil)
	if _, err := svc.Render("run-1", junePeriod(t), sampleResult()); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stored payslip, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "run-1_emp-1") || filepath.Ext(name) != ".pdf" {
		t.Fatalf("unexpected payslip file name %q", name)
	}
}
