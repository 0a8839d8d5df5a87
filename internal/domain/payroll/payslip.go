package payroll

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	cryptoutil "wagecore/internal/platform/crypto"
)

// PayslipService renders payslip PDFs from calculation results. When a
// directory is configured a copy is written there, encrypted at rest if the
// crypto service holds a key.
type PayslipService struct {
	dir    string
	crypto *cryptoutil.Service
}

func NewPayslipService(dir string, crypto *cryptoutil.Service) *PayslipService {
	return &PayslipService{dir: dir, crypto: crypto}
}

func (s *PayslipService) Render(runID string, period PayPeriod, result CalculationResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", result.Name, result.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", period.Start.Format("2006-01-02"), period.End.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %s", result.Gross.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Withheld: %s", result.Withheld.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %s", result.Net.StringFixed(2)))
	for _, line := range result.Breakdown {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("  %s (%s): %s", line.Jurisdiction, line.Version, line.Withheld.StringFixed(2)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	if s.dir != "" {
		if err := s.store(runID, result.EmployeeID, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *PayslipService) store(runID, employeeID string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s.pdf", runID, employeeID)
	if s.crypto != nil && s.crypto.Configured() {
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(s.dir, name+".enc"), encrypted, 0o600)
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}
