package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"wagecore/internal/domain/payroll"
)

var ErrRunNotFound = errors.New("pay run not found")

// Store persists completed pay runs. It sits outside the computation core;
// the engine never touches it.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

// SaveRun writes the run and its ordered results in one transaction and
// returns the new run id.
func (s *Store) SaveRun(ctx context.Context, result payroll.PayRunResult) (string, error) {
	runID := uuid.NewString()
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
    INSERT INTO pay_runs (id, period_start, period_end, gross_total, withheld_total, net_total, failure_count)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, runID, result.PayPeriod.Start, result.PayPeriod.End,
		result.Summary.Gross.String(), result.Summary.Withheld.String(), result.Summary.Net.String(),
		result.Summary.FailureCount)
	if err != nil {
		return "", err
	}

	for position, res := range result.Results {
		breakdownJSON, err := json.Marshal(res.Breakdown)
		if err != nil {
			return "", err
		}
		warningsJSON, err := json.Marshal(res.Warnings)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(ctx, `
      INSERT INTO pay_run_results (run_id, position, employee_id, employee_name, outcome, reason, gross, taxable_gross, withheld, net, breakdown_json, warnings_json)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, runID, position, res.EmployeeID, res.Name, res.Outcome, res.Reason,
			res.Gross.String(), res.TaxableGross.String(), res.Withheld.String(), res.Net.String(),
			breakdownJSON, warningsJSON)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]RunSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, period_start, period_end, gross_total::text, withheld_total::text, net_total::text, failure_count, created_at
    FROM pay_runs
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var gross, withheld, net string
		if err := rows.Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &gross, &withheld, &net, &run.FailureCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		if run.Gross, err = decimal.NewFromString(gross); err != nil {
			return nil, err
		}
		if run.Withheld, err = decimal.NewFromString(withheld); err != nil {
			return nil, err
		}
		if run.Net, err = decimal.NewFromString(net); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun reassembles a stored run in its original result order.
func (s *Store) GetRun(ctx context.Context, runID string) (payroll.PayRunResult, error) {
	var result payroll.PayRunResult
	var gross, withheld, net string
	err := s.DB.QueryRow(ctx, `
    SELECT period_start, period_end, gross_total::text, withheld_total::text, net_total::text, failure_count
    FROM pay_runs
    WHERE id = $1
  `, runID).Scan(&result.PayPeriod.Start, &result.PayPeriod.End, &gross, &withheld, &net, &result.Summary.FailureCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayRunResult{}, ErrRunNotFound
	}
	if err != nil {
		return payroll.PayRunResult{}, err
	}
	result.RunID = runID
	if result.Summary.Gross, err = decimal.NewFromString(gross); err != nil {
		return payroll.PayRunResult{}, err
	}
	if result.Summary.Withheld, err = decimal.NewFromString(withheld); err != nil {
		return payroll.PayRunResult{}, err
	}
	if result.Summary.Net, err = decimal.NewFromString(net); err != nil {
		return payroll.PayRunResult{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, employee_name, outcome, reason, gross::text, taxable_gross::text, withheld::text, net::text, breakdown_json, warnings_json
    FROM pay_run_results
    WHERE run_id = $1
    ORDER BY position
  `, runID)
	if err != nil {
		return payroll.PayRunResult{}, err
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return payroll.PayRunResult{}, err
		}
		result.Results = append(result.Results, res)
	}
	return result, rows.Err()
}

// GetResult returns one employee's stored result plus the run's pay period.
func (s *Store) GetResult(ctx context.Context, runID, employeeID string) (payroll.CalculationResult, payroll.PayPeriod, error) {
	var period payroll.PayPeriod
	err := s.DB.QueryRow(ctx, `
    SELECT period_start, period_end FROM pay_runs WHERE id = $1
  `, runID).Scan(&period.Start, &period.End)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.CalculationResult{}, payroll.PayPeriod{}, ErrRunNotFound
	}
	if err != nil {
		return payroll.CalculationResult{}, payroll.PayPeriod{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, employee_name, outcome, reason, gross::text, taxable_gross::text, withheld::text, net::text, breakdown_json, warnings_json
    FROM pay_run_results
    WHERE run_id = $1 AND employee_id = $2
    ORDER BY position
    LIMIT 1
  `, runID, employeeID)
	if err != nil {
		return payroll.CalculationResult{}, payroll.PayPeriod{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return payroll.CalculationResult{}, payroll.PayPeriod{}, err
		}
		return payroll.CalculationResult{}, payroll.PayPeriod{},
			fmt.Errorf("%w: employee %s in run %s", ErrRunNotFound, employeeID, runID)
	}
	res, err := scanResult(rows)
	if err != nil {
		return payroll.CalculationResult{}, payroll.PayPeriod{}, err
	}
	return res, period, nil
}

func scanResult(rows pgx.Rows) (payroll.CalculationResult, error) {
	var res payroll.CalculationResult
	var gross, taxableGross, withheld, net string
	var breakdownJSON, warningsJSON []byte
	if err := rows.Scan(&res.EmployeeID, &res.Name, &res.Outcome, &res.Reason,
		&gross, &taxableGross, &withheld, &net, &breakdownJSON, &warningsJSON); err != nil {
		return payroll.CalculationResult{}, err
	}
	var err error
	if res.Gross, err = decimal.NewFromString(gross); err != nil {
		return payroll.CalculationResult{}, err
	}
	if res.TaxableGross, err = decimal.NewFromString(taxableGross); err != nil {
		return payroll.CalculationResult{}, err
	}
	if res.Withheld, err = decimal.NewFromString(withheld); err != nil {
		return payroll.CalculationResult{}, err
	}
	if res.Net, err = decimal.NewFromString(net); err != nil {
		return payroll.CalculationResult{}, err
	}
	if err := json.Unmarshal(breakdownJSON, &res.Breakdown); err != nil {
		res.Breakdown = nil
	}
	if err := json.Unmarshal(warningsJSON, &res.Warnings); err != nil {
		res.Warnings = nil
	}
	return res, nil
}
