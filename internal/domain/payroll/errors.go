package payroll

import "errors"

var (
	ErrInvalidEmployeeData = errors.New("invalid employee data")
	ErrInvalidPeriod       = errors.New("pay period start must not be after end")
)
