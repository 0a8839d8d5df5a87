package payroll

const (
	FrequencyHourly           = "hourly"
	FrequencySalariedBiweekly = "salaried_biweekly"
	FrequencySalariedMonthly  = "salaried_monthly"

	ItemTypeEarning   = "earning"
	ItemTypeDeduction = "deduction"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	WarningNegativeNet = "negative_net"
)

var payFrequencies = map[string]bool{
	FrequencyHourly:           true,
	FrequencySalariedBiweekly: true,
	FrequencySalariedMonthly:  true,
}
