package costs

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// LaborKind identifies the variant of a labor entry.
type LaborKind string

const (
	KindOwnerDraw  LaborKind = "owner_draw"
	KindEmployee   LaborKind = "employee"
	KindFreelancer LaborKind = "freelancer"
)

// Statutory rates applied to an employee's base salary, in percent.
const (
	EmployerContributionPct = 20.0
	SeveranceFundPct        = 8.0
	// SeveranceProvisionPct is the share of the severance fund accrued for dismissals.
	SeveranceProvisionPct = 40.0
	// MonthlyHours is the contracted hours used to derive the hourly rate.
	MonthlyHours = 220.0
)

// LaborCost is any labor entry that can be reduced to a monthly cost.
type LaborCost interface {
	Kind() LaborKind
	MonthlyCost() float64
	Validate() error
}

// OwnerDraw is the monthly amount the owners withdraw.
type OwnerDraw struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Kind returns KindOwnerDraw.
func (OwnerDraw) Kind() LaborKind { return KindOwnerDraw }

// MonthlyCost is the fixed monthly draw amount.
func (o OwnerDraw) MonthlyCost() float64 { return o.Amount }

// Validate requires a name and a non-negative amount.
func (o OwnerDraw) Validate() error {
	var err error
	if strings.TrimSpace(o.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if o.Amount < 0 {
		err = multierr.Append(err, errors.New("amount must be >= 0"))
	}
	return err
}

// Freelancer is paid per day worked.
type Freelancer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DailyRate    float64 `json:"daily_rate"`
	Headcount    float64 `json:"headcount"`
	DaysPerMonth float64 `json:"days_per_month"`
}

// Kind returns KindFreelancer.
func (Freelancer) Kind() LaborKind { return KindFreelancer }

// MonthlyCost is daily rate times headcount times days worked per month.
func (f Freelancer) MonthlyCost() float64 {
	return f.DailyRate * f.Headcount * f.DaysPerMonth
}

// Validate requires a name and non-negative rate, headcount and days.
func (f Freelancer) Validate() error {
	var err error
	if strings.TrimSpace(f.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if f.DailyRate < 0 || f.Headcount < 0 || f.DaysPerMonth < 0 {
		err = multierr.Append(err, errors.New("daily_rate, headcount and days_per_month must be >= 0"))
	}
	return err
}

// Employee is a salaried worker whose cost includes statutory charges and benefits.
type Employee struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	BaseSalary         float64 `json:"base_salary"`
	MealDailyRate      float64 `json:"meal_daily_rate"`
	DaysPerWeek        float64 `json:"days_per_week"`
	TransportAllowance float64 `json:"transport_allowance"`
	OtherBenefits      float64 `json:"other_benefits"`
	OvertimeHours      float64 `json:"overtime_hours"`
	OvertimePremiumPct float64 `json:"overtime_premium_pct"`
	NightHours         float64 `json:"night_hours"`
	NightPremiumPct    float64 `json:"night_premium_pct"`
}

// Kind returns KindEmployee.
func (Employee) Kind() LaborKind { return KindEmployee }

// EmployeeBreakdown itemizes the monthly cost of one employee.
type EmployeeBreakdown struct {
	BaseSalary           float64 `json:"base_salary"`
	EmployerContribution float64 `json:"employer_contribution"`
	SeveranceFund        float64 `json:"severance_fund"`
	ThirteenthSalary     float64 `json:"thirteenth_salary"`
	Vacation             float64 `json:"vacation"`
	SeveranceProvision   float64 `json:"severance_provision"`
	MealAllowance        float64 `json:"meal_allowance"`
	TransportAllowance   float64 `json:"transport_allowance"`
	OtherBenefits        float64 `json:"other_benefits"`
	Overtime             float64 `json:"overtime"`
	NightShift           float64 `json:"night_shift"`
	PerHead              float64 `json:"per_head"`
	Total                float64 `json:"total"`
}

// Breakdown computes the itemized fully loaded cost.
func (e Employee) Breakdown() EmployeeBreakdown {
	base := e.BaseSalary
	hourly := base / MonthlyHours

	b := EmployeeBreakdown{
		BaseSalary:           base,
		EmployerContribution: base * EmployerContributionPct / 100,
		SeveranceFund:        base * SeveranceFundPct / 100,
		ThirteenthSalary:     base / 12,
		Vacation:             base / 12 * (1 + 1.0/3.0),
		SeveranceProvision:   base * SeveranceFundPct / 100 * SeveranceProvisionPct / 100,
		MealAllowance:        e.MealDailyRate * e.DaysPerWeek * WeeksPerMonth,
		TransportAllowance:   e.TransportAllowance,
		OtherBenefits:        e.OtherBenefits,
		Overtime:             e.OvertimeHours * hourly * (1 + e.OvertimePremiumPct/100),
		NightShift:           e.NightHours * hourly * e.NightPremiumPct / 100,
	}
	b.PerHead = b.BaseSalary + b.EmployerContribution + b.SeveranceFund + b.ThirteenthSalary +
		b.Vacation + b.SeveranceProvision + b.MealAllowance + b.TransportAllowance +
		b.OtherBenefits + b.Overtime + b.NightShift
	b.Total = b.PerHead * e.Quantity
	return b
}

// MonthlyCost is the breakdown total for all employees in the entry.
func (e Employee) MonthlyCost() float64 {
	return e.Breakdown().Total
}

// Validate requires a name, non-negative amounts and at most 7 days per week.
func (e Employee) Validate() error {
	var err error
	if strings.TrimSpace(e.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if e.Quantity < 0 {
		err = multierr.Append(err, errors.New("quantity must be >= 0"))
	}
	if e.DaysPerWeek < 0 || e.DaysPerWeek > 7 {
		err = multierr.Append(err, fmt.Errorf("days_per_week must be between 0 and 7, got %v", e.DaysPerWeek))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"base_salary", e.BaseSalary},
		{"meal_daily_rate", e.MealDailyRate},
		{"transport_allowance", e.TransportAllowance},
		{"other_benefits", e.OtherBenefits},
		{"overtime_hours", e.OvertimeHours},
		{"overtime_premium_pct", e.OvertimePremiumPct},
		{"night_hours", e.NightHours},
		{"night_premium_pct", e.NightPremiumPct},
	} {
		if f.value < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be >= 0", f.name))
		}
	}
	return err
}
