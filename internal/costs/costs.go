package costs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Frequency is how often a recurring cost is billed.
type Frequency string

const (
	Monthly  Frequency = "monthly"
	Biweekly Frequency = "biweekly"
	Weekly   Frequency = "weekly"
	Yearly   Frequency = "yearly"
)

// WeeksPerMonth is the average number of weeks in a month.
const WeeksPerMonth = 4.33

// ErrUnknownFrequency is returned when a frequency is not one of the four billing periods.
var ErrUnknownFrequency = errors.New("unknown frequency")

// ParseFrequency validates a raw frequency value.
func ParseFrequency(raw string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case Monthly, Biweekly, Weekly, Yearly:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, raw)
}

// MonthlyFactor returns the multiplier that turns one billing of f into a monthly amount.
// Unknown frequencies return 0.
func (f Frequency) MonthlyFactor() float64 {
	switch f {
	case Monthly:
		return 1
	case Biweekly:
		return 2
	case Weekly:
		return WeeksPerMonth
	case Yearly:
		return 1.0 / 12.0
	default:
		return 0
	}
}

// Known reports whether f is a recognized billing period.
func (f Frequency) Known() bool {
	return f.MonthlyFactor() != 0
}

// RecurringCost is an operating expense billed on a fixed schedule.
type RecurringCost struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
	Active    bool      `json:"active"`
}

// Monthly returns the monthly-equivalent amount of the cost, ignoring Active.
func (c RecurringCost) Monthly() float64 {
	if c.Frequency == Yearly {
		return c.Amount / 12
	}
	return c.Amount * c.Frequency.MonthlyFactor()
}

// Validate checks the cost before it is stored.
func (c RecurringCost) Validate() error {
	var err error
	if strings.TrimSpace(c.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if c.Amount < 0 {
		err = multierr.Append(err, fmt.Errorf("amount must be >= 0, got %v", c.Amount))
	}
	if _, ferr := ParseFrequency(string(c.Frequency)); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	return err
}

// ValidateAll validates every cost and returns all failures combined.
func ValidateAll(costs []RecurringCost) error {
	var err error
	for i, c := range costs {
		if cerr := c.Validate(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("cost %d (%s): %w", i, c.Name, cerr))
		}
	}
	return err
}

// MonthlyFixedTotal sums the monthly equivalent of every active cost.
func MonthlyFixedTotal(costs []RecurringCost) float64 {
	total := 0.0
	for _, c := range costs {
		if !c.Active {
			continue
		}
		total += c.Monthly()
	}
	return total
}

// MonthlyLaborTotal sums the fully loaded monthly cost of every labor entry.
func MonthlyLaborTotal(entries []LaborCost) float64 {
	total := 0.0
	for _, e := range entries {
		if e == nil {
			continue
		}
		total += e.MonthlyCost()
	}
	return total
}

// FixedCostPct expresses fixed and labor costs as a percentage of estimated revenue.
// It is 0 when revenue is not positive.
func FixedCostPct(monthlyFixed, monthlyLabor, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return (monthlyFixed + monthlyLabor) / revenue * 100
}

// CategoryTotal is the monthly amount of active costs sharing a category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Monthly  float64 `json:"monthly"`
}

// KindTotal is the monthly amount of labor entries of one kind.
type KindTotal struct {
	Kind    LaborKind `json:"kind"`
	Monthly float64   `json:"monthly"`
}

// Totals is the normalized view of all operating costs.
type Totals struct {
	MonthlyFixed   float64         `json:"monthly_fixed"`
	MonthlyLabor   float64         `json:"monthly_labor"`
	Revenue        float64         `json:"estimated_monthly_revenue"`
	FixedCostPct   float64         `json:"fixed_cost_pct"`
	ByCategory     []CategoryTotal `json:"by_category"`
	LaborByKind    []KindTotal     `json:"labor_by_kind"`
	UnknownEntries []string        `json:"unknown_frequency_entries,omitempty"`
}

// Summarize normalizes costs and labor and derives the fixed cost percentage for revenue.
func Summarize(costs []RecurringCost, labor []LaborCost, revenue float64) Totals {
	t := Totals{
		MonthlyFixed: MonthlyFixedTotal(costs),
		MonthlyLabor: MonthlyLaborTotal(labor),
		Revenue:      revenue,
	}
	t.FixedCostPct = FixedCostPct(t.MonthlyFixed, t.MonthlyLabor, revenue)

	byCategory := make(map[string]float64)
	for _, c := range costs {
		if !c.Active {
			continue
		}
		if !c.Frequency.Known() {
			t.UnknownEntries = append(t.UnknownEntries, c.Name)
			continue
		}
		byCategory[c.Category] += c.Monthly()
	}
	for category, monthly := range byCategory {
		t.ByCategory = append(t.ByCategory, CategoryTotal{Category: category, Monthly: monthly})
	}
	sort.Slice(t.ByCategory, func(i, j int) bool {
		return t.ByCategory[i].Category < t.ByCategory[j].Category
	})

	byKind := make(map[LaborKind]float64)
	for _, e := range labor {
		if e == nil {
			continue
		}
		byKind[e.Kind()] += e.MonthlyCost()
	}
	for _, kind := range []LaborKind{KindOwnerDraw, KindEmployee, KindFreelancer} {
		if monthly, ok := byKind[kind]; ok {
			t.LaborByKind = append(t.LaborByKind, KindTotal{Kind: kind, Monthly: monthly})
		}
	}

	return t
}
