package costs

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestMonthlyFixedTotal_FrequencyFactors(t *testing.T) {
	weekly := []RecurringCost{{Name: "Gas", Amount: 100, Frequency: Weekly, Active: true}}
	yearly := []RecurringCost{{Name: "License", Amount: 1200, Frequency: Yearly, Active: true}}
	biweekly := []RecurringCost{{Name: "Cleaning", Amount: 150, Frequency: Biweekly, Active: true}}
	monthly := []RecurringCost{{Name: "Rent", Amount: 3000, Frequency: Monthly, Active: true}}

	nearlyEqual(t, "weekly", MonthlyFixedTotal(weekly), 433)
	nearlyEqual(t, "yearly", MonthlyFixedTotal(yearly), 100)
	nearlyEqual(t, "biweekly", MonthlyFixedTotal(biweekly), 300)
	nearlyEqual(t, "monthly", MonthlyFixedTotal(monthly), 3000)
}

func TestMonthlyFixedTotal_SkipsInactiveAndUnknown(t *testing.T) {
	list := []RecurringCost{
		{Name: "Rent", Amount: 3000, Frequency: Monthly, Active: true},
		{Name: "Old lease", Amount: 5000, Frequency: Monthly, Active: false},
		{Name: "Legacy", Amount: 800, Frequency: Frequency("daily"), Active: true},
	}

	nearlyEqual(t, "total", MonthlyFixedTotal(list), 3000)
}

func TestMonthlyFixedTotal_Empty(t *testing.T) {
	nearlyEqual(t, "total", MonthlyFixedTotal(nil), 0)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Weekly ")
	if err != nil {
		t.Fatalf("ParseFrequency: %v", err)
	}
	if f != Weekly {
		t.Fatalf("frequency = %q, want %q", f, Weekly)
	}

	if _, err := ParseFrequency("daily"); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestValidateAll_CollectsEveryFailure(t *testing.T) {
	list := []RecurringCost{
		{Name: "Rent", Amount: 3000, Frequency: Monthly},
		{Name: "", Amount: -1, Frequency: Monthly},
		{Name: "Legacy", Amount: 10, Frequency: Frequency("daily")},
	}

	err := ValidateAll(list)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"name is required", "amount must be >= 0", "unknown frequency"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected error chain to include ErrUnknownFrequency")
	}
}

func TestMonthlyLaborTotal_AllVariants(t *testing.T) {
	entries := []LaborCost{
		OwnerDraw{Name: "Partners", Amount: 5000},
		Freelancer{Name: "Weekend cook", DailyRate: 150, Headcount: 2, DaysPerMonth: 8},
		nil,
	}

	nearlyEqual(t, "labor total", MonthlyLaborTotal(entries), 5000+150*2*8)
}

func TestEmployee_FullyLoadedCost(t *testing.T) {
	e := Employee{
		Name:               "Cashier",
		Quantity:           2,
		BaseSalary:         1000,
		MealDailyRate:      10,
		DaysPerWeek:        5,
		TransportAllowance: 100,
		OtherBenefits:      50,
		OvertimeHours:      10,
		OvertimePremiumPct: 50,
		NightHours:         20,
		NightPremiumPct:    20,
	}

	b := e.Breakdown()
	hourly := 1000.0 / 220.0

	nearlyEqual(t, "employer contribution", b.EmployerContribution, 200)
	nearlyEqual(t, "severance fund", b.SeveranceFund, 80)
	nearlyEqual(t, "13th salary", b.ThirteenthSalary, 1000.0/12)
	nearlyEqual(t, "vacation", b.Vacation, 1000.0/12*(1+1.0/3.0))
	nearlyEqual(t, "severance provision", b.SeveranceProvision, 32)
	nearlyEqual(t, "meal", b.MealAllowance, 216.5)
	nearlyEqual(t, "overtime", b.Overtime, 10*hourly*1.5)
	nearlyEqual(t, "night", b.NightShift, 20*hourly*0.2)

	perHead := 1000 + 200 + 80 + 1000.0/12 + 1000.0/12*(1+1.0/3.0) + 32 + 216.5 + 100 + 50 + 10*hourly*1.5 + 20*hourly*0.2
	if math.Abs(b.PerHead-perHead) > 1e-6 {
		t.Fatalf("per head = %v, want %v", b.PerHead, perHead)
	}
	if math.Abs(e.MonthlyCost()-2*perHead) > 1e-6 {
		t.Fatalf("monthly cost = %v, want %v", e.MonthlyCost(), 2*perHead)
	}
}

func TestEmployee_ValidateRejectsNegativeValues(t *testing.T) {
	e := Employee{Name: "Cook", Quantity: 1, BaseSalary: -1, DaysPerWeek: 8}
	err := e.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "base_salary") || !strings.Contains(err.Error(), "days_per_week") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFixedCostPct(t *testing.T) {
	nearlyEqual(t, "pct", FixedCostPct(3000, 7000, 50000), 20)
	nearlyEqual(t, "zero revenue", FixedCostPct(3000, 7000, 0), 0)
	nearlyEqual(t, "negative revenue", FixedCostPct(3000, 7000, -10), 0)
}

func TestSummarize_GroupsByCategoryAndKind(t *testing.T) {
	list := []RecurringCost{
		{Name: "Rent", Category: "occupancy", Amount: 3000, Frequency: Monthly, Active: true},
		{Name: "Insurance", Category: "occupancy", Amount: 1200, Frequency: Yearly, Active: true},
		{Name: "Software", Category: "admin", Amount: 100, Frequency: Weekly, Active: true},
		{Name: "Legacy", Category: "admin", Amount: 99, Frequency: Frequency("daily"), Active: true},
	}
	labor := []LaborCost{
		OwnerDraw{Name: "Partners", Amount: 4000},
		Freelancer{Name: "Helper", DailyRate: 100, Headcount: 1, DaysPerMonth: 10},
	}

	totals := Summarize(list, labor, 50000)

	nearlyEqual(t, "monthly fixed", totals.MonthlyFixed, 3000+100+433)
	nearlyEqual(t, "monthly labor", totals.MonthlyLabor, 5000)
	nearlyEqual(t, "fixed cost pct", totals.FixedCostPct, (3533.0+5000.0)/50000*100)

	if len(totals.ByCategory) != 2 || totals.ByCategory[0].Category != "admin" || totals.ByCategory[1].Category != "occupancy" {
		t.Fatalf("unexpected categories: %+v", totals.ByCategory)
	}
	nearlyEqual(t, "occupancy", totals.ByCategory[1].Monthly, 3100)
	if len(totals.LaborByKind) != 2 || totals.LaborByKind[0].Kind != KindOwnerDraw {
		t.Fatalf("unexpected labor kinds: %+v", totals.LaborByKind)
	}
	if len(totals.UnknownEntries) != 1 || totals.UnknownEntries[0] != "Legacy" {
		t.Fatalf("expected Legacy flagged as unknown frequency, got %+v", totals.UnknownEntries)
	}
}
