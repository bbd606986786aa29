package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/precifica/internal/costs"
)

// LaborRecord is the flat, persisted form of a labor entry. Only the fields of its Kind are meaningful.
type LaborRecord struct {
	ID                 string          `json:"id"`
	Kind               costs.LaborKind `json:"kind"`
	Name               string          `json:"name"`
	Amount             float64         `json:"amount,omitempty"`
	Quantity           float64         `json:"quantity,omitempty"`
	BaseSalary         float64         `json:"base_salary,omitempty"`
	MealDailyRate      float64         `json:"meal_daily_rate,omitempty"`
	DaysPerWeek        float64         `json:"days_per_week,omitempty"`
	TransportAllowance float64         `json:"transport_allowance,omitempty"`
	OtherBenefits      float64         `json:"other_benefits,omitempty"`
	OvertimeHours      float64         `json:"overtime_hours,omitempty"`
	OvertimePremiumPct float64         `json:"overtime_premium_pct,omitempty"`
	NightHours         float64         `json:"night_hours,omitempty"`
	NightPremiumPct    float64         `json:"night_premium_pct,omitempty"`
	DailyRate          float64         `json:"daily_rate,omitempty"`
	Headcount          float64         `json:"headcount,omitempty"`
	DaysPerMonth       float64         `json:"days_per_month,omitempty"`
	MonthlyCost        float64         `json:"monthly_cost"`
}

// Cost converts the record into its labor variant.
func (r LaborRecord) Cost() (costs.LaborCost, error) {
	switch costs.LaborKind(strings.ToLower(strings.TrimSpace(string(r.Kind)))) {
	case costs.KindOwnerDraw:
		return costs.OwnerDraw{ID: r.ID, Name: r.Name, Amount: r.Amount}, nil
	case costs.KindFreelancer:
		return costs.Freelancer{
			ID:           r.ID,
			Name:         r.Name,
			DailyRate:    r.DailyRate,
			Headcount:    r.Headcount,
			DaysPerMonth: r.DaysPerMonth,
		}, nil
	case costs.KindEmployee:
		return costs.Employee{
			ID:                 r.ID,
			Name:               r.Name,
			Quantity:           r.Quantity,
			BaseSalary:         r.BaseSalary,
			MealDailyRate:      r.MealDailyRate,
			DaysPerWeek:        r.DaysPerWeek,
			TransportAllowance: r.TransportAllowance,
			OtherBenefits:      r.OtherBenefits,
			OvertimeHours:      r.OvertimeHours,
			OvertimePremiumPct: r.OvertimePremiumPct,
			NightHours:         r.NightHours,
			NightPremiumPct:    r.NightPremiumPct,
		}, nil
	default:
		return nil, fmt.Errorf("unknown labor kind %q", r.Kind)
	}
}

// RecordFor flattens a labor variant.
func RecordFor(c costs.LaborCost) LaborRecord {
	r := LaborRecord{Kind: c.Kind(), MonthlyCost: c.MonthlyCost()}
	switch v := c.(type) {
	case costs.OwnerDraw:
		r.ID, r.Name, r.Amount = v.ID, v.Name, v.Amount
	case costs.Freelancer:
		r.ID, r.Name = v.ID, v.Name
		r.DailyRate, r.Headcount, r.DaysPerMonth = v.DailyRate, v.Headcount, v.DaysPerMonth
	case costs.Employee:
		r.ID, r.Name = v.ID, v.Name
		r.Quantity = v.Quantity
		r.BaseSalary = v.BaseSalary
		r.MealDailyRate = v.MealDailyRate
		r.DaysPerWeek = v.DaysPerWeek
		r.TransportAllowance = v.TransportAllowance
		r.OtherBenefits = v.OtherBenefits
		r.OvertimeHours = v.OvertimeHours
		r.OvertimePremiumPct = v.OvertimePremiumPct
		r.NightHours = v.NightHours
		r.NightPremiumPct = v.NightPremiumPct
	}
	return r
}

// ListLabor returns every labor entry in insertion order, with its monthly cost filled in.
func (s *Store) ListLabor(ctx context.Context) ([]LaborRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, kind, name, amount, quantity, base_salary, meal_daily_rate, days_per_week,
			transport_allowance, other_benefits, overtime_hours, overtime_premium_pct,
			night_hours, night_premium_pct, daily_rate, headcount, days_per_month
		FROM labor_entries
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query labor entries: %w", err)
	}
	defer rows.Close()

	records := make([]LaborRecord, 0)
	for rows.Next() {
		var r LaborRecord
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Name, &r.Amount, &r.Quantity, &r.BaseSalary, &r.MealDailyRate, &r.DaysPerWeek,
			&r.TransportAllowance, &r.OtherBenefits, &r.OvertimeHours, &r.OvertimePremiumPct,
			&r.NightHours, &r.NightPremiumPct, &r.DailyRate, &r.Headcount, &r.DaysPerMonth,
		); err != nil {
			return nil, fmt.Errorf("scan labor entry: %w", err)
		}
		if c, err := r.Cost(); err == nil {
			r.MonthlyCost = c.MonthlyCost()
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor entries: %w", err)
	}

	return records, nil
}

// ListLaborCosts returns every labor entry as its variant.
func (s *Store) ListLaborCosts(ctx context.Context) ([]costs.LaborCost, error) {
	records, err := s.ListLabor(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]costs.LaborCost, 0, len(records))
	for _, r := range records {
		c, err := r.Cost()
		if err != nil {
			s.logger.Warn().Err(err).Str("id", r.ID).Msg("skipping labor entry")
			continue
		}
		entries = append(entries, c)
	}
	return entries, nil
}

// CreateLabor validates and inserts a labor entry, returning it with its id and monthly cost.
func (s *Store) CreateLabor(ctx context.Context, r LaborRecord) (LaborRecord, error) {
	r.ID = newID()
	r.Name = strings.TrimSpace(r.Name)
	c, err := r.Cost()
	if err != nil {
		return LaborRecord{}, invalid(err)
	}
	if err := c.Validate(); err != nil {
		return LaborRecord{}, invalid(err)
	}
	r = RecordFor(c)

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_entries (
			id, kind, name, amount, quantity, base_salary, meal_daily_rate, days_per_week,
			transport_allowance, other_benefits, overtime_hours, overtime_premium_pct,
			night_hours, night_premium_pct, daily_rate, headcount, days_per_month
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Kind, r.Name, r.Amount, r.Quantity, r.BaseSalary, r.MealDailyRate, r.DaysPerWeek,
		r.TransportAllowance, r.OtherBenefits, r.OvertimeHours, r.OvertimePremiumPct,
		r.NightHours, r.NightPremiumPct, r.DailyRate, r.Headcount, r.DaysPerMonth,
	); err != nil {
		return LaborRecord{}, fmt.Errorf("insert labor entry: %w", err)
	}
	return r, nil
}

// DeleteLabor removes a labor entry.
func (s *Store) DeleteLabor(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM labor_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete labor entry: %w", err)
	}
	return expectAffected(result, "labor entry")
}
