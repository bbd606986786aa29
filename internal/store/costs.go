package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/precifica/internal/costs"
)

// ListRecurringCosts returns every recurring cost ordered by category and name.
// Rows with a frequency the engine does not know are returned as-is and logged; they count as zero.
func (s *Store) ListRecurringCosts(ctx context.Context) ([]costs.RecurringCost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, amount, frequency, active
		FROM recurring_costs
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query recurring costs: %w", err)
	}
	defer rows.Close()

	items := make([]costs.RecurringCost, 0)
	for rows.Next() {
		var c costs.RecurringCost
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Amount, &c.Frequency, &c.Active); err != nil {
			return nil, fmt.Errorf("scan recurring cost: %w", err)
		}
		if !c.Frequency.Known() {
			s.logger.Warn().
				Str("id", c.ID).
				Str("name", c.Name).
				Str("frequency", string(c.Frequency)).
				Msg("recurring cost has an unknown frequency and contributes zero")
		}
		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring costs: %w", err)
	}

	return items, nil
}

// CreateRecurringCost inserts a cost and returns it with its new id.
func (s *Store) CreateRecurringCost(ctx context.Context, c costs.RecurringCost) (costs.RecurringCost, error) {
	c = normalizeCost(c)
	if err := c.Validate(); err != nil {
		return costs.RecurringCost{}, invalid(err)
	}
	c.ID = newID()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_costs (id, name, category, amount, frequency, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Category, c.Amount, c.Frequency, c.Active); err != nil {
		return costs.RecurringCost{}, fmt.Errorf("insert recurring cost: %w", err)
	}
	return c, nil
}

// UpdateRecurringCost replaces the cost with c.ID.
func (s *Store) UpdateRecurringCost(ctx context.Context, c costs.RecurringCost) error {
	c = normalizeCost(c)
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_costs
		SET
			name = ?,
			category = ?,
			amount = ?,
			frequency = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.Category, c.Amount, c.Frequency, c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("update recurring cost: %w", err)
	}
	return expectAffected(result, "recurring cost")
}

// DeleteRecurringCost removes a cost.
func (s *Store) DeleteRecurringCost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recurring_costs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring cost: %w", err)
	}
	return expectAffected(result, "recurring cost")
}

func normalizeCost(c costs.RecurringCost) costs.RecurringCost {
	c.Name = strings.TrimSpace(c.Name)
	c.Category = strings.TrimSpace(c.Category)
	if f, err := costs.ParseFrequency(string(c.Frequency)); err == nil {
		c.Frequency = f
	}
	return c
}
