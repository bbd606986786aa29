package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Simplici0/precifica/internal/pricing"
)

var (
	// ErrNotFound is returned when an update or delete targets a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid wraps validation failures of incoming records.
	ErrInvalid = errors.New("invalid input")
	// ErrConflict is returned when a write would duplicate a unique value.
	ErrConflict = errors.New("already exists")
)

// Store persists the configuration, cost, catalog and sales records of the single operator account.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New returns a Store backed by a migrated database.
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// writeError wraps err, reporting unique constraint violations as ErrConflict.
func writeError(err error, action string) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%s: %w", action, ErrConflict)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func newID() string {
	return uuid.NewString()
}

func expectAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for %s: %w", what, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GeneralConfig returns the general configuration, or nil when it was never saved.
func (s *Store) GeneralConfig(ctx context.Context) (*pricing.GeneralConfig, error) {
	var g pricing.GeneralConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT estimated_monthly_revenue, tax_rate_pct, card_fee_pct, marketing_investment_pct, operational_reserve_pct
		FROM general_config
		WHERE id = 1
	`).Scan(
		&g.EstimatedMonthlyRevenue,
		&g.TaxRatePct,
		&g.CardFeePct,
		&g.MarketingInvestmentPct,
		&g.OperationalReservePct,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query general_config: %w", err)
	}
	return &g, nil
}

// SaveGeneralConfig writes the singleton general configuration. The last write wins.
func (s *Store) SaveGeneralConfig(ctx context.Context, g pricing.GeneralConfig) error {
	if err := g.Validate(); err != nil {
		return invalid(err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO general_config (
			id,
			estimated_monthly_revenue,
			tax_rate_pct,
			card_fee_pct,
			marketing_investment_pct,
			operational_reserve_pct
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estimated_monthly_revenue = excluded.estimated_monthly_revenue,
			tax_rate_pct = excluded.tax_rate_pct,
			card_fee_pct = excluded.card_fee_pct,
			marketing_investment_pct = excluded.marketing_investment_pct,
			operational_reserve_pct = excluded.operational_reserve_pct,
			updated_at = CURRENT_TIMESTAMP
	`,
		g.EstimatedMonthlyRevenue,
		g.TaxRatePct,
		g.CardFeePct,
		g.MarketingInvestmentPct,
		g.OperationalReservePct,
	)
	if err != nil {
		return fmt.Errorf("upsert general_config: %w", err)
	}
	return nil
}

// ListChannels returns every channel, active or not, ordered by name.
func (s *Store) ListChannels(ctx context.Context) ([]pricing.SalesChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, marketplace_fee_pct, early_payment_fee_pct, active
		FROM sales_channels
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query sales channels: %w", err)
	}
	defer rows.Close()

	channels := make([]pricing.SalesChannel, 0)
	for rows.Next() {
		var ch pricing.SalesChannel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Kind, &ch.MarketplaceFeePct, &ch.EarlyPaymentFeePct, &ch.Active); err != nil {
			return nil, fmt.Errorf("scan sales channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales channels: %w", err)
	}

	return channels, nil
}

// CreateChannel inserts a channel and returns it with its new id.
func (s *Store) CreateChannel(ctx context.Context, ch pricing.SalesChannel) (pricing.SalesChannel, error) {
	ch.Name = strings.TrimSpace(ch.Name)
	if err := ch.Validate(); err != nil {
		return pricing.SalesChannel{}, invalid(err)
	}
	ch.ID = newID()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_channels (id, name, kind, marketplace_fee_pct, early_payment_fee_pct, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ch.ID, ch.Name, ch.Kind, ch.MarketplaceFeePct, ch.EarlyPaymentFeePct, ch.Active); err != nil {
		return pricing.SalesChannel{}, writeError(err, "insert sales channel "+ch.Name)
	}
	return ch, nil
}

// UpdateChannel replaces the channel with ch.ID.
func (s *Store) UpdateChannel(ctx context.Context, ch pricing.SalesChannel) error {
	ch.Name = strings.TrimSpace(ch.Name)
	if err := ch.Validate(); err != nil {
		return invalid(err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE sales_channels
		SET
			name = ?,
			kind = ?,
			marketplace_fee_pct = ?,
			early_payment_fee_pct = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ch.Name, ch.Kind, ch.MarketplaceFeePct, ch.EarlyPaymentFeePct, ch.Active, ch.ID)
	if err != nil {
		return writeError(err, "update sales channel "+ch.Name)
	}
	return expectAffected(result, "sales channel")
}

// ListCategories returns every category configuration ordered by category.
func (s *Store) ListCategories(ctx context.Context) ([]pricing.CategoryConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, desired_profit_pct, operational_reserve_pct, flat_discount_voucher_amount, flat_marketing_voucher_amount
		FROM category_configs
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("query category configs: %w", err)
	}
	defer rows.Close()

	categories := make([]pricing.CategoryConfig, 0)
	for rows.Next() {
		var c pricing.CategoryConfig
		if err := rows.Scan(&c.Category, &c.DesiredProfitPct, &c.OperationalReservePct, &c.FlatDiscountVoucherAmount, &c.FlatMarketingVoucherAmount); err != nil {
			return nil, fmt.Errorf("scan category config: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category configs: %w", err)
	}

	return categories, nil
}

// SaveCategory inserts or replaces the configuration of c.Category.
func (s *Store) SaveCategory(ctx context.Context, c pricing.CategoryConfig) error {
	c.Category = strings.TrimSpace(c.Category)
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_configs (
			category,
			desired_profit_pct,
			operational_reserve_pct,
			flat_discount_voucher_amount,
			flat_marketing_voucher_amount
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			desired_profit_pct = excluded.desired_profit_pct,
			operational_reserve_pct = excluded.operational_reserve_pct,
			flat_discount_voucher_amount = excluded.flat_discount_voucher_amount,
			flat_marketing_voucher_amount = excluded.flat_marketing_voucher_amount,
			updated_at = CURRENT_TIMESTAMP
	`, c.Category, c.DesiredProfitPct, c.OperationalReservePct, c.FlatDiscountVoucherAmount, c.FlatMarketingVoucherAmount)
	if err != nil {
		return fmt.Errorf("upsert category config: %w", err)
	}
	return nil
}

// DeleteCategory removes a category configuration.
func (s *Store) DeleteCategory(ctx context.Context, category string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM category_configs WHERE category = ?`, strings.TrimSpace(category))
	if err != nil {
		return fmt.Errorf("delete category config: %w", err)
	}
	return expectAffected(result, "category config")
}
