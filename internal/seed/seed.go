package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/precifica/internal/pricing"
)

const (
	defaultDirectChannel      = "Direct"
	defaultMarketplaceChannel = "Marketplace"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
// It never overwrites values the operator already changed.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureGeneralConfig(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureChannels(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureGeneralConfig(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO general_config (
			id,
			estimated_monthly_revenue,
			tax_rate_pct,
			card_fee_pct,
			marketing_investment_pct,
			operational_reserve_pct
		) VALUES (1, 0, 0, 0, 0, 0)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert general config singleton: %w", err)
	}
	return countInsert(result, stats)
}

// ensureChannels creates the default channels on an empty channel table only,
// so renamed or edited channels are never recreated.
func ensureChannels(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales_channels`).Scan(&count); err != nil {
		return fmt.Errorf("count sales channels: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []pricing.SalesChannel{
		{Name: defaultDirectChannel, Kind: pricing.KindDirect, Active: true},
		{Name: defaultMarketplaceChannel, Kind: pricing.KindMarketplace, Active: true},
	}
	for _, ch := range defaults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sales_channels (id, name, kind, marketplace_fee_pct, early_payment_fee_pct, active)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), ch.Name, ch.Kind, ch.MarketplaceFeePct, ch.EarlyPaymentFeePct, ch.Active); err != nil {
			return fmt.Errorf("insert default channel %s: %w", ch.Name, err)
		}
		stats.Inserts++
	}
	return nil
}

func countInsert(result sql.Result, stats *Stats) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read seed affected rows: %w", err)
	}
	stats.Inserts += int(affected)
	return nil
}
