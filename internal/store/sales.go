package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/Simplici0/precifica/internal/margins"
)

// saleTimeLayout keeps sold_at lexically ordered so period filters can run in SQL.
const saleTimeLayout = "2006-01-02 15:04:05"

// ListCatalog returns the catalog in insertion order. The order decides which product wins an ambiguous match.
func (s *Store) ListCatalog(ctx context.Context) ([]margins.CatalogProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, category, cost_price, direct_sale_price, marketplace_sale_price
		FROM catalog_products
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog products: %w", err)
	}
	defer rows.Close()

	products := make([]margins.CatalogProduct, 0)
	for rows.Next() {
		var p margins.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.CostPrice, &p.DirectSalePrice, &p.MarketplaceSalePrice); err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog products: %w", err)
	}

	return products, nil
}

// CreateCatalogProduct appends a product to the catalog.
func (s *Store) CreateCatalogProduct(ctx context.Context, p margins.CatalogProduct) (margins.CatalogProduct, error) {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := validateProduct(p); err != nil {
		return margins.CatalogProduct{}, invalid(err)
	}
	p.ID = newID()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_products (id, code, name, category, cost_price, direct_sale_price, marketplace_sale_price, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog_products))
	`, p.ID, p.Code, p.Name, p.Category, p.CostPrice, p.DirectSalePrice, p.MarketplaceSalePrice); err != nil {
		return margins.CatalogProduct{}, fmt.Errorf("insert catalog product: %w", err)
	}
	return p, nil
}

func validateProduct(p margins.CatalogProduct) error {
	var err error
	if p.Name == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if p.CostPrice < 0 || p.DirectSalePrice < 0 || p.MarketplaceSalePrice < 0 {
		err = multierr.Append(err, errors.New("prices must be >= 0"))
	}
	return err
}

// SaleBatch is the outcome of one sales import.
type SaleBatch struct {
	ID    string `json:"id"`
	Items int    `json:"items"`
}

// InsertSales stores a batch of sale line items atomically. Either every item is stored or none is.
func (s *Store) InsertSales(ctx context.Context, source string, items []margins.SaleLineItem) (SaleBatch, error) {
	if err := validateSales(items); err != nil {
		return SaleBatch{}, invalid(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaleBatch{}, fmt.Errorf("begin sales transaction: %w", err)
	}

	batch := SaleBatch{ID: newID(), Items: len(items)}
	if _, err := tx.ExecContext(ctx, `INSERT INTO sale_batches (id, source) VALUES (?, ?)`, batch.ID, strings.TrimSpace(source)); err != nil {
		_ = tx.Rollback()
		return SaleBatch{}, fmt.Errorf("insert sale batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sale_line_items (batch_id, product_code, product_name, quantity, unit_price, total_value, channel, sold_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return SaleBatch{}, fmt.Errorf("prepare sale insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx,
			batch.ID,
			strings.TrimSpace(item.ProductCode),
			strings.TrimSpace(item.ProductName),
			item.Quantity,
			item.UnitPrice,
			item.TotalValue,
			strings.TrimSpace(item.Channel),
			item.Date.UTC().Format(saleTimeLayout),
		); err != nil {
			_ = tx.Rollback()
			return SaleBatch{}, fmt.Errorf("insert sale line item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SaleBatch{}, fmt.Errorf("commit sales transaction: %w", err)
	}

	return batch, nil
}

func validateSales(items []margins.SaleLineItem) error {
	var err error
	for i, item := range items {
		if strings.TrimSpace(item.ProductCode) == "" && strings.TrimSpace(item.ProductName) == "" {
			err = multierr.Append(err, fmt.Errorf("item %d: product_code or product_name is required", i))
		}
		if item.Quantity < 0 || item.TotalValue < 0 || item.UnitPrice < 0 {
			err = multierr.Append(err, fmt.Errorf("item %d: quantity and values must be >= 0", i))
		}
		if item.Date.IsZero() {
			err = multierr.Append(err, fmt.Errorf("item %d: date is required", i))
		}
	}
	return err
}

// ListSales returns the sales dated within [from, to]. A zero bound is open.
func (s *Store) ListSales(ctx context.Context, from, to time.Time) ([]margins.SaleLineItem, error) {
	query := `
		SELECT product_code, product_name, quantity, unit_price, total_value, channel, sold_at
		FROM sale_line_items
		WHERE 1 = 1`
	var args []any
	if !from.IsZero() {
		query += ` AND sold_at >= ?`
		args = append(args, from.UTC().Format(saleTimeLayout))
	}
	if !to.IsZero() {
		query += ` AND sold_at <= ?`
		args = append(args, to.UTC().Format(saleTimeLayout))
	}
	query += ` ORDER BY sold_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sale line items: %w", err)
	}
	defer rows.Close()

	items := make([]margins.SaleLineItem, 0)
	for rows.Next() {
		var (
			item   margins.SaleLineItem
			soldAt string
		)
		if err := rows.Scan(&item.ProductCode, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.TotalValue, &item.Channel, &soldAt); err != nil {
			return nil, fmt.Errorf("scan sale line item: %w", err)
		}
		if item.Date, err = time.Parse(saleTimeLayout, soldAt); err != nil {
			return nil, fmt.Errorf("parse sale date %q: %w", soldAt, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale line items: %w", err)
	}

	return items, nil
}
