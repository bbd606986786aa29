package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/precifica/internal/margins"
	"github.com/Simplici0/precifica/internal/pricing"
)

// MarkupColumns is the column order of the markup table export.
var MarkupColumns = []string{"category", "channel", "total_cost_pct", "markup_multiplier", "status"}

// MarginColumns is the column order of the margin analysis export.
var MarginColumns = []string{
	"product",
	"quantity_sold",
	"revenue",
	"avg_sale_price",
	"cost_price",
	"suggested_direct_price",
	"suggested_marketplace_price",
	"volume_share_pct",
	"revenue_share_pct",
	"current_margin_pct",
	"suggested_direct_margin_pct",
	"suggested_marketplace_margin_pct",
	"matched",
}

// PortfolioLabel marks the summary row of the margin export.
const PortfolioLabel = "PORTFOLIO"

// Writer writes delimited exports.
type Writer struct {
	Delimiter rune
}

// NewWriter returns a Writer using delimiter, or a comma when delimiter is zero.
func NewWriter(delimiter rune) Writer {
	if delimiter == 0 {
		delimiter = ','
	}
	return Writer{Delimiter: delimiter}
}

func (w Writer) csv(out io.Writer) *csv.Writer {
	cw := csv.NewWriter(out)
	cw.Comma = w.Delimiter
	return cw
}

// WriteMarkup writes one line per markup result. Undefined markups are written as "undefined".
func (w Writer) WriteMarkup(out io.Writer, rows []pricing.MarkupResult) error {
	cw := w.csv(out)
	if err := cw.Write(MarkupColumns); err != nil {
		return fmt.Errorf("write markup header: %w", err)
	}
	for _, r := range rows {
		multiplier := ""
		switch r.Status {
		case pricing.StatusOK:
			multiplier = r.Markup.String()
		case pricing.StatusUndefined:
			multiplier = "undefined"
		}
		record := []string{r.Category, r.Channel, money(r.TotalCostPct), multiplier, string(r.Status)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write markup row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush markup export: %w", err)
	}
	return nil
}

// WriteMargins writes the margin rows followed by a portfolio summary row.
func (w Writer) WriteMargins(out io.Writer, report margins.Report) error {
	cw := w.csv(out)
	if err := cw.Write(MarginColumns); err != nil {
		return fmt.Errorf("write margins header: %w", err)
	}
	for _, r := range report.Rows {
		record := []string{
			r.Product,
			quantity(r.QuantitySold),
			money(r.Revenue),
			money(r.AvgSalePrice),
			money(r.CostPrice),
			money(r.SuggestedDirectPrice),
			money(r.SuggestedMarketplacePrice),
			money(r.VolumeSharePct),
			money(r.RevenueSharePct),
			money(r.CurrentMarginPct),
			money(r.SuggestedDirectMarginPct),
			money(r.SuggestedMarketplaceMarginPct),
			strconv.FormatBool(r.Matched),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write margins row: %w", err)
		}
	}

	summary := make([]string, len(MarginColumns))
	summary[0] = PortfolioLabel
	summary[1] = quantity(report.TotalQuantity)
	summary[2] = money(report.TotalRevenue)
	summary[9] = money(report.Portfolio.CurrentWeighted)
	summary[10] = money(report.Portfolio.SuggestedDirectWeighted)
	summary[11] = money(report.Portfolio.SuggestedMarketplaceWeighted)
	if err := cw.Write(summary); err != nil {
		return fmt.Errorf("write margins summary: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush margins export: %w", err)
	}
	return nil
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func quantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}
