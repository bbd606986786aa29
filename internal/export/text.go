package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/precifica/internal/margins"
	"github.com/Simplici0/precifica/internal/pricing"
)

// WriteMarginsText writes a plain-text margin summary meant for reading, not parsing.
func WriteMarginsText(out io.Writer, report margins.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Revenue: %s\n", amount(report.TotalRevenue))
	fmt.Fprintf(&b, "Units sold: %s\n", humanize.CommafWithDigits(report.TotalQuantity, 2))
	fmt.Fprintf(&b, "Weighted margin (current): %s%%\n", pct(report.Portfolio.CurrentWeighted))
	fmt.Fprintf(&b, "Weighted margin (suggested direct): %s%%\n", pct(report.Portfolio.SuggestedDirectWeighted))
	fmt.Fprintf(&b, "Weighted margin (suggested marketplace): %s%%\n", pct(report.Portfolio.SuggestedMarketplaceWeighted))

	if report.UnmatchedCount > 0 {
		fmt.Fprintf(&b, "\nWarning: %d product(s) not found in the catalog; their cost is counted as zero.\n", report.UnmatchedCount)
	}

	b.WriteString("\nProducts:\n")
	for _, r := range report.Rows {
		flag := ""
		if !r.Matched {
			flag = " [unmatched]"
		}
		fmt.Fprintf(&b, "- %s%s: %s units, %s revenue (%s%%), margin %s%%\n",
			r.Product,
			flag,
			humanize.CommafWithDigits(r.QuantitySold, 2),
			amount(r.Revenue),
			pct(r.RevenueSharePct),
			pct(r.CurrentMarginPct),
		)
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return fmt.Errorf("write margins text: %w", err)
	}
	return nil
}

// WriteMarkupText writes the markup table with a warning line for every undefined pair.
func WriteMarkupText(out io.Writer, rows []pricing.MarkupResult) error {
	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString("No markup computed: general config, an active channel and a category are required.\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s / %s: total cost %s%%, markup %s\n", r.Category, r.Channel, pct(r.TotalCostPct), r.Markup)
	}
	for _, w := range pricing.Warnings(rows) {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	if _, err := io.WriteString(out, b.String()); err != nil {
		return fmt.Errorf("write markup text: %w", err)
	}
	return nil
}

func amount(v float64) string {
	return humanize.CommafWithDigits(roundCents(v), 2)
}

func pct(v float64) string {
	return money(v)
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
