package margins

import (
	"sort"
	"strings"
	"time"
)

// CatalogProduct is a product the operator sells.
type CatalogProduct struct {
	ID                   string  `json:"id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	CostPrice            float64 `json:"cost_price"`
	DirectSalePrice      float64 `json:"direct_sale_price"`
	MarketplaceSalePrice float64 `json:"marketplace_sale_price"`
}

// SaleLineItem is one realized sale produced by the import subsystem.
type SaleLineItem struct {
	ProductCode string    `json:"product_code,omitempty"`
	ProductName string    `json:"product_name"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalValue  float64   `json:"total_value"`
	Channel     string    `json:"channel"`
	Date        time.Time `json:"date"`
}

// Row is the margin analysis of one product over a period.
type Row struct {
	ProductID                     string  `json:"product_id,omitempty"`
	Product                       string  `json:"product"`
	Category                      string  `json:"category,omitempty"`
	Matched                       bool    `json:"matched"`
	QuantitySold                  float64 `json:"quantity_sold"`
	Revenue                       float64 `json:"revenue"`
	AvgSalePrice                  float64 `json:"avg_sale_price"`
	CostPrice                     float64 `json:"cost_price"`
	SuggestedDirectPrice          float64 `json:"suggested_direct_price"`
	SuggestedMarketplacePrice     float64 `json:"suggested_marketplace_price"`
	VolumeSharePct                float64 `json:"volume_share_pct"`
	RevenueSharePct               float64 `json:"revenue_share_pct"`
	CurrentMarginPct              float64 `json:"current_margin_pct"`
	SuggestedDirectMarginPct      float64 `json:"suggested_direct_margin_pct"`
	SuggestedMarketplaceMarginPct float64 `json:"suggested_marketplace_margin_pct"`
}

// Portfolio holds the revenue-weighted margins of all rows.
type Portfolio struct {
	CurrentWeighted              float64 `json:"current_weighted"`
	SuggestedDirectWeighted      float64 `json:"suggested_direct_weighted"`
	SuggestedMarketplaceWeighted float64 `json:"suggested_marketplace_weighted"`
}

// Report is the result of reconciling sales against the catalog.
type Report struct {
	Rows           []Row     `json:"rows"`
	Portfolio      Portfolio `json:"portfolio"`
	TotalQuantity  float64   `json:"total_quantity"`
	TotalRevenue   float64   `json:"total_revenue"`
	UnmatchedCount int       `json:"unmatched_count"`
}

// PriceSuggester supplies the suggested direct and marketplace prices of a product.
type PriceSuggester interface {
	SuggestedPrices(p CatalogProduct) (direct, marketplace float64)
}

// CatalogPrices suggests the sale prices stored on the catalog product.
type CatalogPrices struct{}

// SuggestedPrices returns the product's stored direct and marketplace prices.
func (CatalogPrices) SuggestedPrices(p CatalogProduct) (float64, float64) {
	return p.DirectSalePrice, p.MarketplaceSalePrice
}

// MarginPct is the contribution margin of a sale price over a cost, in percent.
// It is 0 when the price is not positive.
func MarginPct(price, cost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - cost) / price * 100
}

// WeightedMargin averages margins weighted by revenue share percentages.
func WeightedMargin(marginPcts, revenueSharePcts []float64) float64 {
	total := 0.0
	for i := range marginPcts {
		if i >= len(revenueSharePcts) {
			break
		}
		total += marginPcts[i] * revenueSharePcts[i] / 100
	}
	return total
}

// Analyze groups sales by catalog product and computes realized and suggested margins.
// Sales that match no product are kept with a zero cost basis and Matched=false.
func Analyze(sales []SaleLineItem, catalog []CatalogProduct, prices PriceSuggester) Report {
	if prices == nil {
		prices = CatalogPrices{}
	}
	m := NewMatcher(catalog)

	groups := make(map[string]*Row)
	var order []string
	for _, sale := range sales {
		key, product, ok := m.Match(sale)
		row, exists := groups[key]
		if !exists {
			row = &Row{Product: displayName(sale)}
			if ok {
				*row = Row{
					ProductID: product.ID,
					Product:   product.Name,
					Category:  product.Category,
					Matched:   true,
					CostPrice: product.CostPrice,
				}
				row.SuggestedDirectPrice, row.SuggestedMarketplacePrice = prices.SuggestedPrices(product)
			}
			groups[key] = row
			order = append(order, key)
		}
		row.QuantitySold += sale.Quantity
		row.Revenue += sale.TotalValue
	}

	report := Report{Rows: make([]Row, 0, len(order))}
	for _, key := range order {
		row := groups[key]
		report.TotalQuantity += row.QuantitySold
		report.TotalRevenue += row.Revenue
		if !row.Matched {
			report.UnmatchedCount++
		}
	}

	for _, key := range order {
		row := *groups[key]
		if row.QuantitySold > 0 {
			row.AvgSalePrice = row.Revenue / row.QuantitySold
		}
		if report.TotalQuantity > 0 {
			row.VolumeSharePct = row.QuantitySold / report.TotalQuantity * 100
		}
		if report.TotalRevenue > 0 {
			row.RevenueSharePct = row.Revenue / report.TotalRevenue * 100
		}
		row.CurrentMarginPct = MarginPct(row.AvgSalePrice, row.CostPrice)
		row.SuggestedDirectMarginPct = MarginPct(row.SuggestedDirectPrice, row.CostPrice)
		row.SuggestedMarketplaceMarginPct = MarginPct(row.SuggestedMarketplacePrice, row.CostPrice)

		report.Rows = append(report.Rows, row)
	}

	current := make([]float64, len(report.Rows))
	direct := make([]float64, len(report.Rows))
	marketplace := make([]float64, len(report.Rows))
	shares := make([]float64, len(report.Rows))
	for i, row := range report.Rows {
		current[i] = row.CurrentMarginPct
		direct[i] = row.SuggestedDirectMarginPct
		marketplace[i] = row.SuggestedMarketplaceMarginPct
		shares[i] = row.RevenueSharePct
	}
	report.Portfolio = Portfolio{
		CurrentWeighted:              WeightedMargin(current, shares),
		SuggestedDirectWeighted:      WeightedMargin(direct, shares),
		SuggestedMarketplaceWeighted: WeightedMargin(marketplace, shares),
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].Revenue != report.Rows[j].Revenue {
			return report.Rows[i].Revenue > report.Rows[j].Revenue
		}
		return report.Rows[i].Product < report.Rows[j].Product
	})

	return report
}

// FilterByPeriod keeps sales dated within [from, to]. A zero bound is open.
func FilterByPeriod(sales []SaleLineItem, from, to time.Time) []SaleLineItem {
	out := make([]SaleLineItem, 0, len(sales))
	for _, s := range sales {
		if !from.IsZero() && s.Date.Before(from) {
			continue
		}
		if !to.IsZero() && s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Unmatched returns the rows that could not be reconciled with the catalog.
func (r Report) Unmatched() []Row {
	var rows []Row
	for _, row := range r.Rows {
		if !row.Matched {
			rows = append(rows, row)
		}
	}
	return rows
}

func displayName(s SaleLineItem) string {
	if name := strings.TrimSpace(s.ProductName); name != "" {
		return name
	}
	return strings.TrimSpace(s.ProductCode)
}
