package margins

import (
	"math"
	"testing"
	"time"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func testCatalog() []CatalogProduct {
	return []CatalogProduct{
		{ID: "p1", Code: "BRG-01", Name: "Classic Burger", Category: "burgers", CostPrice: 6, DirectSalePrice: 20, MarketplaceSalePrice: 25},
		{ID: "p2", Code: "FRY-01", Name: "Fries", Category: "sides", CostPrice: 2, DirectSalePrice: 8, MarketplaceSalePrice: 10},
	}
}

func TestAnalyze_GroupsByCodeAndName(t *testing.T) {
	sales := []SaleLineItem{
		{ProductCode: "BRG-01", ProductName: "whatever", Quantity: 2, TotalValue: 40},
		{ProductName: "classic burger", Quantity: 1, TotalValue: 18},
		{ProductName: "Fries", Quantity: 5, TotalValue: 40},
	}

	report := Analyze(sales, testCatalog(), nil)

	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", report.Rows)
	}
	burger := report.Rows[0]
	if burger.ProductID != "p1" || !burger.Matched {
		t.Fatalf("unexpected first row: %+v", burger)
	}
	nearlyEqual(t, "burger quantity", burger.QuantitySold, 3)
	nearlyEqual(t, "burger revenue", burger.Revenue, 58)
	nearlyEqual(t, "burger avg price", burger.AvgSalePrice, 58.0/3)
	nearlyEqual(t, "volume share", burger.VolumeSharePct, 3.0/8*100)
	nearlyEqual(t, "revenue share", burger.RevenueSharePct, 58.0/98*100)
	nearlyEqual(t, "current margin", burger.CurrentMarginPct, (58.0/3-6)/(58.0/3)*100)
	nearlyEqual(t, "suggested direct margin", burger.SuggestedDirectMarginPct, 70)
	nearlyEqual(t, "suggested marketplace margin", burger.SuggestedMarketplaceMarginPct, 76)
}

func TestAnalyze_SubstringMatchEitherWay(t *testing.T) {
	sales := []SaleLineItem{
		{ProductName: "burger", Quantity: 1, TotalValue: 20},
		{ProductName: "Large Fries combo", Quantity: 1, TotalValue: 9},
	}

	report := Analyze(sales, testCatalog(), nil)

	if report.UnmatchedCount != 0 {
		t.Fatalf("expected all sales matched, got %+v", report.Rows)
	}
}

func TestAnalyze_UnmatchedSaleIsKept(t *testing.T) {
	sales := []SaleLineItem{
		{ProductCode: "BRG-01", Quantity: 1, TotalValue: 20},
		{ProductCode: "ZZZ-99", ProductName: "Mystery box", Quantity: 1, TotalValue: 30},
	}

	report := Analyze(sales, testCatalog(), nil)

	if len(report.Rows) != 2 || report.UnmatchedCount != 1 {
		t.Fatalf("expected unmatched row to be kept, got %+v", report)
	}
	unmatched := report.Unmatched()
	if len(unmatched) != 1 {
		t.Fatalf("expected 1 unmatched row, got %+v", unmatched)
	}
	row := unmatched[0]
	if row.Product != "Mystery box" || row.CostPrice != 0 || row.Matched {
		t.Fatalf("unexpected unmatched row: %+v", row)
	}
	nearlyEqual(t, "total revenue", report.TotalRevenue, 50)
	nearlyEqual(t, "unmatched revenue share", row.RevenueSharePct, 60)
	nearlyEqual(t, "unmatched current margin", row.CurrentMarginPct, 100)
}

func TestAnalyze_WeightedMarginIsConvexCombination(t *testing.T) {
	sales := []SaleLineItem{
		{ProductCode: "BRG-01", Quantity: 1, TotalValue: 20},
		{ProductCode: "FRY-01", Quantity: 2, TotalValue: 8},
	}

	report := Analyze(sales, testCatalog(), nil)

	var m1, m2, s1, s2 float64
	for _, row := range report.Rows {
		switch row.ProductID {
		case "p1":
			m1, s1 = row.CurrentMarginPct, row.RevenueSharePct
		case "p2":
			m2, s2 = row.CurrentMarginPct, row.RevenueSharePct
		}
	}

	nearlyEqual(t, "shares", s1+s2, 100)
	nearlyEqual(t, "weighted", report.Portfolio.CurrentWeighted, m1*s1/100+m2*s2/100)
	lo, hi := math.Min(m1, m2), math.Max(m1, m2)
	if report.Portfolio.CurrentWeighted < lo-1e-9 || report.Portfolio.CurrentWeighted > hi+1e-9 {
		t.Fatalf("weighted margin %v outside [%v, %v]", report.Portfolio.CurrentWeighted, lo, hi)
	}
}

type fixedPrices struct{ direct, marketplace float64 }

func (f fixedPrices) SuggestedPrices(CatalogProduct) (float64, float64) {
	return f.direct, f.marketplace
}

func TestAnalyze_UsesPriceSuggester(t *testing.T) {
	sales := []SaleLineItem{{ProductCode: "FRY-01", Quantity: 1, TotalValue: 8}}

	report := Analyze(sales, testCatalog(), fixedPrices{direct: 4, marketplace: 0})

	row := report.Rows[0]
	nearlyEqual(t, "direct price", row.SuggestedDirectPrice, 4)
	nearlyEqual(t, "direct margin", row.SuggestedDirectMarginPct, 50)
	nearlyEqual(t, "marketplace margin", row.SuggestedMarketplaceMarginPct, 0)
	nearlyEqual(t, "portfolio direct", report.Portfolio.SuggestedDirectWeighted, 50)
}

func TestAnalyze_EmptyAndZeroQuantity(t *testing.T) {
	empty := Analyze(nil, testCatalog(), nil)
	if len(empty.Rows) != 0 || empty.Portfolio != (Portfolio{}) {
		t.Fatalf("expected empty report, got %+v", empty)
	}

	report := Analyze([]SaleLineItem{{ProductCode: "FRY-01", Quantity: 0, TotalValue: 0}}, testCatalog(), nil)
	row := report.Rows[0]
	if row.AvgSalePrice != 0 || row.CurrentMarginPct != 0 || row.VolumeSharePct != 0 {
		t.Fatalf("expected zero values, got %+v", row)
	}
}

func TestMarginPct(t *testing.T) {
	nearlyEqual(t, "margin", MarginPct(10, 4), 60)
	nearlyEqual(t, "zero price", MarginPct(0, 4), 0)
	nearlyEqual(t, "negative price", MarginPct(-1, 4), 0)
}

func TestFilterByPeriod(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }
	sales := []SaleLineItem{{Date: day(1)}, {Date: day(10)}, {Date: day(20)}}

	got := FilterByPeriod(sales, day(5), day(15))
	if len(got) != 1 || !got[0].Date.Equal(day(10)) {
		t.Fatalf("unexpected filtered sales: %+v", got)
	}
	if len(FilterByPeriod(sales, time.Time{}, time.Time{})) != 3 {
		t.Fatalf("open bounds should keep every sale")
	}
}
