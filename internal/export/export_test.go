package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/Simplici0/precifica/internal/margins"
	"github.com/Simplici0/precifica/internal/pricing"
)

func readCSV(t *testing.T, data []byte, delimiter rune) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestWriteMarkup_ColumnOrderAndUndefined(t *testing.T) {
	rows := []pricing.MarkupResult{
		{Category: "burgers", Channel: "Direct", Status: pricing.StatusOK, Markup: pricing.DefinedMarkup(3.05), TotalCostPct: 60},
		{Category: "burgers", Channel: "Marketplace", Status: pricing.StatusUndefined, Markup: pricing.UndefinedMarkup(), TotalCostPct: 105},
	}

	var buf bytes.Buffer
	if err := NewWriter(';').WriteMarkup(&buf, rows); err != nil {
		t.Fatalf("WriteMarkup: %v", err)
	}

	records := readCSV(t, buf.Bytes(), ';')
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "category,channel,total_cost_pct,markup_multiplier,status" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if strings.Join(records[1], ",") != "burgers,Direct,60.00,3.05,ok" {
		t.Fatalf("unexpected row: %v", records[1])
	}
	if records[2][3] != "undefined" || records[2][4] != "undefined" {
		t.Fatalf("undefined markup must be visible, got %v", records[2])
	}
}

func TestWriteMargins_RowsAndPortfolio(t *testing.T) {
	report := margins.Report{
		Rows: []margins.Row{
			{Product: "Classic Burger", Matched: true, QuantitySold: 3, Revenue: 58, AvgSalePrice: 19.333333, CostPrice: 6, RevenueSharePct: 100, CurrentMarginPct: 68.965517},
			{Product: "Mystery box", Matched: false, QuantitySold: 1, Revenue: 30},
		},
		Portfolio:     margins.Portfolio{CurrentWeighted: 68.965517, SuggestedDirectWeighted: 70, SuggestedMarketplaceWeighted: 76},
		TotalQuantity: 4,
		TotalRevenue:  88,
	}

	var buf bytes.Buffer
	if err := NewWriter(0).WriteMargins(&buf, report); err != nil {
		t.Fatalf("WriteMargins: %v", err)
	}

	records := readCSV(t, buf.Bytes(), ',')
	if len(records) != 4 {
		t.Fatalf("expected header + 2 rows + summary, got %d", len(records))
	}
	if len(records[0]) != len(MarginColumns) || records[0][0] != "product" || records[0][12] != "matched" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "Classic Burger" || records[1][3] != "19.33" || records[1][9] != "68.97" || records[1][12] != "true" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][4] != "0.00" || records[2][12] != "false" {
		t.Fatalf("unexpected unmatched row: %v", records[2])
	}
	summary := records[3]
	if summary[0] != PortfolioLabel || summary[1] != "4" || summary[2] != "88.00" || summary[10] != "70.00" || summary[11] != "76.00" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestWriteMarginsText_FlagsUnmatched(t *testing.T) {
	report := margins.Report{
		Rows:           []margins.Row{{Product: "Mystery box", QuantitySold: 1, Revenue: 1234.5, RevenueSharePct: 100, CurrentMarginPct: 100}},
		TotalQuantity:  1,
		TotalRevenue:   1234.5,
		UnmatchedCount: 1,
		Portfolio:      margins.Portfolio{CurrentWeighted: 100},
	}

	var buf bytes.Buffer
	if err := WriteMarginsText(&buf, report); err != nil {
		t.Fatalf("WriteMarginsText: %v", err)
	}

	body := buf.String()
	for _, expected := range []string{"Revenue: 1,234.5", "Weighted margin (current): 100.00%", "[unmatched]", "Warning: 1 product(s)"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestWriteMarkupText_Warnings(t *testing.T) {
	rows := []pricing.MarkupResult{
		{Category: "burgers", Channel: "Marketplace", Status: pricing.StatusUndefined, TotalCostPct: 105},
	}

	var buf bytes.Buffer
	if err := WriteMarkupText(&buf, rows); err != nil {
		t.Fatalf("WriteMarkupText: %v", err)
	}
	if !strings.Contains(buf.String(), "markup undefined") || !strings.Contains(buf.String(), "Warning:") {
		t.Fatalf("expected warning, got: %s", buf.String())
	}

	buf.Reset()
	if err := WriteMarkupText(&buf, nil); err != nil {
		t.Fatalf("WriteMarkupText: %v", err)
	}
	if !strings.Contains(buf.String(), "No markup computed") {
		t.Fatalf("expected configuration hint, got: %s", buf.String())
	}
}
