package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// ChannelKind tells whether marketplace fees are charged on the final price.
type ChannelKind string

const (
	KindDirect      ChannelKind = "direct"
	KindMarketplace ChannelKind = "marketplace"
)

// GeneralConfig holds the percentages shared by every category and channel.
// The fixed cost percentage is derived from costs and revenue and is passed to the engine separately.
type GeneralConfig struct {
	EstimatedMonthlyRevenue float64 `json:"estimated_monthly_revenue"`
	TaxRatePct              float64 `json:"tax_rate_pct"`
	CardFeePct              float64 `json:"card_fee_pct"`
	MarketingInvestmentPct  float64 `json:"marketing_investment_pct"`
	OperationalReservePct   float64 `json:"operational_reserve_pct"`
}

// Validate rejects negative values.
func (g GeneralConfig) Validate() error {
	var err error
	if g.EstimatedMonthlyRevenue < 0 {
		err = multierr.Append(err, errors.New("estimated_monthly_revenue must be >= 0"))
	}
	err = multierr.Append(err, nonNegativePct("tax_rate_pct", g.TaxRatePct))
	err = multierr.Append(err, nonNegativePct("card_fee_pct", g.CardFeePct))
	err = multierr.Append(err, nonNegativePct("marketing_investment_pct", g.MarketingInvestmentPct))
	err = multierr.Append(err, nonNegativePct("operational_reserve_pct", g.OperationalReservePct))
	return err
}

// SalesChannel is an outlet with its own fee structure.
type SalesChannel struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Kind               ChannelKind `json:"kind"`
	MarketplaceFeePct  float64     `json:"marketplace_fee_pct"`
	EarlyPaymentFeePct float64     `json:"early_payment_fee_pct"`
	Active             bool        `json:"active"`
}

// FeePct is the sum of the fees charged by the channel.
func (c SalesChannel) FeePct() float64 {
	return c.MarketplaceFeePct + c.EarlyPaymentFeePct
}

// Validate rejects an empty name, an unknown kind and negative fees.
func (c SalesChannel) Validate() error {
	var err error
	if strings.TrimSpace(c.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if c.Kind != KindDirect && c.Kind != KindMarketplace {
		err = multierr.Append(err, fmt.Errorf("kind must be %q or %q", KindDirect, KindMarketplace))
	}
	err = multierr.Append(err, nonNegativePct("marketplace_fee_pct", c.MarketplaceFeePct))
	err = multierr.Append(err, nonNegativePct("early_payment_fee_pct", c.EarlyPaymentFeePct))
	return err
}

// CategoryConfig holds the profit target of a product category.
// Voucher amounts are currency units, not percentages.
type CategoryConfig struct {
	Category                   string  `json:"category"`
	DesiredProfitPct           float64 `json:"desired_profit_pct"`
	OperationalReservePct      float64 `json:"operational_reserve_pct"`
	FlatDiscountVoucherAmount  float64 `json:"flat_discount_voucher_amount"`
	FlatMarketingVoucherAmount float64 `json:"flat_marketing_voucher_amount"`
}

// Validate rejects an empty category and negative percentages or vouchers.
func (c CategoryConfig) Validate() error {
	var err error
	if strings.TrimSpace(c.Category) == "" {
		err = multierr.Append(err, errors.New("category is required"))
	}
	err = multierr.Append(err, nonNegativePct("desired_profit_pct", c.DesiredProfitPct))
	err = multierr.Append(err, nonNegativePct("operational_reserve_pct", c.OperationalReservePct))
	if c.FlatDiscountVoucherAmount < 0 || c.FlatMarketingVoucherAmount < 0 {
		err = multierr.Append(err, errors.New("voucher amounts must be >= 0"))
	}
	return err
}

func nonNegativePct(field string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0, got %v", field, v)
	}
	return nil
}

// Status classifies a markup computation.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotConfigured Status = "not_configured"
	// StatusUndefined means the percentage costs reach 100% and no finite markup exists.
	StatusUndefined Status = "undefined"
)

// Markup is a multiplier that may have no finite value.
// The zero value is undefined.
type Markup struct {
	value   float64
	defined bool
}

// DefinedMarkup wraps a computed multiplier.
func DefinedMarkup(v float64) Markup {
	return Markup{value: v, defined: true}
}

// UndefinedMarkup is the result when total percentage costs reach 100%.
func UndefinedMarkup() Markup {
	return Markup{}
}

// Value returns the multiplier and whether it is defined.
func (m Markup) Value() (float64, bool) {
	return m.value, m.defined
}

// Defined reports whether the markup has a finite value.
func (m Markup) Defined() bool { return m.defined }

// String formats the multiplier with two decimals, or "undefined".
func (m Markup) String() string {
	if !m.defined {
		return "undefined"
	}
	return decimal.NewFromFloat(m.value).StringFixed(2)
}

// MarshalJSON encodes an undefined markup as null.
func (m Markup) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return []byte(decimal.NewFromFloat(m.value).StringFixed(2)), nil
}

// MarkupResult is the markup of one category on one channel.
type MarkupResult struct {
	Category     string  `json:"category"`
	Channel      string  `json:"channel"`
	Status       Status  `json:"status"`
	Markup       Markup  `json:"markup_multiplier"`
	TotalCostPct float64 `json:"total_cost_pct"`
}

// Multiplier returns the markup value, or 0 when it is not defined.
func (r MarkupResult) Multiplier() float64 {
	v, _ := r.Markup.Value()
	return v
}

// Breakdown lists every percentage that makes up the total cost percentage.
type Breakdown struct {
	TaxRatePct                float64 `json:"tax_rate_pct"`
	CardFeePct                float64 `json:"card_fee_pct"`
	MarketingInvestmentPct    float64 `json:"marketing_investment_pct"`
	FixedCostPct              float64 `json:"fixed_cost_pct"`
	GeneralReservePct         float64 `json:"general_reserve_pct"`
	DesiredProfitPct          float64 `json:"desired_profit_pct"`
	CategoryReservePct        float64 `json:"category_reserve_pct"`
	MarketplaceFeePct         float64 `json:"marketplace_fee_pct"`
	EarlyPaymentFeePct        float64 `json:"early_payment_fee_pct"`
	TotalCostPct              float64 `json:"total_cost_pct"`
	Numerator                 float64 `json:"numerator"`
	Denominator               float64 `json:"denominator"`
	UnroundedMarkupMultiplier float64 `json:"unrounded_markup_multiplier"`
}

// Calculate applies the markup formula to a category and channel.
func Calculate(general GeneralConfig, fixedCostPct float64, category CategoryConfig, channel SalesChannel) (Markup, Breakdown) {
	b := Breakdown{
		TaxRatePct:             general.TaxRatePct,
		CardFeePct:             general.CardFeePct,
		MarketingInvestmentPct: general.MarketingInvestmentPct,
		FixedCostPct:           fixedCostPct,
		GeneralReservePct:      general.OperationalReservePct,
		DesiredProfitPct:       category.DesiredProfitPct,
		CategoryReservePct:     category.OperationalReservePct,
		MarketplaceFeePct:      channel.MarketplaceFeePct,
		EarlyPaymentFeePct:     channel.EarlyPaymentFeePct,
	}
	b.TotalCostPct = b.TaxRatePct + b.CardFeePct + b.MarketingInvestmentPct + b.FixedCostPct +
		b.GeneralReservePct + b.DesiredProfitPct + b.CategoryReservePct +
		b.MarketplaceFeePct + b.EarlyPaymentFeePct

	b.Numerator = 1 + category.DesiredProfitPct/100 + category.OperationalReservePct/100
	b.Denominator = 1 - b.TotalCostPct/100
	markup := Multiplier(category.DesiredProfitPct, category.OperationalReservePct, b.TotalCostPct)
	if markup.Defined() {
		b.UnroundedMarkupMultiplier = b.Numerator / b.Denominator
	}
	return markup, b
}

// Multiplier is the markup formula
//
//	(1 + profit/100 + reserve/100) / (1 - totalCost/100)
//
// rounded to two decimals. It is undefined when totalCostPct is 100 or more.
func Multiplier(desiredProfitPct, reservePct, totalCostPct float64) Markup {
	denominator := 1 - totalCostPct/100
	if totalCostPct >= 100 || denominator <= 0 {
		return UndefinedMarkup()
	}
	numerator := 1 + desiredProfitPct/100 + reservePct/100
	return DefinedMarkup(RoundMultiplier(numerator / denominator))
}

// noiseDecimals bounds the float error removed before rounding.
// Inputs are treated as exact down to the ninth decimal.
const noiseDecimals = 9

// RoundMultiplier rounds to two decimals, half up.
// Float noise below the ninth decimal is dropped first so 3.0499999999999 rounds like 3.05.
func RoundMultiplier(v float64) float64 {
	return decimal.NewFromFloat(v).Round(noiseDecimals).Round(2).InexactFloat64()
}

var pointNinety = decimal.RequireFromString("0.90")

// RoundToPointNinety keeps the integer part of price and sets the cents to .90.
// 10.32 becomes 10.90, 10.00 becomes 10.90 and 9.99 becomes 9.90.
// Values within 1e-9 below an integer, such as 22.999999999999996, count as that integer.
func RoundToPointNinety(price float64) float64 {
	return decimal.NewFromFloat(price).Round(noiseDecimals).Floor().Add(pointNinety).InexactFloat64()
}
