package pricing

import (
	"github.com/shopspring/decimal"
)

// PriceSuggestion is a suggested sale price for a cost on a channel.
type PriceSuggestion struct {
	Category       string  `json:"category"`
	Channel        string  `json:"channel"`
	CostPrice      float64 `json:"cost_price"`
	Status         Status  `json:"status"`
	Markup         Markup  `json:"markup_multiplier"`
	BeforeRounding float64 `json:"before_rounding"`
	Price          float64 `json:"price"`
}

// SuggestedPrice combines the markup with the channel adjustment and the .90 rounding.
//
// On marketplace channels the fees are charged on the final price, so the marked-up cost is
// grossed up by 1/(1-fees) and both flat vouchers are added before rounding.
func (e *Engine) SuggestedPrice(costPrice float64, category, channel string) PriceSuggestion {
	r := e.ComputeMarkup(category, channel)
	s := PriceSuggestion{
		Category:  r.Category,
		Channel:   r.Channel,
		CostPrice: costPrice,
		Status:    r.Status,
		Markup:    r.Markup,
	}
	multiplier, ok := r.Markup.Value()
	if r.Status != StatusOK || !ok {
		return s
	}

	raw := costPrice * multiplier
	ch, _ := e.Channel(channel)
	if ch.Kind == KindMarketplace {
		if divisor := 1 - ch.FeePct()/100; divisor > 0 {
			raw = raw / divisor
		}
		cat, _ := e.Category(category)
		raw += cat.FlatDiscountVoucherAmount + cat.FlatMarketingVoucherAmount
	}

	s.BeforeRounding = decimal.NewFromFloat(raw).Round(2).InexactFloat64()
	s.Price = RoundToPointNinety(raw)
	return s
}

func formatPct(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}
