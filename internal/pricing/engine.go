package pricing

import (
	"sort"
	"strings"
)

// Snapshot is a consistent set of inputs for one computation pass.
type Snapshot struct {
	General      *GeneralConfig
	FixedCostPct float64
	Channels     []SalesChannel
	Categories   []CategoryConfig
}

// Engine computes markups for a snapshot. It never mutates its inputs.
type Engine struct {
	general      *GeneralConfig
	fixedCostPct float64
	channels     []SalesChannel
	categories   map[string]CategoryConfig
	order        []string
}

// NewEngine indexes a snapshot for lookups.
func NewEngine(s Snapshot) *Engine {
	e := &Engine{
		general:      s.General,
		fixedCostPct: s.FixedCostPct,
		categories:   make(map[string]CategoryConfig, len(s.Categories)),
	}
	for _, ch := range s.Channels {
		if ch.Active {
			e.channels = append(e.channels, ch)
		}
	}
	sort.SliceStable(e.channels, func(i, j int) bool {
		return e.channels[i].Name < e.channels[j].Name
	})
	for _, c := range s.Categories {
		key := normalizeKey(c.Category)
		if key == "" {
			continue
		}
		if _, dup := e.categories[key]; !dup {
			e.order = append(e.order, c.Category)
		}
		e.categories[key] = c
	}
	sort.Strings(e.order)
	return e
}

// Configured reports whether there is enough configuration to compute any markup.
func (e *Engine) Configured() bool {
	return e.general != nil && len(e.channels) > 0 && len(e.categories) > 0
}

// FixedCostPct is the derived fixed cost percentage the engine was built with.
func (e *Engine) FixedCostPct() float64 { return e.fixedCostPct }

// Channels returns the active channels in table order.
func (e *Engine) Channels() []SalesChannel {
	return append([]SalesChannel(nil), e.channels...)
}

// Category looks up a category configuration.
func (e *Engine) Category(name string) (CategoryConfig, bool) {
	c, ok := e.categories[normalizeKey(name)]
	return c, ok
}

// Channel looks up an active channel by name.
func (e *Engine) Channel(name string) (SalesChannel, bool) {
	key := normalizeKey(name)
	for _, ch := range e.channels {
		if normalizeKey(ch.Name) == key {
			return ch, true
		}
	}
	return SalesChannel{}, false
}

// FirstChannel returns the first active channel of a kind.
func (e *Engine) FirstChannel(kind ChannelKind) (SalesChannel, bool) {
	for _, ch := range e.channels {
		if ch.Kind == kind {
			return ch, true
		}
	}
	return SalesChannel{}, false
}

// ComputeMarkup returns the markup of category on channel.
// Unknown categories, unknown or inactive channels and a missing general config yield StatusNotConfigured.
func (e *Engine) ComputeMarkup(category, channel string) MarkupResult {
	result := MarkupResult{Category: category, Channel: channel, Status: StatusNotConfigured}

	cat, ok := e.Category(category)
	if !ok || e.general == nil {
		return result
	}
	ch, ok := e.Channel(channel)
	if !ok {
		return result
	}

	return e.result(cat, ch)
}

func (e *Engine) result(cat CategoryConfig, ch SalesChannel) MarkupResult {
	markup, b := Calculate(*e.general, e.fixedCostPct, cat, ch)
	status := StatusUndefined
	if markup.Defined() {
		status = StatusOK
	}
	return MarkupResult{
		Category:     cat.Category,
		Channel:      ch.Name,
		Status:       status,
		Markup:       markup,
		TotalCostPct: b.TotalCostPct,
	}
}

// Explain returns the full breakdown for one pair, or false when the pair is not configured.
func (e *Engine) Explain(category, channel string) (Breakdown, bool) {
	cat, ok := e.Category(category)
	if !ok || e.general == nil {
		return Breakdown{}, false
	}
	ch, ok := e.Channel(channel)
	if !ok {
		return Breakdown{}, false
	}
	_, b := Calculate(*e.general, e.fixedCostPct, cat, ch)
	return b, true
}

// ComputeMarkupTable returns one result per configured category and active channel,
// ordered by category then channel. It is empty when the engine is not configured.
func (e *Engine) ComputeMarkupTable() []MarkupResult {
	if !e.Configured() {
		return []MarkupResult{}
	}
	table := make([]MarkupResult, 0, len(e.order)*len(e.channels))
	for _, category := range e.order {
		cat := e.categories[normalizeKey(category)]
		for _, ch := range e.channels {
			table = append(table, e.result(cat, ch))
		}
	}
	return table
}

// ComputeMarkupTable is a convenience wrapper building a one-off engine.
func ComputeMarkupTable(categories []CategoryConfig, channels []SalesChannel, general *GeneralConfig, fixedCostPct float64) []MarkupResult {
	return NewEngine(Snapshot{
		General:      general,
		FixedCostPct: fixedCostPct,
		Channels:     channels,
		Categories:   categories,
	}).ComputeMarkupTable()
}

// Warnings lists the pairs whose markup is undefined.
func Warnings(table []MarkupResult) []string {
	var warnings []string
	for _, r := range table {
		if r.Status == StatusUndefined {
			warnings = append(warnings, undefinedWarning(r))
		}
	}
	return warnings
}

func undefinedWarning(r MarkupResult) string {
	return "markup undefined for " + r.Category + " on " + r.Channel +
		": total cost percentage " + formatPct(r.TotalCostPct) + " reaches 100%"
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
