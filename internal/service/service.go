package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/Simplici0/precifica/internal/costs"
	"github.com/Simplici0/precifica/internal/margins"
	"github.com/Simplici0/precifica/internal/pricing"
)

const (
	ckSnapshot = "snapshot:v%d"
	ckMargins  = "margins:v%d:%s:%s"
)

// Store is the read side the service computes from.
type Store interface {
	GeneralConfig(ctx context.Context) (*pricing.GeneralConfig, error)
	ListChannels(ctx context.Context) ([]pricing.SalesChannel, error)
	ListCategories(ctx context.Context) ([]pricing.CategoryConfig, error)
	ListRecurringCosts(ctx context.Context) ([]costs.RecurringCost, error)
	ListLaborCosts(ctx context.Context) ([]costs.LaborCost, error)
	ListCatalog(ctx context.Context) ([]margins.CatalogProduct, error)
	ListSales(ctx context.Context, from, to time.Time) ([]margins.SaleLineItem, error)
}

// Service loads consistent snapshots from the store, derives the fixed cost percentage and caches results.
type Service struct {
	store   Store
	cache   *cache.Cache
	ttl     time.Duration
	version atomic.Uint64
	logger  zerolog.Logger
}

// New returns a Service. A non-positive ttl disables caching.
func New(store Store, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// Snapshot is every input of one computation pass together with the derived values.
type Snapshot struct {
	General *pricing.GeneralConfig
	Totals  costs.Totals
	Engine  *pricing.Engine
}

// MarkupTable is the markup table of the current configuration.
type MarkupTable struct {
	Configured   bool                   `json:"configured"`
	FixedCostPct float64                `json:"fixed_cost_pct"`
	Rows         []pricing.MarkupResult `json:"rows"`
	Warnings     []string               `json:"warnings"`
}

// Invalidate drops every cached result. Call it after any write to the store.
func (s *Service) Invalidate() {
	s.version.Add(1)
	s.cache.Flush()
	s.logger.Debug().Uint64("version", s.version.Load()).Msg("invalidated computed results")
}

// Snapshot returns the current snapshot, from cache when possible.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	version := s.version.Load()
	key := fmt.Sprintf(ckSnapshot, version)
	if cached, found := s.cache.Get(key); found {
		return cached.(*Snapshot), nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.set(version, key, snap)
	return snap, nil
}

func (s *Service) loadSnapshot(ctx context.Context) (*Snapshot, error) {
	general, err := s.store.GeneralConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load general config: %w", err)
	}
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	recurring, err := s.store.ListRecurringCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recurring costs: %w", err)
	}
	labor, err := s.store.ListLaborCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load labor costs: %w", err)
	}

	revenue := 0.0
	if general != nil {
		revenue = general.EstimatedMonthlyRevenue
	}
	totals := costs.Summarize(recurring, labor, revenue)
	if len(totals.UnknownEntries) > 0 {
		s.logger.Warn().Strs("entries", totals.UnknownEntries).Msg("recurring costs with unknown frequency were ignored")
	}

	return &Snapshot{
		General: general,
		Totals:  totals,
		Engine: pricing.NewEngine(pricing.Snapshot{
			General:      general,
			FixedCostPct: totals.FixedCostPct,
			Channels:     channels,
			Categories:   categories,
		}),
	}, nil
}

// set caches value unless the store changed while it was being computed.
func (s *Service) set(version uint64, key string, value any) {
	if s.ttl <= 0 || s.version.Load() != version {
		return
	}
	s.cache.Set(key, value, cache.DefaultExpiration)
}

// CostSummary returns the monthly cost totals and the derived fixed cost percentage.
func (s *Service) CostSummary(ctx context.Context) (costs.Totals, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return costs.Totals{}, err
	}
	return snap.Totals, nil
}

// MarkupTable computes the markup of every configured category on every active channel.
func (s *Service) MarkupTable(ctx context.Context) (MarkupTable, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return MarkupTable{}, err
	}
	rows := snap.Engine.ComputeMarkupTable()
	warnings := pricing.Warnings(rows)
	if warnings == nil {
		warnings = []string{}
	}
	return MarkupTable{
		Configured:   snap.Engine.Configured(),
		FixedCostPct: snap.Engine.FixedCostPct(),
		Rows:         rows,
		Warnings:     warnings,
	}, nil
}

// SuggestedPrice suggests a sale price for a cost in a category on a channel.
func (s *Service) SuggestedPrice(ctx context.Context, costPrice float64, category, channel string) (pricing.PriceSuggestion, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return pricing.PriceSuggestion{}, err
	}
	return snap.Engine.SuggestedPrice(costPrice, category, channel), nil
}

// Margins reconciles the sales of a period against the catalog.
func (s *Service) Margins(ctx context.Context, from, to time.Time) (margins.Report, error) {
	version := s.version.Load()
	key := fmt.Sprintf(ckMargins, version, periodKey(from), periodKey(to))
	if cached, found := s.cache.Get(key); found {
		return cached.(margins.Report), nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return margins.Report{}, err
	}
	catalog, err := s.store.ListCatalog(ctx)
	if err != nil {
		return margins.Report{}, fmt.Errorf("load catalog: %w", err)
	}
	sales, err := s.store.ListSales(ctx, from, to)
	if err != nil {
		return margins.Report{}, fmt.Errorf("load sales: %w", err)
	}

	report := margins.Analyze(margins.FilterByPeriod(sales, from, to), catalog, EnginePrices{Engine: snap.Engine})
	if report.UnmatchedCount > 0 {
		s.logger.Warn().Int("unmatched", report.UnmatchedCount).Msg("sales without a catalog match are counted with zero cost")
	}
	s.set(version, key, report)
	return report, nil
}

func periodKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// EnginePrices suggests prices from the markup engine using the first active direct and
// marketplace channels. When a channel is missing or its markup is not usable it falls back
// to the sale price stored on the catalog product.
type EnginePrices struct {
	Engine *pricing.Engine
}

func (p EnginePrices) SuggestedPrices(product margins.CatalogProduct) (float64, float64) {
	direct := p.price(product, pricing.KindDirect, product.DirectSalePrice)
	marketplace := p.price(product, pricing.KindMarketplace, product.MarketplaceSalePrice)
	return direct, marketplace
}

func (p EnginePrices) price(product margins.CatalogProduct, kind pricing.ChannelKind, fallback float64) float64 {
	if p.Engine == nil {
		return fallback
	}
	ch, ok := p.Engine.FirstChannel(kind)
	if !ok {
		return fallback
	}
	suggestion := p.Engine.SuggestedPrice(product.CostPrice, product.Category, ch.Name)
	if suggestion.Status != pricing.StatusOK {
		return fallback
	}
	return suggestion.Price
}
