package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/precifica/internal/costs"
	"github.com/Simplici0/precifica/internal/margins"
	"github.com/Simplici0/precifica/internal/pricing"
	"github.com/Simplici0/precifica/internal/store"
)

func (s *server) handleGeneralConfigGet(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GeneralConfig(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load general config")
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "general config is not set")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *server) handleGeneralConfigPut(w http.ResponseWriter, r *http.Request) {
	var g pricing.GeneralConfig
	if !decodeJSON(w, r, &g) {
		return
	}
	if err := s.store.SaveGeneralConfig(r.Context(), g); err != nil {
		s.writeStoreError(w, err, "save general config")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusOK, g)
}

func (s *server) handleChannelsList(w http.ResponseWriter, r *http.Request) {
	channels, err := s.store.ListChannels(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load channels")
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *server) handleChannelsCreate(w http.ResponseWriter, r *http.Request) {
	var ch pricing.SalesChannel
	if !decodeJSON(w, r, &ch) {
		return
	}
	created, err := s.store.CreateChannel(r.Context(), ch)
	if err != nil {
		s.writeStoreError(w, err, "create channel")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleChannelsUpdate(w http.ResponseWriter, r *http.Request) {
	var ch pricing.SalesChannel
	if !decodeJSON(w, r, &ch) {
		return
	}
	ch.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateChannel(r.Context(), ch); err != nil {
		s.writeStoreError(w, err, "update channel")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusOK, ch)
}

func (s *server) handleCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// handleCategoriesSave serves both POST /categories and PUT /categories/{category}.
// The path segment wins over the body when present.
func (s *server) handleCategoriesSave(w http.ResponseWriter, r *http.Request) {
	var c pricing.CategoryConfig
	if !decodeJSON(w, r, &c) {
		return
	}
	if category := chi.URLParam(r, "category"); category != "" {
		c.Category = category
	}
	if err := s.store.SaveCategory(r.Context(), c); err != nil {
		s.writeStoreError(w, err, "save category")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCategoriesDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "category")); err != nil {
		s.writeStoreError(w, err, "delete category")
		return
	}
	s.svc.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCostsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListRecurringCosts(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load recurring costs")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleCostsCreate(w http.ResponseWriter, r *http.Request) {
	var c costs.RecurringCost
	if !decodeJSON(w, r, &c) {
		return
	}
	created, err := s.store.CreateRecurringCost(r.Context(), c)
	if err != nil {
		s.writeStoreError(w, err, "create recurring cost")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleCostsUpdate(w http.ResponseWriter, r *http.Request) {
	var c costs.RecurringCost
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateRecurringCost(r.Context(), c); err != nil {
		s.writeStoreError(w, err, "update recurring cost")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCostsDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecurringCost(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err, "delete recurring cost")
		return
	}
	s.svc.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCostsSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.CostSummary(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "summarize costs")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *server) handleLaborList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListLabor(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load labor entries")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) handleLaborCreate(w http.ResponseWriter, r *http.Request) {
	var record store.LaborRecord
	if !decodeJSON(w, r, &record) {
		return
	}
	created, err := s.store.CreateLabor(r.Context(), record)
	if err != nil {
		s.writeStoreError(w, err, "create labor entry")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleLaborDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLabor(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err, "delete labor entry")
		return
	}
	s.svc.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListCatalog(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "load catalog")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleCatalogCreate(w http.ResponseWriter, r *http.Request) {
	var p margins.CatalogProduct
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := s.store.CreateCatalogProduct(r.Context(), p)
	if err != nil {
		s.writeStoreError(w, err, "create catalog product")
		return
	}
	s.svc.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

type salesImportRequest struct {
	Source string                 `json:"source"`
	Items  []margins.SaleLineItem `json:"items"`
}

func (s *server) handleSalesImport(w http.ResponseWriter, r *http.Request) {
	var req salesImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	batch, err := s.store.InsertSales(r.Context(), req.Source, req.Items)
	if err != nil {
		s.writeStoreError(w, err, "import sales")
		return
	}
	s.svc.Invalidate()
	s.logger.Info().Str("batch", batch.ID).Int("items", batch.Items).Str("source", req.Source).Msg("sales imported")
	writeJSON(w, http.StatusCreated, batch)
}

func (s *server) handleSalesList(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.store.ListSales(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err, "load sales")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
