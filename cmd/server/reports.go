package main

import (
	"net/http"
	"strings"

	"github.com/Simplici0/precifica/internal/export"
)

func (s *server) handleMarkup(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.MarkupTable(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "compute markup table")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *server) handleMarkupCSV(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.MarkupTable(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "compute markup table")
		return
	}
	setAttachment(w, "text/csv; charset=utf-8", "markup.csv")
	if err := export.NewWriter(s.delimiter).WriteMarkup(w, table.Rows); err != nil {
		s.logger.Error().Err(err).Msg("write markup export")
	}
}

func (s *server) handleMarkupText(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.MarkupTable(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "compute markup table")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.WriteMarkupText(w, table.Rows); err != nil {
		s.logger.Error().Err(err).Msg("write markup text")
	}
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cost, err := parseNonNegativeFloat(q.Get("cost"), "cost")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category := strings.TrimSpace(q.Get("category"))
	channel := strings.TrimSpace(q.Get("channel"))
	if category == "" || channel == "" {
		writeError(w, http.StatusBadRequest, "category and channel are required")
		return
	}

	suggestion, err := s.svc.SuggestedPrice(r.Context(), cost, category, channel)
	if err != nil {
		s.writeStoreError(w, err, "suggest price")
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (s *server) handleMargins(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.svc.Margins(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err, "analyze margins")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleMarginsCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.svc.Margins(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err, "analyze margins")
		return
	}
	setAttachment(w, "text/csv; charset=utf-8", "margins.csv")
	if err := export.NewWriter(s.delimiter).WriteMargins(w, report); err != nil {
		s.logger.Error().Err(err).Msg("write margins export")
	}
}

func (s *server) handleMarginsText(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.svc.Margins(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err, "analyze margins")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.WriteMarginsText(w, report); err != nil {
		s.logger.Error().Err(err).Msg("write margins text")
	}
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
