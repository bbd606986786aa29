package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Simplici0/precifica/internal/config"
	"github.com/Simplici0/precifica/internal/db"
	"github.com/Simplici0/precifica/internal/logger"
	"github.com/Simplici0/precifica/internal/migrations"
	"github.com/Simplici0/precifica/internal/seed"
	"github.com/Simplici0/precifica/internal/service"
	"github.com/Simplici0/precifica/internal/store"
)

type server struct {
	store     *store.Store
	svc       *service.Service
	logger    zerolog.Logger
	delimiter rune
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenContext(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.UpContext(ctx, database, cfg.MigrationsDir, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	stats, err := seed.Run(ctx, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}
	log.Info().Int("inserts", stats.Inserts).Msg("seed complete")

	st := store.New(database, log)
	srv := &server{
		store:     st,
		svc:       service.New(st, cfg.CacheTTL, log),
		logger:    log,
		delimiter: cfg.ExportDelimiter,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", httpServer.Addr).Str("env", cfg.Env).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config/general", s.handleGeneralConfigGet)
		r.Put("/config/general", s.handleGeneralConfigPut)

		r.Get("/channels", s.handleChannelsList)
		r.Post("/channels", s.handleChannelsCreate)
		r.Put("/channels/{id}", s.handleChannelsUpdate)

		r.Get("/categories", s.handleCategoriesList)
		r.Post("/categories", s.handleCategoriesSave)
		r.Put("/categories/{category}", s.handleCategoriesSave)
		r.Delete("/categories/{category}", s.handleCategoriesDelete)

		r.Get("/costs", s.handleCostsList)
		r.Post("/costs", s.handleCostsCreate)
		r.Get("/costs/summary", s.handleCostsSummary)
		r.Put("/costs/{id}", s.handleCostsUpdate)
		r.Delete("/costs/{id}", s.handleCostsDelete)

		r.Get("/labor", s.handleLaborList)
		r.Post("/labor", s.handleLaborCreate)
		r.Delete("/labor/{id}", s.handleLaborDelete)

		r.Get("/catalog", s.handleCatalogList)
		r.Post("/catalog", s.handleCatalogCreate)

		r.Get("/sales", s.handleSalesList)
		r.Post("/sales", s.handleSalesImport)

		r.Get("/markup", s.handleMarkup)
		r.Get("/markup.csv", s.handleMarkupCSV)
		r.Get("/markup.txt", s.handleMarkupText)
		r.Get("/price", s.handlePrice)

		r.Get("/margins", s.handleMargins)
		r.Get("/margins.csv", s.handleMarginsCSV)
		r.Get("/margins.txt", s.handleMarginsText)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
