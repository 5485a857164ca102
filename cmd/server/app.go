package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/proposal-desk/internal/config"
	"github.com/diewo77/proposal-desk/internal/documents"
	"github.com/diewo77/proposal-desk/internal/draft"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/handlers"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/metrics"
	"github.com/diewo77/proposal-desk/internal/store"
)

const metricsPrefix = "proposal_desk"

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
}

// NewApp wires the gateway, the draft store and every handler. Timestamps in
// rendered documents come from now, which defaults to time.Now.
func NewApp(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *App {
	return newApp(cfg, db, logger, time.Now)
}

func newApp(cfg *config.Config, db *gorm.DB, logger *zap.Logger, now func() time.Time) *App {
	m := metrics.New(metricsPrefix)

	api := gateway.NewClient(cfg.Backend.URL, logger.Named("gateway"))
	api.Recorder = m
	docs := documents.NewService(api, logger.Named("documents"))
	drafts := store.NewDraftStore(db)

	defaults := draft.Defaults{
		ContractorName:    cfg.Contractor.Name,
		ContractorCompany: cfg.Contractor.Company,
		PaymentTerms:      cfg.Contractor.PaymentTerms,
		PaymentAmount:     cfg.Contractor.PaymentAmount,
	}

	app := &App{mux: http.NewServeMux()}
	handlers.NewDashboardHandler(api, drafts).Register(app.mux)
	handlers.NewHealthHandler(db).Register(app.mux)
	handlers.NewCatalogHandler(api).Register(app.mux)
	handlers.NewRecordHandler(api, docs, m, now).Register(app.mux)
	handlers.NewDraftHandler(api, drafts, defaults, m, now).Register(app.mux)
	app.mux.Handle("GET /metrics", m.Handler())

	// Metrics sit inside the logger so the matched route pattern is set when
	// they record.
	app.handler = logging.Middleware(logger)(m.Middleware(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
