package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/diewo77/proposal-desk/httpx"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/internal/store"
)

const recentLimit = 5

type DashboardHandler struct {
	api    *gateway.Client
	drafts *store.DraftStore
}

func NewDashboardHandler(api *gateway.Client, drafts *store.DraftStore) *DashboardHandler {
	return &DashboardHandler{api: api, drafts: drafts}
}

// Show loads every listing at once and summarises them.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	var (
		templates []models.Template
		proposals []models.Proposal
		contracts []models.Contract
		drafts    []models.DraftRecord
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { templates, err = h.api.ListTemplates(ctx); return })
	g.Go(func() (err error) { proposals, err = h.api.ListProposals(ctx); return })
	g.Go(func() (err error) { contracts, err = h.api.ListContracts(ctx); return })
	g.Go(func() (err error) { drafts, err = h.drafts.List(ctx, ""); return })
	if err := g.Wait(); err != nil {
		fail(w, r, "failed_to_load_dashboard", err)
		return
	}

	signed := 0
	for _, c := range contracts {
		if c.ClientSignedAt != nil && c.ContractorSignedAt != nil {
			signed++
		}
	}
	stats := map[string]int{
		"templates":        len(templates),
		"proposals":        len(proposals),
		"contracts":        len(contracts),
		"signed_contracts": signed,
		"drafts":           len(drafts),
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	page(w, r, "dashboard.html", map[string]any{
		"Stats":     stats,
		"Proposals": latest(proposals),
		"Contracts": latest(contracts),
		"Drafts":    drafts[:min(len(drafts), recentLimit)],
	})
}

// latest returns the last recentLimit items, newest first.
func latest[T any](items []T) []T {
	out := make([]T, 0, recentLimit)
	for i := len(items) - 1; i >= 0 && len(out) < recentLimit; i-- {
		out = append(out, items[i])
	}
	return out
}

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the draft database with a lightweight query.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
