package handlers

import "net/http"

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Show)
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Ready)
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog", h.Catalog)

	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("POST /categories", h.CreateCategory)
	mux.HandleFunc("PUT /categories/{id}", h.UpdateCategory)
	mux.HandleFunc("POST /categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.DeleteCategory)
	mux.HandleFunc("POST /categories/{id}/delete", h.DeleteCategory)

	mux.HandleFunc("GET /elements", h.ListElements)
	mux.HandleFunc("POST /elements", h.CreateElement)
	mux.HandleFunc("PUT /elements/{id}", h.UpdateElement)
	mux.HandleFunc("POST /elements/{id}", h.UpdateElement)
	mux.HandleFunc("DELETE /elements/{id}", h.DeleteElement)
	mux.HandleFunc("POST /elements/{id}/delete", h.DeleteElement)

	mux.HandleFunc("GET /variables", h.ListVariables)
	mux.HandleFunc("POST /variables", h.CreateVariable)
	mux.HandleFunc("PUT /variables/{id}", h.UpdateVariable)
	mux.HandleFunc("POST /variables/{id}", h.UpdateVariable)
	mux.HandleFunc("DELETE /variables/{id}", h.DeleteVariable)
	mux.HandleFunc("POST /variables/{id}/delete", h.DeleteVariable)
}

func (h *RecordHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /templates", h.ListTemplates)
	mux.HandleFunc("GET /templates/{id}", h.ViewTemplate)
	mux.HandleFunc("DELETE /templates/{id}", h.DeleteTemplate)
	mux.HandleFunc("POST /templates/{id}/delete", h.DeleteTemplate)

	mux.HandleFunc("GET /proposals", h.ListProposals)
	mux.HandleFunc("GET /proposals/{id}", h.ViewProposal)
	mux.HandleFunc("GET /proposals/{id}/export", h.ProposalDocument)
	mux.HandleFunc("DELETE /proposals/{id}", h.DeleteProposal)
	mux.HandleFunc("POST /proposals/{id}/delete", h.DeleteProposal)

	mux.HandleFunc("GET /contracts", h.ListContracts)
	mux.HandleFunc("GET /contracts/{id}", h.ViewContract)
	mux.HandleFunc("GET /contracts/{id}/preview", h.ContractPreview)
	mux.HandleFunc("GET /contracts/{id}/export", h.ContractDocument)
	mux.HandleFunc("DELETE /contracts/{id}", h.DeleteContract)
	mux.HandleFunc("POST /contracts/{id}/delete", h.DeleteContract)
	mux.HandleFunc("POST /contracts/{id}/signatures/{party}", h.UploadSignature)
	mux.HandleFunc("POST /contracts/{id}/send", h.SendEmail)
}

func (h *DraftHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /drafts", h.List)
	mux.HandleFunc("POST /drafts", h.Create)
	mux.HandleFunc("GET /drafts/{id}", h.Get)
	mux.HandleFunc("POST /drafts/{id}/actions", h.Apply)
	mux.HandleFunc("GET /drafts/{id}/preview", h.Preview)
	mux.HandleFunc("POST /drafts/{id}/submit", h.Submit)
	mux.HandleFunc("DELETE /drafts/{id}", h.Delete)
	mux.HandleFunc("POST /drafts/{id}/delete", h.Delete)
}
