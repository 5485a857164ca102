package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diewo77/proposal-desk/httpx"
	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/draft"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/metrics"
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/internal/render/htmlrender"
	"github.com/diewo77/proposal-desk/internal/store"
)

// DraftHandler drives templates, proposals and contracts under
// construction. Each request loads the draft, applies one change and saves
// it back.
type DraftHandler struct {
	api      *gateway.Client
	drafts   *store.DraftStore
	defaults draft.Defaults
	out      documentWriter
}

func NewDraftHandler(api *gateway.Client, drafts *store.DraftStore, defaults draft.Defaults, m *metrics.Metrics, now func() time.Time) *DraftHandler {
	if now == nil {
		now = time.Now
	}
	return &DraftHandler{api: api, drafts: drafts, defaults: defaults, out: documentWriter{metrics: m, now: now}}
}

// draftView is the JSON form of a stored draft.
type draftView struct {
	ID         string                 `json:"id"`
	Kind       draft.Kind             `json:"kind"`
	TargetID   int64                  `json:"target_id,omitempty"`
	Fields     draft.Fields           `json:"fields"`
	Categories []models.Category      `json:"categories"`
	Variables  []models.Variable      `json:"variables"`
	Groups     []models.VariableGroup `json:"variable_groups"`
	Total      string                 `json:"total"`
}

func newDraftView(id string, d draft.Draft) draftView {
	p := d.Proposal()
	groups, _ := models.GroupVariables(p.Variables)
	return draftView{
		ID:         id,
		Kind:       d.Kind,
		TargetID:   d.TargetID,
		Fields:     d.Fields,
		Categories: p.Categories,
		Variables:  p.Variables,
		Groups:     groups,
		Total:      models.FormatMoney(p.Total()),
	}
}

func (h *DraftHandler) load(w http.ResponseWriter, r *http.Request) (string, draft.Draft, bool) {
	id := r.PathValue("id")
	d, err := h.drafts.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "draft_not_found", id)
		return id, d, false
	}
	if err != nil {
		fail(w, r, "failed_to_load_draft", err)
		return id, d, false
	}
	return id, d, true
}

// List shows the stored drafts, optionally of one kind.
func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := draft.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_kind", string(kind))
		return
	}
	list, err := h.drafts.List(r.Context(), kind)
	if err != nil {
		fail(w, r, "failed_to_list_drafts", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	page(w, r, "drafts.html", map[string]any{"Drafts": list, "Kind": kind})
}

type createDraftInput struct {
	Kind       draft.Kind `json:"kind"`
	TemplateID int64      `json:"template_id"`
	ProposalID int64      `json:"proposal_id"`
}

// Create starts a draft, seeded from a template or a saved proposal when
// their id is given.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in createDraftInput
	if isJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		in.Kind = draft.Kind(r.FormValue("kind"))
		in.TemplateID, _ = strconv.ParseInt(r.FormValue("template_id"), 10, 64)
		in.ProposalID, _ = strconv.ParseInt(r.FormValue("proposal_id"), 10, 64)
	}
	if !in.Kind.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_kind", string(in.Kind))
		return
	}

	d := draft.New(in.Kind, h.out.now(), h.defaults)
	var err error
	if in.TemplateID > 0 {
		t, gerr := h.api.GetTemplate(r.Context(), in.TemplateID)
		if gerr != nil {
			fail(w, r, "failed_to_load_template", gerr)
			return
		}
		d, err = draft.Reduce(d, draft.ApplyTemplate{Template: t})
	}
	if err == nil && in.ProposalID > 0 {
		p, gerr := h.api.GetProposal(r.Context(), in.ProposalID)
		if gerr != nil {
			fail(w, r, "failed_to_load_proposal", gerr)
			return
		}
		d, err = draft.Reduce(d, draft.LoadProposal{Proposal: p})
	}
	if err != nil {
		h.actionError(w, r, err)
		return
	}

	id, err := h.drafts.Create(r.Context(), d)
	if err != nil {
		fail(w, r, "failed_to_create_draft", err)
		return
	}
	logging.FromContext(r.Context()).Info("draft created", zap.String("draft_id", id), zap.String("kind", string(d.Kind)))
	done(w, r, http.StatusCreated, newDraftView(id, d), "/drafts/"+id)
}

// options loads the catalog a draft picks from.
func (h *DraftHandler) options(ctx context.Context, d draft.Draft) (map[string]any, error) {
	var (
		categories []models.Category
		variables  []models.Variable
		proposals  []models.Proposal
		templates  []models.Template
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { categories, err = h.api.ListCategories(ctx); return })
	g.Go(func() (err error) { variables, err = h.api.ListVariables(ctx); return })
	switch d.Kind {
	case draft.KindContract:
		g.Go(func() (err error) { proposals, err = h.api.ListProposals(ctx); return })
	case draft.KindProposal:
		g.Go(func() (err error) { templates, err = h.api.ListTemplates(ctx); return })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	groups, _ := models.GroupVariables(variables)
	return map[string]any{
		"Categories":      categories,
		"VariableOptions": groups,
		"Proposals":       proposals,
		"Templates":       templates,
	}, nil
}

// Get shows the draft editor.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, newDraftView(id, d))
		return
	}
	data, err := h.options(r.Context(), d)
	if err != nil {
		fail(w, r, "failed_to_load_catalog", err)
		return
	}
	preview, err := htmlrender.Fragment(h.document(d))
	if err != nil {
		fail(w, r, "failed_to_render_document", err)
		return
	}
	data["Draft"] = newDraftView(id, d)
	data["Preview"] = preview
	data["Taxonomy"] = models.VariableTaxonomy
	if verr := d.Validate(); verr != nil {
		data["Problem"] = verr
	}
	page(w, r, "draft.html", data)
}

// Apply runs one action. The body is the JSON action, or a form with the
// same field names.
func (h *DraftHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	body, err := actionBody(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_action", err.Error())
		return
	}
	action, kind, err := draft.DecodeAction(body)
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	if action == nil {
		if action, err = h.fetchAction(r.Context(), kind, body); err != nil {
			fail(w, r, "failed_to_load_"+kind, err)
			return
		}
	}
	next, err := draft.Reduce(d, action)
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	if err := h.drafts.Save(r.Context(), id, next); err != nil {
		if errors.Is(err, store.ErrConflict) {
			httpx.JSONError(w, http.StatusConflict, "draft_conflict", id)
			return
		}
		fail(w, r, "failed_to_save_draft", err)
		return
	}
	done(w, r, http.StatusOK, newDraftView(id, next), "/drafts/"+id)
}

// fetchAction builds the actions that need a backend entity.
func (h *DraftHandler) fetchAction(ctx context.Context, kind string, body []byte) (draft.Action, error) {
	ref, err := draft.Reference(body)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "select_category":
		c, err := h.api.GetCategory(ctx, ref)
		return draft.SelectCategory{Category: c}, err
	case "select_variable":
		v, err := h.api.GetVariable(ctx, ref)
		return draft.SelectVariable{Variable: v}, err
	case "apply_template":
		t, err := h.api.GetTemplate(ctx, ref)
		return draft.ApplyTemplate{Template: t}, err
	case "load_proposal":
		p, err := h.api.GetProposal(ctx, ref)
		return draft.LoadProposal{Proposal: p}, err
	}
	return nil, fmt.Errorf("%w: %q", draft.ErrUnknownAction, kind)
}

// actionBody returns the JSON action, converting a form post.
func actionBody(r *http.Request) ([]byte, error) {
	if isJSONBody(r) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	env := map[string]any{}
	for key := range r.PostForm {
		value := r.PostForm.Get(key)
		switch key {
		case "id", "category_id", "element_id", "index":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			env[key] = n
		default:
			env[key] = value
		}
	}
	return json.Marshal(env)
}

func (h *DraftHandler) actionError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *draft.InputError
	switch {
	case errors.As(err, &inputErr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", inputErr.Violations)
	case errors.Is(err, draft.ErrUnknownAction):
		httpx.JSONError(w, http.StatusBadRequest, "unknown_action", err.Error())
	case errors.Is(err, draft.ErrProposalLocked):
		httpx.JSONError(w, http.StatusConflict, "proposal_locked", err.Error())
	case errors.Is(err, draft.ErrUnknownCategory),
		errors.Is(err, draft.ErrUnknownElement),
		errors.Is(err, draft.ErrUnknownVariable):
		httpx.JSONError(w, http.StatusNotFound, "not_in_draft", err.Error())
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid_action", err.Error())
	}
}

// document lays out the draft the way it will look once saved. Template
// drafts preview like a proposal.
func (h *DraftHandler) document(d draft.Draft) document.Document {
	if d.Kind == draft.KindContract {
		return document.BuildContract(d.ContractSnapshot(), h.out.now())
	}
	return document.BuildProposal(d.Proposal(), h.out.now())
}

// Preview renders the draft as html (the default), pdf or xlsx.
func (h *DraftHandler) Preview(w http.ResponseWriter, r *http.Request) {
	_, d, ok := h.load(w, r)
	if !ok {
		return
	}
	h.out.write(w, r, h.document(d), formatOf(r, FormatHTML))
}

// Submit validates the draft and saves it to the backend. The draft is
// removed once the backend accepted it.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, d, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := d.Validate(); err != nil {
		var verr *draft.ValidationError
		if errors.As(err, &verr) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, verr.Rule, verr.Message)
			return
		}
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_draft", err.Error())
		return
	}

	var (
		entity   any
		location string
		err      error
	)
	ctx := r.Context()
	switch d.Kind {
	case draft.KindTemplate:
		entity, location, err = h.submitTemplate(ctx, d)
	case draft.KindProposal:
		entity, location, err = h.submitProposal(ctx, d)
	case draft.KindContract:
		entity, location, err = h.submitContract(ctx, d)
	}
	if err != nil {
		fail(w, r, "failed_to_save_"+string(d.Kind), err)
		return
	}
	if err := h.drafts.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("draft kept after submit", zap.String("draft_id", id), zap.Error(err))
	}
	status := http.StatusCreated
	if d.Kind == draft.KindProposal && d.TargetID > 0 {
		status = http.StatusOK
	}
	done(w, r, status, entity, location)
}

func (h *DraftHandler) submitTemplate(ctx context.Context, d draft.Draft) (any, string, error) {
	in, err := d.TemplatePayload()
	if err != nil {
		return nil, "", err
	}
	t, err := h.api.CreateTemplate(ctx, in)
	return t, fmt.Sprintf("/templates/%d", t.ID), err
}

func (h *DraftHandler) submitProposal(ctx context.Context, d draft.Draft) (any, string, error) {
	in, err := d.ProposalPayload()
	if err != nil {
		return nil, "", err
	}
	var p models.Proposal
	if d.TargetID > 0 {
		p, err = h.api.UpdateProposal(ctx, d.TargetID, in)
	} else {
		p, err = h.api.CreateProposal(ctx, in)
	}
	return p, fmt.Sprintf("/proposals/%d", p.ID), err
}

func (h *DraftHandler) submitContract(ctx context.Context, d draft.Draft) (any, string, error) {
	in, err := d.ContractPayload()
	if err != nil {
		return nil, "", err
	}
	c, err := h.api.CreateContract(ctx, in)
	return c, fmt.Sprintf("/contracts/%d", c.ID), err
}

func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.drafts.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "draft_not_found", id)
		return
	}
	if err != nil {
		fail(w, r, "failed_to_delete_draft", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/drafts")
}
