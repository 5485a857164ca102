package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diewo77/proposal-desk/httpx"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/validation"
)

// CatalogHandler administers the reusable categories, elements and
// variables.
type CatalogHandler struct {
	api *gateway.Client
}

func NewCatalogHandler(api *gateway.Client) *CatalogHandler {
	return &CatalogHandler{api: api}
}

// catalogPage loads everything the admin page shows.
func (h *CatalogHandler) catalogPage(ctx context.Context) (map[string]any, error) {
	var (
		categories []models.Category
		elements   []models.Element
		variables  []models.Variable
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { categories, err = h.api.ListCategories(ctx); return })
	g.Go(func() (err error) { elements, err = h.api.ListElements(ctx); return })
	g.Go(func() (err error) { variables, err = h.api.ListVariables(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	groups, unmatched := models.GroupVariables(variables)
	return map[string]any{
		"Categories": categories,
		"Elements":   elements,
		"Variables":  variables,
		"Groups":     groups,
		"Unmatched":  unmatched,
		"Taxonomy":   models.VariableTaxonomy,
	}, nil
}

// Catalog renders the admin page.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalogPage(r.Context())
	if err != nil {
		fail(w, r, "failed_to_load_catalog", err)
		return
	}
	page(w, r, "catalog.html", data)
}

func (h *CatalogHandler) invalid(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	var data map[string]any
	if !httpx.WantsJSON(r) {
		var err error
		if data, err = h.catalogPage(r.Context()); err != nil {
			fail(w, r, "failed_to_load_catalog", err)
			return
		}
	}
	invalid(w, r, v, "catalog.html", data)
}

// done answers a successful write: the entity as JSON, or back to the page.
func done(w http.ResponseWriter, r *http.Request, status int, entity any, location string) {
	if httpx.WantsJSON(r) {
		if entity == nil {
			httpx.NoContent(w)
			return
		}
		httpx.JSON(w, status, entity)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Categories

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if !httpx.WantsJSON(r) {
		h.Catalog(w, r)
		return
	}
	categories, err := h.api.ListCategories(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

// categoryInput reads a category from JSON or from a form with parallel
// element_name / material_cost / labor_cost fields.
func categoryInput(w http.ResponseWriter, r *http.Request) (models.CategoryInput, validation.Violations, bool) {
	var in models.CategoryInput
	v := make(validation.Violations)
	if isJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return in, nil, false
		}
		for i, e := range in.Elements {
			validation.NonNegativeFloat(fmt.Sprintf("elements[%d].material_cost", i), e.MaterialCost, v)
			validation.NonNegativeFloat(fmt.Sprintf("elements[%d].labor_cost", i), e.LaborCost, v)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", err.Error())
			return in, nil, false
		}
		in.Name = r.PostForm.Get("name")
		names := r.PostForm["element_name"]
		materials := r.PostForm["material_cost"]
		labors := r.PostForm["labor_cost"]
		for i, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			// Blank rows are dropped, so keys use the position among kept rows.
			n := len(in.Elements)
			in.Elements = append(in.Elements, models.ElementInput{
				Name:         strings.TrimSpace(name),
				MaterialCost: validation.ParseCost(fmt.Sprintf("elements[%d].material_cost", n), at(materials, i), v),
				LaborCost:    validation.ParseCost(fmt.Sprintf("elements[%d].labor_cost", n), at(labors, i), v),
			})
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	validation.Required("name", in.Name, v)
	if len(in.Elements) == 0 {
		v["elements"] = "required"
	}
	for i, e := range in.Elements {
		validation.Required(fmt.Sprintf("elements[%d].name", i), e.Name, v)
	}
	return in, v, true
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in, v, ok := categoryInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	c, err := h.api.CreateCategory(r.Context(), in)
	if err != nil {
		fail(w, r, "failed_to_create_category", err)
		return
	}
	done(w, r, http.StatusCreated, c, "/catalog")
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	in, v, ok := categoryInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	c, err := h.api.UpdateCategory(r.Context(), id, in)
	if err != nil {
		fail(w, r, "failed_to_update_category", err)
		return
	}
	done(w, r, http.StatusOK, c, "/catalog")
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteCategory(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_category", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/catalog")
}

// Elements

func elementInput(w http.ResponseWriter, r *http.Request) (models.ElementInput, validation.Violations, bool) {
	var in models.ElementInput
	v := make(validation.Violations)
	if isJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return in, nil, false
		}
		validation.NonNegativeFloat("material_cost", in.MaterialCost, v)
		validation.NonNegativeFloat("labor_cost", in.LaborCost, v)
	} else {
		in.Name = r.FormValue("name")
		in.MaterialCost = validation.ParseCost("material_cost", r.FormValue("material_cost"), v)
		in.LaborCost = validation.ParseCost("labor_cost", r.FormValue("labor_cost"), v)
	}
	in.Name = strings.TrimSpace(in.Name)
	validation.Required("name", in.Name, v)
	return in, v, true
}

func (h *CatalogHandler) ListElements(w http.ResponseWriter, r *http.Request) {
	if !httpx.WantsJSON(r) {
		h.Catalog(w, r)
		return
	}
	elements, err := h.api.ListElements(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_elements", err)
		return
	}
	httpx.JSON(w, http.StatusOK, elements)
}

func (h *CatalogHandler) CreateElement(w http.ResponseWriter, r *http.Request) {
	in, v, ok := elementInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	e, err := h.api.CreateElement(r.Context(), in)
	if err != nil {
		fail(w, r, "failed_to_create_element", err)
		return
	}
	done(w, r, http.StatusCreated, e, "/catalog")
}

func (h *CatalogHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	in, v, ok := elementInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	e, err := h.api.UpdateElement(r.Context(), id, in)
	if err != nil {
		fail(w, r, "failed_to_update_element", err)
		return
	}
	done(w, r, http.StatusOK, e, "/catalog")
}

func (h *CatalogHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteElement(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_element", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/catalog")
}

// Variables

func variableInput(w http.ResponseWriter, r *http.Request) (models.VariableInput, validation.Violations, bool) {
	var in models.VariableInput
	v := make(validation.Violations)
	if isJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return in, nil, false
		}
		validation.NonNegativeFloat("value", in.Value, v)
	} else {
		in.Name = r.FormValue("name")
		in.Category = models.VariableCategory(r.FormValue("category"))
		in.Value = validation.ParseCost("value", r.FormValue("value"), v)
	}
	in.Name = strings.TrimSpace(in.Name)
	validation.Required("name", in.Name, v)
	validation.OneOfTaxonomy("category", in.Category, v)
	return in, v, true
}

func (h *CatalogHandler) ListVariables(w http.ResponseWriter, r *http.Request) {
	if !httpx.WantsJSON(r) {
		h.Catalog(w, r)
		return
	}
	variables, err := h.api.ListVariables(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_variables", err)
		return
	}
	groups, unmatched := models.GroupVariables(variables)
	httpx.JSON(w, http.StatusOK, map[string]any{"items": variables, "groups": groups, "unmatched": unmatched})
}

func (h *CatalogHandler) CreateVariable(w http.ResponseWriter, r *http.Request) {
	in, v, ok := variableInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	created, err := h.api.CreateVariable(r.Context(), in)
	if err != nil {
		fail(w, r, "failed_to_create_variable", err)
		return
	}
	done(w, r, http.StatusCreated, created, "/catalog")
}

func (h *CatalogHandler) UpdateVariable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	in, v, ok := variableInput(w, r)
	if !ok {
		return
	}
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	updated, err := h.api.UpdateVariable(r.Context(), id, in)
	if err != nil {
		fail(w, r, "failed_to_update_variable", err)
		return
	}
	done(w, r, http.StatusOK, updated, "/catalog")
}

func (h *CatalogHandler) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteVariable(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_variable", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/catalog")
}
