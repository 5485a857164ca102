package gateway

import (
	"context"
	"net/http"

	"github.com/diewo77/proposal-desk/internal/models"
)

const (
	categoriesPath = "/proposal-categories"
	elementsPath   = "/proposal-elements"
	variablesPath  = "/variables"
	proposalsPath  = "/proposals"
	templatesPath  = "/templates"
	contractsPath  = "/contracts"
)

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.doJSON(ctx, http.MethodGet, categoriesPath, nil, &out)
	return out, err
}

// GetCategory has no endpoint of its own; the list is filtered.
func (c *Client) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	all, err := c.ListCategories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, cat := range all {
		if cat.ID == id {
			return cat, nil
		}
	}
	return models.Category{}, &StatusError{Method: http.MethodGet, Path: itemPath(categoriesPath, id), StatusCode: http.StatusNotFound}
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	err := c.doJSON(ctx, http.MethodPost, categoriesPath, in, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	err := c.doJSON(ctx, http.MethodPut, itemPath(categoriesPath, id), in, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(categoriesPath, id), nil, nil)
}

// Elements

func (c *Client) ListElements(ctx context.Context) ([]models.Element, error) {
	var out []models.Element
	err := c.doJSON(ctx, http.MethodGet, elementsPath, nil, &out)
	return out, err
}

func (c *Client) CreateElement(ctx context.Context, in models.ElementInput) (models.Element, error) {
	var out models.Element
	err := c.doJSON(ctx, http.MethodPost, elementsPath, in, &out)
	return out, err
}

func (c *Client) UpdateElement(ctx context.Context, id int64, in models.ElementInput) (models.Element, error) {
	var out models.Element
	err := c.doJSON(ctx, http.MethodPut, itemPath(elementsPath, id), in, &out)
	return out, err
}

func (c *Client) DeleteElement(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(elementsPath, id), nil, nil)
}

// Variables

func (c *Client) ListVariables(ctx context.Context) ([]models.Variable, error) {
	var out []models.Variable
	err := c.doJSON(ctx, http.MethodGet, variablesPath, nil, &out)
	return out, err
}

// GetVariable filters the list like GetCategory.
func (c *Client) GetVariable(ctx context.Context, id int64) (models.Variable, error) {
	all, err := c.ListVariables(ctx)
	if err != nil {
		return models.Variable{}, err
	}
	for _, v := range all {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Variable{}, &StatusError{Method: http.MethodGet, Path: itemPath(variablesPath, id), StatusCode: http.StatusNotFound}
}

func (c *Client) CreateVariable(ctx context.Context, in models.VariableInput) (models.Variable, error) {
	var out models.Variable
	err := c.doJSON(ctx, http.MethodPost, variablesPath, in, &out)
	return out, err
}

func (c *Client) UpdateVariable(ctx context.Context, id int64, in models.VariableInput) (models.Variable, error) {
	var out models.Variable
	err := c.doJSON(ctx, http.MethodPut, itemPath(variablesPath, id), in, &out)
	return out, err
}

func (c *Client) DeleteVariable(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(variablesPath, id), nil, nil)
}

// Proposals

func (c *Client) ListProposals(ctx context.Context) ([]models.Proposal, error) {
	var out []models.Proposal
	err := c.doJSON(ctx, http.MethodGet, proposalsPath, nil, &out)
	return out, err
}

func (c *Client) GetProposal(ctx context.Context, id int64) (models.Proposal, error) {
	var out models.Proposal
	err := c.doJSON(ctx, http.MethodGet, itemPath(proposalsPath, id), nil, &out)
	return out, err
}

func (c *Client) CreateProposal(ctx context.Context, in models.ProposalInput) (models.Proposal, error) {
	var out models.Proposal
	err := c.doJSON(ctx, http.MethodPost, proposalsPath, in, &out)
	return out, err
}

func (c *Client) UpdateProposal(ctx context.Context, id int64, in models.ProposalInput) (models.Proposal, error) {
	var out models.Proposal
	err := c.doJSON(ctx, http.MethodPut, itemPath(proposalsPath, id), in, &out)
	return out, err
}

func (c *Client) DeleteProposal(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(proposalsPath, id), nil, nil)
}

// Templates

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	err := c.doJSON(ctx, http.MethodGet, templatesPath, nil, &out)
	return out, err
}

func (c *Client) GetTemplate(ctx context.Context, id int64) (models.Template, error) {
	var out models.Template
	err := c.doJSON(ctx, http.MethodGet, itemPath(templatesPath, id), nil, &out)
	return out, err
}

func (c *Client) CreateTemplate(ctx context.Context, in models.TemplateInput) (models.Template, error) {
	var out models.Template
	err := c.doJSON(ctx, http.MethodPost, templatesPath, in, &out)
	return out, err
}

func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(templatesPath, id), nil, nil)
}

// Contracts

func (c *Client) ListContracts(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	err := c.doJSON(ctx, http.MethodGet, contractsPath, nil, &out)
	return out, err
}

func (c *Client) GetContract(ctx context.Context, id int64) (models.Contract, error) {
	var out models.Contract
	err := c.doJSON(ctx, http.MethodGet, itemPath(contractsPath, id), nil, &out)
	return out, err
}

func (c *Client) CreateContract(ctx context.Context, in models.ContractInput) (models.Contract, error) {
	var out models.Contract
	err := c.doJSON(ctx, http.MethodPost, contractsPath, in, &out)
	return out, err
}

func (c *Client) DeleteContract(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(contractsPath, id), nil, nil)
}
