package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/validation"
)

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownCategory = errors.New("category not in draft")
	ErrUnknownElement  = errors.New("element not in category")
	ErrUnknownVariable = errors.New("variable not in draft")
	ErrUnknownTag      = errors.New("unknown variable category")
	ErrUnknownAction   = errors.New("unknown action")
	ErrEmptyName       = errors.New("name is required")
	// ErrProposalLocked rejects edits a contract draft cannot carry into
	// the saved contract, which references the proposal as stored.
	ErrProposalLocked = errors.New("contract drafts cannot change the proposal")
)

// InputError reports user input rejected by an action. Violations maps the
// offending field to a validation code.
type InputError struct {
	Violations validation.Violations
}

func (e *InputError) Error() string {
	field, code := e.Violations.First()
	return fmt.Sprintf("invalid %s: %s", field, code)
}

// Action is one edit of a draft.
type Action interface {
	apply(d *Draft) error
}

// Reduce applies a to a copy of d. On error d is returned unchanged.
func Reduce(d Draft, a Action) (Draft, error) {
	if d.Kind == KindContract && editsProposal(a) {
		return d, fmt.Errorf("%w: %T", ErrProposalLocked, a)
	}
	next := d.Clone()
	next.init()
	if err := a.apply(&next); err != nil {
		return d, err
	}
	return next, nil
}

func editsProposal(a Action) bool {
	switch a := a.(type) {
	case SetField:
		switch a.Field {
		case "name", "description", "client_name", "client_email":
			return true
		}
	case SelectCategory, RemoveCategory, AddCustomCategory, RemoveCustomCategory,
		AddCustomElement, RemoveCustomElement, EditCost,
		SelectVariable, RemoveVariable, AddCustomVariable, RemoveCustomVariable,
		SetVariableValue, ApplyTemplate:
		return true
	}
	return false
}

// SetField sets a header field by its JSON name.
type SetField struct {
	Field string
	Value string
}

func (a SetField) apply(d *Draft) error {
	f := &d.Fields
	switch a.Field {
	case "name":
		f.Name = a.Value
	case "description":
		f.Description = a.Value
	case "client_name":
		f.ClientName = a.Value
	case "client_email":
		f.ClientEmail = a.Value
	case "contract_title":
		f.ContractTitle = a.Value
	case "contractor_name":
		f.ContractorName = a.Value
	case "contractor_company":
		f.ContractorCompany = a.Value
	case "contractor_initials":
		f.ContractorInitials = a.Value
	case "contractor_signature":
		f.ContractorSignature = a.Value
	case "client_address":
		f.ClientAddress = a.Value
	case "client_initials":
		f.ClientInitials = a.Value
	case "client_signature":
		f.ClientSignature = a.Value
	case "payment_amount":
		f.PaymentAmount = a.Value
	case "payment_terms":
		f.PaymentTerms = a.Value
	case "scope":
		f.Scope = a.Value
	case "terms_and_conditions":
		f.TermsAndConditions = a.Value
	case "additional_notes":
		f.AdditionalNotes = a.Value
	case "start_date", "end_date":
		date, err := models.ParseDate(a.Value)
		if err != nil {
			return &InputError{Violations: validation.Violations{a.Field: "invalid_date"}}
		}
		if a.Field == "start_date" {
			f.StartDate = date
		} else {
			f.EndDate = date
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, a.Field)
	}
	return nil
}

// SelectCategory adds a fetched category. Selecting an id twice is a no-op.
type SelectCategory struct {
	Category models.Category
}

func (a SelectCategory) apply(d *Draft) error {
	if d.categoryIndex(a.Category.ID) >= 0 {
		return nil
	}
	c := a.Category.Clone()
	d.Categories = append(d.Categories, c)
	seedCosts(d, c)
	return nil
}

func seedCosts(d *Draft, c models.Category) {
	overlay := make(map[int64]models.Element, len(c.Elements))
	for _, e := range c.Elements {
		if e.ID != 0 {
			overlay[e.ID] = e
		}
	}
	d.Costs[c.ID] = overlay
}

// RemoveCategory drops a selected category and its cost edits.
type RemoveCategory struct {
	ID int64
}

func (a RemoveCategory) apply(d *Draft) error {
	i := d.categoryIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, a.ID)
	}
	d.Categories = append(d.Categories[:i], d.Categories[i+1:]...)
	delete(d.Costs, a.ID)
	return nil
}

// AddCustomCategory creates an unsaved category with a temporary id.
type AddCustomCategory struct {
	Name string
}

func (a AddCustomCategory) apply(d *Draft) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	d.CustomCategories = append(d.CustomCategories, models.Category{ID: d.nextTempID(), Name: name})
	return nil
}

type RemoveCustomCategory struct {
	ID int64
}

func (a RemoveCustomCategory) apply(d *Draft) error {
	i := d.customCategoryIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, a.ID)
	}
	d.CustomCategories = append(d.CustomCategories[:i], d.CustomCategories[i+1:]...)
	return nil
}

// AddCustomElement appends an element to a custom category. Costs are raw
// user input.
type AddCustomElement struct {
	CategoryID   int64
	Name         string
	MaterialCost string
	LaborCost    string
}

func (a AddCustomElement) apply(d *Draft) error {
	i := d.customCategoryIndex(a.CategoryID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, a.CategoryID)
	}
	v := make(validation.Violations)
	validation.Required("name", a.Name, v)
	material := validation.ParseCost("material_cost", a.MaterialCost, v)
	labor := validation.ParseCost("labor_cost", a.LaborCost, v)
	if !v.Empty() {
		return &InputError{Violations: v}
	}
	c := &d.CustomCategories[i]
	c.Elements = append(c.Elements, models.Element{
		Name:         strings.TrimSpace(a.Name),
		MaterialCost: material,
		LaborCost:    labor,
	})
	return nil
}

// RemoveCustomElement removes the element at Index of a custom category.
type RemoveCustomElement struct {
	CategoryID int64
	Index      int
}

func (a RemoveCustomElement) apply(d *Draft) error {
	i := d.customCategoryIndex(a.CategoryID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, a.CategoryID)
	}
	c := &d.CustomCategories[i]
	if a.Index < 0 || a.Index >= len(c.Elements) {
		return fmt.Errorf("%w: index %d", ErrUnknownElement, a.Index)
	}
	c.Elements = append(c.Elements[:a.Index], c.Elements[a.Index+1:]...)
	return nil
}

type CostField string

const (
	MaterialCost CostField = "material_cost"
	LaborCost    CostField = "labor_cost"
)

// EditCost changes one cost of an element of a selected category.
type EditCost struct {
	CategoryID int64
	ElementID  int64
	Field      CostField
	Value      string
}

func (a EditCost) apply(d *Draft) error {
	ci := d.categoryIndex(a.CategoryID)
	if ci < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, a.CategoryID)
	}
	base, ok := d.Categories[ci].Element(a.ElementID)
	if !ok || a.ElementID == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownElement, a.ElementID)
	}
	if a.Field != MaterialCost && a.Field != LaborCost {
		return fmt.Errorf("%w: %q", ErrUnknownField, a.Field)
	}
	v := make(validation.Violations)
	cost := validation.ParseCost(string(a.Field), a.Value, v)
	if !v.Empty() {
		return &InputError{Violations: v}
	}
	overlay := d.Costs[a.CategoryID]
	if overlay == nil {
		overlay = map[int64]models.Element{}
		d.Costs[a.CategoryID] = overlay
	}
	el, ok := overlay[a.ElementID]
	if !ok {
		el = base
	}
	if a.Field == MaterialCost {
		el.MaterialCost = cost
	} else {
		el.LaborCost = cost
	}
	overlay[a.ElementID] = el
	return nil
}

// SelectVariable adds a fetched variable to the bucket of its tag.
type SelectVariable struct {
	Variable models.Variable
}

func (a SelectVariable) apply(d *Draft) error {
	v := a.Variable
	if !v.Category.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownTag, v.Category)
	}
	if d.hasVariable(v.ID) {
		return nil
	}
	d.Variables[v.Category] = append(d.Variables[v.Category], v)
	return nil
}

// RemoveVariable drops a selected variable and its value.
type RemoveVariable struct {
	ID int64
}

func (a RemoveVariable) apply(d *Draft) error {
	for tag, vars := range d.Variables {
		for i, v := range vars {
			if v.ID != a.ID {
				continue
			}
			d.Variables[tag] = append(vars[:i], vars[i+1:]...)
			if len(d.Variables[tag]) == 0 {
				delete(d.Variables, tag)
			}
			delete(d.Values, a.ID)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownVariable, a.ID)
}

// AddCustomVariable creates an unsaved variable with a temporary id.
type AddCustomVariable struct {
	Name     string
	Category models.VariableCategory
}

func (a AddCustomVariable) apply(d *Draft) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if !a.Category.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownTag, a.Category)
	}
	id := d.nextTempID()
	d.CustomVariables = append(d.CustomVariables, models.Variable{ID: id, Name: name, Category: a.Category})
	d.Values[id] = 0
	return nil
}

type RemoveCustomVariable struct {
	ID int64
}

func (a RemoveCustomVariable) apply(d *Draft) error {
	for i, v := range d.CustomVariables {
		if v.ID == a.ID {
			d.CustomVariables = append(d.CustomVariables[:i], d.CustomVariables[i+1:]...)
			delete(d.Values, a.ID)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownVariable, a.ID)
}

// SetVariableValue sets the quantity of a selected or custom variable.
type SetVariableValue struct {
	ID    int64
	Value string
}

func (a SetVariableValue) apply(d *Draft) error {
	if !d.hasVariable(a.ID) {
		return fmt.Errorf("%w: %d", ErrUnknownVariable, a.ID)
	}
	v := make(validation.Violations)
	val := validation.ParseCost("value", a.Value, v)
	if !v.Empty() {
		return &InputError{Violations: v}
	}
	d.Values[a.ID] = val
	return nil
}

// ApplyTemplate replaces the selected categories and variables with copies of
// the template's. Values restart at zero; custom entries are kept.
type ApplyTemplate struct {
	Template models.Template
}

func (a ApplyTemplate) apply(d *Draft) error {
	d.Categories = nil
	d.Costs = map[int64]map[int64]models.Element{}
	for _, c := range a.Template.Categories {
		if d.categoryIndex(c.ID) >= 0 {
			continue
		}
		cc := c.Clone()
		d.Categories = append(d.Categories, cc)
		seedCosts(d, cc)
	}
	for _, v := range d.Variables {
		for _, old := range v {
			delete(d.Values, old.ID)
		}
	}
	d.Variables = map[models.VariableCategory][]models.Variable{}
	for _, v := range a.Template.Variables {
		if !v.Category.Known() || d.hasVariable(v.ID) {
			continue
		}
		d.Variables[v.Category] = append(d.Variables[v.Category], v)
		d.Values[v.ID] = 0
	}
	if d.Fields.Name == "" {
		d.Fields.Name = a.Template.Name
	}
	if d.Fields.Description == "" {
		d.Fields.Description = a.Template.Description
	}
	return nil
}

// LoadProposal seeds a draft from a saved proposal. Proposal drafts edit it;
// contract drafts reference it and show its categories and variables.
type LoadProposal struct {
	Proposal models.Proposal
}

func (a LoadProposal) apply(d *Draft) error {
	p := a.Proposal
	d.TargetID = p.ID
	d.Fields.Name = p.Name
	d.Fields.Description = p.Description
	d.Fields.ClientName = p.ClientName
	d.Fields.ClientEmail = p.ClientEmail
	if d.Kind == KindContract {
		d.Fields.ContractTitle = fmt.Sprintf("Contract for %s || %s", p.ClientName, p.Name)
	}
	d.Categories = nil
	d.Costs = map[int64]map[int64]models.Element{}
	for _, c := range p.Categories {
		cc := c.Clone()
		d.Categories = append(d.Categories, cc)
		seedCosts(d, cc)
	}
	d.Variables = map[models.VariableCategory][]models.Variable{}
	d.Values = map[int64]float64{}
	for _, v := range p.Variables {
		if !v.Category.Known() {
			continue
		}
		d.Variables[v.Category] = append(d.Variables[v.Category], v)
		d.Values[v.ID] = v.Value
	}
	return nil
}

// flexString decodes a JSON string or number into its text form.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type envelope struct {
	Type         string                  `json:"type"`
	Field        string                  `json:"field"`
	Value        flexString              `json:"value"`
	ID           int64                   `json:"id"`
	CategoryID   int64                   `json:"category_id"`
	ElementID    int64                   `json:"element_id"`
	Index        int                     `json:"index"`
	Name         string                  `json:"name"`
	Tag          models.VariableCategory `json:"variable_category"`
	MaterialCost flexString              `json:"material_cost"`
	LaborCost    flexString              `json:"labor_cost"`
}

// DecodeAction parses the JSON form of the actions that carry only user
// input. Actions that need backend data (selecting a category, variable,
// template or proposal) are built by the caller after fetching it.
func DecodeAction(data []byte) (Action, string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", err
	}
	switch env.Type {
	case "set_field":
		return SetField{Field: env.Field, Value: string(env.Value)}, env.Type, nil
	case "remove_category":
		return RemoveCategory{ID: env.ID}, env.Type, nil
	case "add_custom_category":
		return AddCustomCategory{Name: env.Name}, env.Type, nil
	case "remove_custom_category":
		return RemoveCustomCategory{ID: env.ID}, env.Type, nil
	case "add_custom_element":
		return AddCustomElement{
			CategoryID:   env.CategoryID,
			Name:         env.Name,
			MaterialCost: string(env.MaterialCost),
			LaborCost:    string(env.LaborCost),
		}, env.Type, nil
	case "remove_custom_element":
		return RemoveCustomElement{CategoryID: env.CategoryID, Index: env.Index}, env.Type, nil
	case "edit_cost":
		return EditCost{
			CategoryID: env.CategoryID,
			ElementID:  env.ElementID,
			Field:      CostField(env.Field),
			Value:      string(env.Value),
		}, env.Type, nil
	case "remove_variable":
		return RemoveVariable{ID: env.ID}, env.Type, nil
	case "add_custom_variable":
		return AddCustomVariable{Name: env.Name, Category: env.Tag}, env.Type, nil
	case "remove_custom_variable":
		return RemoveCustomVariable{ID: env.ID}, env.Type, nil
	case "set_variable_value":
		return SetVariableValue{ID: env.ID, Value: string(env.Value)}, env.Type, nil
	case "select_category", "select_variable", "apply_template", "load_proposal":
		return nil, env.Type, nil
	}
	return nil, env.Type, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}

// Reference returns the backend id a fetch-backed action points at.
func Reference(data []byte) (int64, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, err
	}
	return env.ID, nil
}
