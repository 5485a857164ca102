package draft

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func flooring() models.Category {
	return models.Category{ID: 1, Name: "Flooring", Elements: []models.Element{
		{ID: 10, Name: "Oak Plank", MaterialCost: 120, LaborCost: 80},
		{ID: 11, Name: "Underlay", MaterialCost: 15, LaborCost: 5},
	}}
}

func mustReduce(t *testing.T, d Draft, actions ...Action) Draft {
	t.Helper()
	for _, a := range actions {
		var err error
		d, err = Reduce(d, a)
		require.NoError(t, err)
	}
	return d
}

func TestSelectWithoutEditRoundTrip(t *testing.T) {
	fetched := flooring()
	d := New(KindProposal, now, Defaults{})
	d = mustReduce(t, d,
		SetField{Field: "name", Value: "Kitchen"},
		SetField{Field: "client_name", Value: "Jane Doe"},
		SetField{Field: "client_email", Value: "jane@example.com"},
		SelectCategory{Category: fetched},
	)
	in, err := d.ProposalPayload()
	require.NoError(t, err)
	require.Len(t, in.Categories, 1)
	assert.Equal(t, fetched.Input(), in.Categories[0])
}

func TestEditCostUsesOverlay(t *testing.T) {
	fetched := flooring()
	d := mustReduce(t, New(KindProposal, now, Defaults{}),
		SelectCategory{Category: fetched},
		EditCost{CategoryID: 1, ElementID: 10, Field: MaterialCost, Value: "150"},
	)
	resolved := d.ResolvedCategories()
	assert.Equal(t, 150.0, resolved[0].Elements[0].MaterialCost)
	assert.Equal(t, 80.0, resolved[0].Elements[0].LaborCost)
	assert.Equal(t, 120.0, d.Categories[0].Elements[0].MaterialCost, "fetched definition must not change")
	assert.Equal(t, 120.0, fetched.Elements[0].MaterialCost)
}

func TestEditCostRejectsBadInput(t *testing.T) {
	d := mustReduce(t, New(KindProposal, now, Defaults{}), SelectCategory{Category: flooring()})
	for _, raw := range []string{"-5", "abc", "NaN"} {
		next, err := Reduce(d, EditCost{CategoryID: 1, ElementID: 10, Field: LaborCost, Value: raw})
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr, raw)
		assert.Contains(t, inputErr.Violations, "labor_cost")
		assert.Equal(t, d.ResolvedCategories(), next.ResolvedCategories())
	}
}

func TestRemoveCategoryPurgesOverlay(t *testing.T) {
	d := mustReduce(t, New(KindProposal, now, Defaults{}),
		SelectCategory{Category: flooring()},
		EditCost{CategoryID: 1, ElementID: 10, Field: MaterialCost, Value: "999"},
		RemoveCategory{ID: 1},
	)
	assert.Empty(t, d.Categories)
	assert.NotContains(t, d.Costs, int64(1))

	d = mustReduce(t, d, SelectCategory{Category: flooring()})
	assert.Equal(t, 120.0, d.ResolvedCategories()[0].Elements[0].MaterialCost, "reselect must start from fetched defaults")
}

func TestSelectCategoryTwiceIsNoop(t *testing.T) {
	d := mustReduce(t, New(KindTemplate, now, Defaults{}),
		SelectCategory{Category: flooring()},
		SelectCategory{Category: flooring()},
	)
	assert.Len(t, d.Categories, 1)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	d := mustReduce(t, New(KindProposal, now, Defaults{}), SelectCategory{Category: flooring()})
	_ = mustReduce(t, d,
		EditCost{CategoryID: 1, ElementID: 10, Field: MaterialCost, Value: "1"},
		RemoveCategory{ID: 1},
	)
	require.Len(t, d.Categories, 1)
	assert.Equal(t, 120.0, d.Costs[1][10].MaterialCost)
}

func TestCustomCategoryLifecycle(t *testing.T) {
	d := mustReduce(t, New(KindTemplate, now, Defaults{}), AddCustomCategory{Name: " Paint "})
	require.Len(t, d.CustomCategories, 1)
	id := d.CustomCategories[0].ID
	assert.Less(t, id, int64(0))
	assert.Equal(t, "Paint", d.CustomCategories[0].Name)

	d = mustReduce(t, d,
		AddCustomElement{CategoryID: id, Name: "Primer", MaterialCost: "30", LaborCost: "20"},
		AddCustomElement{CategoryID: id, Name: "Topcoat", MaterialCost: "40", LaborCost: ""},
	)
	assert.Equal(t, "$90.00", models.FormatMoney(d.CustomCategories[0].Total()))

	d = mustReduce(t, d, RemoveCustomElement{CategoryID: id, Index: 0})
	assert.Equal(t, "Topcoat", d.CustomCategories[0].Elements[0].Name)

	_, err := Reduce(d, AddCustomElement{CategoryID: id, Name: "Bad", MaterialCost: "-1"})
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)

	d = mustReduce(t, d, RemoveCustomCategory{ID: id})
	assert.Empty(t, d.CustomCategories)

	_, err = Reduce(d, AddCustomCategory{Name: "  "})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestVariables(t *testing.T) {
	wall := models.Variable{ID: 5, Name: "Wall", Category: models.LinearFeet, Value: 3}
	doors := models.Variable{ID: 6, Name: "Doors", Category: models.Count}
	d := mustReduce(t, New(KindProposal, now, Defaults{}),
		SelectVariable{Variable: doors},
		SelectVariable{Variable: wall},
		SelectVariable{Variable: wall},
		AddCustomVariable{Name: "Deck", Category: models.SquareFeet},
		SetVariableValue{ID: 6, Value: "4"},
	)
	all := d.AllVariables()
	require.Len(t, all, 3)
	assert.Equal(t, "Wall", all[0].Name, "taxonomy order")
	assert.Equal(t, 3.0, all[0].Value, "unset value falls back to fetched value")
	assert.Equal(t, 4.0, all[1].Value)
	assert.Equal(t, "Deck", all[2].Name)
	assert.Less(t, all[2].ID, int64(0))

	_, err := Reduce(d, SelectVariable{Variable: models.Variable{ID: 9, Category: "Gallons"}})
	assert.ErrorIs(t, err, ErrUnknownTag)
	_, err = Reduce(d, AddCustomVariable{Name: "x", Category: "Gallons"})
	assert.ErrorIs(t, err, ErrUnknownTag)

	d = mustReduce(t, d, RemoveVariable{ID: 6})
	assert.NotContains(t, d.Values, int64(6))
	d = mustReduce(t, d, SelectVariable{Variable: doors})
	assert.Equal(t, 0.0, d.AllVariables()[1].Value, "value must not leak back after reselect")

	customID := d.CustomVariables[0].ID
	d = mustReduce(t, d, RemoveCustomVariable{ID: customID})
	assert.NotContains(t, d.Values, customID)
}

func TestApplyTemplateCopiesByValue(t *testing.T) {
	tpl := models.Template{
		Name:       "Kitchen",
		Categories: []models.Category{flooring()},
		Variables:  []models.Variable{{ID: 5, Name: "Wall", Category: models.LinearFeet, Value: 7}},
	}
	d := mustReduce(t, New(KindProposal, now, Defaults{}),
		ApplyTemplate{Template: tpl},
		EditCost{CategoryID: 1, ElementID: 10, Field: MaterialCost, Value: "1"},
		SetVariableValue{ID: 5, Value: "2"},
	)
	assert.Equal(t, 120.0, tpl.Categories[0].Elements[0].MaterialCost)
	assert.Equal(t, 7.0, tpl.Variables[0].Value)
	assert.Equal(t, "Kitchen", d.Fields.Name)

	fresh := mustReduce(t, New(KindProposal, now, Defaults{}), ApplyTemplate{Template: tpl})
	assert.Equal(t, 0.0, fresh.AllVariables()[0].Value, "template values restart at zero")
}

func TestValidateFirstRule(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		steps []Action
		rule  string
	}{
		{"template name", KindTemplate, nil, "template_name_required"},
		{"template description", KindTemplate, []Action{SetField{"name", "T"}}, "template_description_required"},
		{"template category", KindTemplate, []Action{SetField{"name", "T"}, SetField{"description", "D"}}, "category_required"},
		{"template empty custom category", KindTemplate, []Action{
			SetField{"name", "T"}, SetField{"description", "D"}, AddCustomCategory{Name: "Empty"},
		}, "category_empty"},
		{"template variables", KindTemplate, []Action{
			SetField{"name", "T"}, SetField{"description", "D"}, SelectCategory{Category: flooring()},
		}, "variable_required"},
		{"proposal client", KindProposal, []Action{SetField{"name", "P"}}, "client_name_required"},
		{"proposal email", KindProposal, []Action{SetField{"name", "P"}, SetField{"client_name", "C"}}, "client_email_required"},
		{"contract proposal", KindContract, nil, "proposal_required"},
		{"contract dates", KindContract, []Action{
			LoadProposal{Proposal: models.Proposal{ID: 3, Name: "P", ClientName: "C"}},
			SetField{"start_date", "2024-05-01"}, SetField{"end_date", "2024-04-01"},
		}, "end_before_start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustReduce(t, New(tt.kind, now, Defaults{ContractorName: "Sam", PaymentAmount: "$5"}), tt.steps...)
			err := d.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.rule, verr.Rule)
		})
	}
}

func TestTemplatePayload(t *testing.T) {
	d := mustReduce(t, New(KindTemplate, now, Defaults{}),
		SetField{Field: "name", Value: "Kitchen"},
		SetField{Field: "description", Value: "Standard kitchen"},
		SelectCategory{Category: flooring()},
		AddCustomCategory{Name: "Paint"},
	)
	paintID := d.CustomCategories[0].ID
	d = mustReduce(t, d,
		AddCustomElement{CategoryID: paintID, Name: "Primer", MaterialCost: "30", LaborCost: "20"},
		SelectVariable{Variable: models.Variable{ID: 5, Name: "Wall", Category: models.LinearFeet}},
		AddCustomVariable{Name: "Deck", Category: models.SquareFeet},
	)
	in, err := d.TemplatePayload()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, in.Categories)
	assert.Equal(t, "Paint", in.NewCategories[0].Name)
	assert.Equal(t, []int64{5}, in.Variables)
	assert.Equal(t, []models.TemplateVariableInput{{Name: "Deck", Category: models.SquareFeet}}, in.NewVariables)

	_, err = d.ProposalPayload()
	assert.Error(t, err, "kind mismatch")
}

func TestContractDraft(t *testing.T) {
	d := New(KindContract, now, Defaults{ContractorName: "Sam Builder", ContractorCompany: "Builder & Co", PaymentAmount: "$5"})
	assert.Equal(t, "2024-01-15", d.Fields.StartDate.String())
	assert.Equal(t, "2024-04-15", d.Fields.EndDate.String())
	assert.Equal(t, DefaultTermsAndConditions, d.Fields.TermsAndConditions)

	p := models.Proposal{ID: 3, Name: "Kitchen", ClientName: "Jane Doe", Categories: []models.Category{flooring()}}
	d = mustReduce(t, d, LoadProposal{Proposal: p})
	assert.Equal(t, "Contract for Jane Doe || Kitchen", d.Fields.ContractTitle)

	in, err := d.ContractPayload()
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.Proposal)
	assert.Equal(t, 5.0, in.PaymentAmount)

	snap := d.ContractSnapshot()
	assert.Equal(t, "Jane Doe", snap.ClientName)
	assert.Len(t, snap.Categories, 1)
}

func TestDecodeAction(t *testing.T) {
	a, typ, err := DecodeAction([]byte(`{"type":"edit_cost","category_id":1,"element_id":10,"field":"labor_cost","value":95.5}`))
	require.NoError(t, err)
	assert.Equal(t, "edit_cost", typ)
	assert.Equal(t, EditCost{CategoryID: 1, ElementID: 10, Field: LaborCost, Value: "95.5"}, a)

	a, typ, err = DecodeAction([]byte(`{"type":"select_category","id":4}`))
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, "select_category", typ)
	id, err := Reference([]byte(`{"type":"select_category","id":4}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	_, _, err = DecodeAction([]byte(`{"type":"launch_rockets"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestSetFieldUnknown(t *testing.T) {
	_, err := Reduce(New(KindProposal, now, Defaults{}), SetField{Field: "colour", Value: "red"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestContractDraftKeepsProposal(t *testing.T) {
	p := models.Proposal{ID: 3, Name: "Kitchen", ClientName: "Jane Doe", Categories: []models.Category{flooring()},
		Variables: []models.Variable{{ID: 5, Name: "Wall", Category: models.LinearFeet, Value: 12}}}
	d := mustReduce(t, New(KindContract, now, Defaults{PaymentAmount: "$5"}), LoadProposal{Proposal: p})
	total := models.FormatMoney(d.Proposal().Total())

	for _, a := range []Action{
		EditCost{CategoryID: 1, ElementID: 10, Field: MaterialCost, Value: "9000"},
		SetVariableValue{ID: 5, Value: "40"},
		RemoveCategory{ID: 1},
		AddCustomCategory{Name: "Paint"},
		SelectVariable{Variable: models.Variable{ID: 6, Name: "Deck", Category: models.SquareFeet}},
		ApplyTemplate{Template: models.Template{Name: "T"}},
		SetField{Field: "client_name", Value: "Someone Else"},
	} {
		next, err := Reduce(d, a)
		assert.ErrorIs(t, err, ErrProposalLocked, "%T", a)
		assert.Equal(t, total, models.FormatMoney(next.Proposal().Total()))
	}

	d = mustReduce(t, d, SetField{Field: "payment_amount", Value: "$4,500"})
	assert.Equal(t, "$4,500", d.Fields.PaymentAmount)
	assert.Equal(t, "Jane Doe", d.ContractSnapshot().ClientName)
}
