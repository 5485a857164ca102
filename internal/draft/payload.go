package draft

import (
	"fmt"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/models"
)

// TemplatePayload builds the template create body. Selected categories and
// variables are sent by id, custom ones embedded.
func (d Draft) TemplatePayload() (models.TemplateInput, error) {
	if err := d.checkKind(KindTemplate); err != nil {
		return models.TemplateInput{}, err
	}
	if err := d.Validate(); err != nil {
		return models.TemplateInput{}, err
	}
	in := models.TemplateInput{
		Name:          d.Fields.Name,
		Description:   d.Fields.Description,
		Categories:    []int64{},
		NewCategories: []models.CategoryInput{},
		Variables:     []int64{},
		NewVariables:  []models.TemplateVariableInput{},
	}
	for _, c := range d.Categories {
		in.Categories = append(in.Categories, c.ID)
	}
	for _, c := range d.CustomCategories {
		in.NewCategories = append(in.NewCategories, c.Input())
	}
	for _, tag := range models.VariableTaxonomy {
		for _, v := range d.Variables[tag] {
			in.Variables = append(in.Variables, v.ID)
		}
	}
	for _, v := range d.CustomVariables {
		in.NewVariables = append(in.NewVariables, models.TemplateVariableInput{Name: v.Name, Category: v.Category})
	}
	return in, nil
}

// ProposalPayload builds the proposal create or update body with edited costs
// and current variable values.
func (d Draft) ProposalPayload() (models.ProposalInput, error) {
	if err := d.checkKind(KindProposal); err != nil {
		return models.ProposalInput{}, err
	}
	if err := d.Validate(); err != nil {
		return models.ProposalInput{}, err
	}
	in := models.ProposalInput{
		Name:        d.Fields.Name,
		Description: d.Fields.Description,
		ClientName:  d.Fields.ClientName,
		ClientEmail: d.Fields.ClientEmail,
		Categories:  []models.CategoryInput{},
		Variables:   []models.VariableInput{},
	}
	for _, c := range d.ResolvedCategories() {
		in.Categories = append(in.Categories, c.Input())
	}
	for _, v := range d.AllVariables() {
		in.Variables = append(in.Variables, v.Input())
	}
	return in, nil
}

// ContractPayload builds the contract create body.
func (d Draft) ContractPayload() (models.ContractInput, error) {
	if err := d.checkKind(KindContract); err != nil {
		return models.ContractInput{}, err
	}
	if err := d.Validate(); err != nil {
		return models.ContractInput{}, err
	}
	f := d.Fields
	amount, _ := models.ParseMoney(f.PaymentAmount)
	return models.ContractInput{
		Proposal:            d.TargetID,
		Title:               f.ContractTitle,
		ContractorName:      f.ContractorName,
		ContractorCompany:   f.ContractorCompany,
		TermsAndConditions:  f.TermsAndConditions,
		ClientSignature:     f.ClientSignature,
		ClientInitials:      f.ClientInitials,
		ContractorSignature: f.ContractorSignature,
		ContractorInitials:  f.ContractorInitials,
		PaymentTerms:        f.PaymentTerms,
		StartDate:           f.StartDate,
		EndDate:             f.EndDate,
		PaymentAmount:       amount,
		Scope:               f.Scope,
		AdditionalNotes:     f.AdditionalNotes,
		ClientAddress:       f.ClientAddress,
	}, nil
}

// ContractSnapshot is what the contract preview of the draft shows.
func (d Draft) ContractSnapshot() document.ContractSnapshot {
	f := d.Fields
	return document.ContractSnapshot{
		Title:               f.ContractTitle,
		ContractorName:      f.ContractorName,
		ContractorCompany:   f.ContractorCompany,
		ContractorInitials:  f.ContractorInitials,
		ContractorSignature: f.ContractorSignature,
		ClientName:          f.ClientName,
		ClientAddress:       f.ClientAddress,
		ClientInitials:      f.ClientInitials,
		ClientSignature:     f.ClientSignature,
		StartDate:           f.StartDate,
		EndDate:             f.EndDate,
		PaymentAmount:       f.PaymentAmount,
		PaymentTerms:        f.PaymentTerms,
		Scope:               f.Scope,
		TermsAndConditions:  f.TermsAndConditions,
		AdditionalNotes:     f.AdditionalNotes,
		Categories:          d.ResolvedCategories(),
		Variables:           d.AllVariables(),
	}
}

// Proposal is what the proposal preview of the draft shows. Template drafts
// preview the same way.
func (d Draft) Proposal() models.Proposal {
	return models.Proposal{
		ID:          d.TargetID,
		Name:        d.Fields.Name,
		Description: d.Fields.Description,
		ClientName:  d.Fields.ClientName,
		ClientEmail: d.Fields.ClientEmail,
		Categories:  d.ResolvedCategories(),
		Variables:   d.AllVariables(),
	}
}

func (d Draft) checkKind(want Kind) error {
	if d.Kind != want {
		return fmt.Errorf("draft is a %s, not a %s", d.Kind, want)
	}
	return nil
}
