package draft

import (
	"fmt"
	"strings"

	"github.com/diewo77/proposal-desk/internal/models"
)

// ValidationError names the first rule a draft violates.
type ValidationError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func violation(rule, msg string) error {
	return &ValidationError{Rule: rule, Message: msg}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Validate checks the draft can be submitted and returns the first violated
// rule as a *ValidationError.
func (d Draft) Validate() error {
	switch d.Kind {
	case KindTemplate:
		return d.validateTemplate()
	case KindProposal:
		return d.validateProposal()
	case KindContract:
		return d.validateContract()
	}
	return violation("kind", fmt.Sprintf("Unknown draft kind %q", d.Kind))
}

func (d Draft) validateTemplate() error {
	switch {
	case blank(d.Fields.Name):
		return violation("template_name_required", "Template name is required")
	case blank(d.Fields.Description):
		return violation("template_description_required", "Template description is required")
	case len(d.Categories)+len(d.CustomCategories) == 0:
		return violation("category_required", "At least one category is required")
	}
	if err := nonEmptyCategories(d.CustomCategories); err != nil {
		return err
	}
	if len(d.AllVariables()) == 0 {
		return violation("variable_required", "At least one variable is required")
	}
	return nil
}

func (d Draft) validateProposal() error {
	switch {
	case blank(d.Fields.Name):
		return violation("proposal_name_required", "Proposal name is required")
	case blank(d.Fields.ClientName):
		return violation("client_name_required", "Client name is required")
	case blank(d.Fields.ClientEmail):
		return violation("client_email_required", "Client email is required")
	}
	return nonEmptyCategories(d.ResolvedCategories())
}

func (d Draft) validateContract() error {
	f := d.Fields
	switch {
	case d.TargetID == 0:
		return violation("proposal_required", "A proposal is required")
	case blank(f.ContractTitle):
		return violation("contract_title_required", "Contract title is required")
	case blank(f.ContractorName):
		return violation("contractor_name_required", "Contractor name is required")
	case f.StartDate.IsZero() || f.EndDate.IsZero():
		return violation("dates_required", "Start and end dates are required")
	case f.EndDate.Before(f.StartDate):
		return violation("end_before_start", "End date must not be before start date")
	}
	if _, err := models.ParseMoney(f.PaymentAmount); err != nil {
		return violation("payment_amount_invalid", "Payment amount must be a non-negative number")
	}
	return nil
}

func nonEmptyCategories(categories []models.Category) error {
	for _, c := range categories {
		if len(c.Elements) == 0 {
			return violation("category_empty", fmt.Sprintf("Category %q has no elements", c.Name))
		}
	}
	return nil
}
