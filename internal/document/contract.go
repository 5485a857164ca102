package document

import (
	"fmt"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
)

// ContractSnapshot is everything a contract document shows. It is filled from
// a saved contract or from a contract draft.
type ContractSnapshot struct {
	Title               string            `yaml:"title"`
	ContractorName      string            `yaml:"contractor_name"`
	ContractorCompany   string            `yaml:"contractor_company"`
	ContractorInitials  string            `yaml:"contractor_initials"`
	ContractorSignature string            `yaml:"contractor_signature"`
	ClientName          string            `yaml:"client_name"`
	ClientAddress       string            `yaml:"client_address"`
	ClientInitials      string            `yaml:"client_initials"`
	ClientSignature     string            `yaml:"client_signature"`
	StartDate           models.Date       `yaml:"start_date"`
	EndDate             models.Date       `yaml:"end_date"`
	PaymentAmount       string            `yaml:"payment_amount"`
	PaymentTerms        string            `yaml:"payment_terms"`
	Scope               string            `yaml:"scope"`
	TermsAndConditions  string            `yaml:"terms_and_conditions"`
	AdditionalNotes     string            `yaml:"additional_notes"`
	Categories          []models.Category `yaml:"categories"`
	Variables           []models.Variable `yaml:"variables"`
}

// FromContract snapshots a saved contract and its embedded proposal.
func FromContract(c models.Contract) ContractSnapshot {
	return ContractSnapshot{
		Title:               c.Title,
		ContractorName:      c.ContractorName,
		ContractorCompany:   c.ContractorCompany,
		ContractorInitials:  c.ContractorInitials,
		ContractorSignature: c.ContractorSignature,
		ClientName:          c.ClientName(),
		ClientAddress:       c.ClientAddress,
		ClientInitials:      c.ClientInitials,
		ClientSignature:     c.ClientSignature,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		PaymentAmount:       c.PaymentAmount.String(),
		PaymentTerms:        c.PaymentTerms,
		Scope:               c.Scope,
		TermsAndConditions:  c.TermsAndConditions,
		AdditionalNotes:     c.AdditionalNotes,
		Categories:          c.Proposal.Categories,
		Variables:           c.Proposal.Variables,
	}
}

// paymentText shows a parseable amount as money and anything else verbatim.
func paymentText(raw string) string {
	if v, err := models.ParseMoney(raw); err == nil {
		return models.FormatMoney(models.Amount(v))
	}
	return raw
}

// BuildContract lays out a service agreement. Signature dates and the footer
// use now.
func BuildContract(s ContractSnapshot, now time.Time) Document {
	doc := Document{
		Kind:     KindContract,
		Title:    s.Title,
		FileName: models.DocumentFileName(s.Title, "pdf"),
		Footer:   footer(now),
	}
	doc.Intro = []Paragraph{
		Plain(fmt.Sprintf("This Service Agreement (the \"Agreement\") is entered into as of %s by and between:", s.StartDate.Long())),
		{
			{Text: s.ContractorName, Bold: true},
			{Text: " of "},
			{Text: s.ContractorCompany, Bold: true},
			{Text: " (the \"Contractor\"), and"},
		},
		{
			{Text: s.ClientName, Bold: true},
			{Text: fmt.Sprintf(", located at %s (the \"Client\").", s.ClientAddress)},
		},
	}

	var secs sections
	secs.add(Section{
		Kind:  SectionTerm,
		Title: "TERM",
		Body: []Paragraph{Plain(fmt.Sprintf(
			"This Agreement shall commence on %s and continue until %s, unless terminated earlier pursuant to the terms of this Agreement.",
			s.StartDate.Long(), s.EndDate.Long()))},
	})
	secs.add(Section{Kind: SectionScope, Title: "SCOPE OF WORK", Body: []Paragraph{Plain(s.Scope)}})
	if len(s.Categories) > 0 {
		secs.add(Section{
			Kind:  SectionCategories,
			Title: "PROJECT CATEGORIES AND ELEMENTS",
			Costs: costTables(s.Categories),
		})
	}
	secs.add(Section{
		Kind:  SectionCompensation,
		Title: "COMPENSATION",
		Body: []Paragraph{Plain(fmt.Sprintf(
			"Client agrees to pay Contractor %s for the services rendered. Payment terms: %s.",
			paymentText(s.PaymentAmount), s.PaymentTerms))},
	})
	secs.add(Section{Kind: SectionTerms, Title: "TERMS AND CONDITIONS", Body: []Paragraph{Plain(s.TermsAndConditions)}})
	if s.AdditionalNotes != "" {
		secs.add(Section{Kind: SectionNotes, Title: "ADDITIONAL NOTES", Body: []Paragraph{Plain(s.AdditionalNotes)}})
	}
	if len(s.Variables) > 0 {
		secs.add(Section{Kind: SectionVariables, Title: "VARIABLES", Values: valueGroups(s.Variables)})
	}
	doc.Sections = secs.list

	stamp := now.Format(models.LongDateLayout)
	doc.Signatures = []SignatureBlock{
		{
			Label:       "CONTRACTOR:",
			Image:       s.ContractorSignature,
			Name:        s.ContractorName,
			Affiliation: s.ContractorCompany,
			Initials:    orInitials(s.ContractorInitials, s.ContractorName),
			Date:        stamp,
		},
		{
			Label:       "CLIENT:",
			Image:       s.ClientSignature,
			Name:        s.ClientName,
			Affiliation: "Authorized Representative",
			Initials:    orInitials(s.ClientInitials, s.ClientName),
			Date:        stamp,
		},
	}
	return doc
}

func orInitials(given, name string) string {
	if given != "" {
		return given
	}
	return Initials(name)
}
