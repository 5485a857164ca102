package document

import (
	"fmt"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/internal/services"
)

// BuildProposal lays out a client quote: overview, cost tables, cost summary
// and variables. It has no signature blocks.
func BuildProposal(p models.Proposal, now time.Time) Document {
	doc := Document{
		Kind:     KindProposal,
		Title:    p.Name,
		FileName: models.DocumentFileName(p.Name, "pdf"),
		Footer:   footer(now),
	}
	prepared := Paragraph{{Text: "Prepared for "}, {Text: p.ClientName, Bold: true}}
	if p.ClientEmail != "" {
		prepared = append(prepared, Span{Text: fmt.Sprintf(" (%s)", p.ClientEmail)})
	}
	doc.Intro = []Paragraph{prepared}

	var secs sections
	if p.Description != "" {
		secs.add(Section{Kind: SectionOverview, Title: "OVERVIEW", Body: []Paragraph{Plain(p.Description)}})
	}
	if len(p.Categories) > 0 {
		secs.add(Section{
			Kind:  SectionCategories,
			Title: "PROJECT CATEGORIES AND ELEMENTS",
			Costs: costTables(p.Categories),
		})
	}
	totals := services.CategoryTotals(p.Categories)
	secs.add(Section{
		Kind:  SectionCostSummary,
		Title: "COST SUMMARY",
		Summary: []SummaryRow{
			{Label: "Materials", Amount: totals.Materials},
			{Label: "Labor", Amount: totals.Labor},
			{Label: "Grand Total", Amount: totals.Grand(), Strong: true},
		},
	})
	if len(p.Variables) > 0 {
		secs.add(Section{Kind: SectionVariables, Title: "VARIABLES", Values: valueGroups(p.Variables)})
	}
	doc.Sections = secs.list
	return doc
}
