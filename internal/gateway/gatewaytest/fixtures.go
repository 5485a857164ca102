package gatewaytest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
)

// PNG is a 4x2 image with one black pixel.
func PNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Seed fills b with a framing category, a variable, a proposal using them
// and a contract for that proposal. It returns the contract.
func (b *Backend) Seed() models.Contract {
	cat := b.AddCategory(models.Category{
		Name: "Framing",
		Elements: []models.Element{
			{Name: "Studs", MaterialCost: 120, LaborCost: 80},
			{Name: "Headers", MaterialCost: 40.5, LaborCost: 20},
		},
	})
	v := b.AddVariable(models.Variable{Name: "Wall length", Category: models.LinearFeet, Value: 42})
	p := b.AddProposal(models.Proposal{
		Name:        "Garage",
		Description: "Detached garage framing",
		ClientName:  "Jane Doe",
		ClientEmail: "jane@example.com",
		Categories:  []models.Category{cat},
		Variables:   []models.Variable{v},
	})
	return b.AddContract(models.Contract{
		Proposal:           models.ProposalRef{Proposal: p},
		Title:              "Garage Contract",
		ContractorName:     "Sam Builder",
		ContractorCompany:  "Builder Co",
		TermsAndConditions: "Work is guaranteed for one year.",
		Scope:              "Frame the garage.",
		PaymentTerms:       "Net 30",
		PaymentAmount:      5000,
		StartDate:          models.NewDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
		EndDate:            models.NewDate(time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)),
		ClientAddress:      "1 Main St",
	})
}
