package services

import (
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/shopspring/decimal"
)

// Totals is the cost summary of a set of categories.
type Totals struct {
	Materials decimal.Decimal
	Labor     decimal.Decimal
}

// Grand returns materials plus labor.
func (t Totals) Grand() decimal.Decimal { return t.Materials.Add(t.Labor) }

// CategoryTotals sums material and labor costs over every element of every
// category.
func CategoryTotals(categories []models.Category) Totals {
	t := Totals{Materials: decimal.Zero, Labor: decimal.Zero}
	for _, c := range categories {
		t.Materials = t.Materials.Add(c.MaterialTotal())
		t.Labor = t.Labor.Add(c.LaborTotal())
	}
	return t
}
