package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Element is a billable line item with a material and a labor cost.
type Element struct {
	ID           int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string  `json:"name" yaml:"name"`
	MaterialCost float64 `json:"material_cost" yaml:"material_cost"`
	LaborCost    float64 `json:"labor_cost" yaml:"labor_cost"`
}

// ElementInput is the body accepted by the element endpoints.
type ElementInput struct {
	Name         string  `json:"name"`
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
}

// SafeCost maps NaN and infinities to zero.
func SafeCost(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Amount converts a cost to an exact decimal.
func Amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(SafeCost(v))
}

func (e Element) Material() decimal.Decimal { return Amount(e.MaterialCost) }

func (e Element) Labor() decimal.Decimal { return Amount(e.LaborCost) }

// Total returns material plus labor.
func (e Element) Total() decimal.Decimal {
	return e.Material().Add(e.Labor())
}

// Input strips the server-assigned id.
func (e Element) Input() ElementInput {
	return ElementInput{Name: e.Name, MaterialCost: e.MaterialCost, LaborCost: e.LaborCost}
}

// FormatMoney renders an amount as "$" followed by exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
