package models

import "strconv"

// VariableCategory is the fixed unit tag of a variable. It is unrelated to
// the Category entity.
type VariableCategory string

const (
	LinearFeet VariableCategory = "Linear Feet"
	SquareFeet VariableCategory = "Square Feet"
	CubicFeet  VariableCategory = "Cubic Feet"
	Count      VariableCategory = "Count"
)

// VariableTaxonomy is the display order of variable groups.
var VariableTaxonomy = []VariableCategory{LinearFeet, SquareFeet, CubicFeet, Count}

// Known reports whether c is one of the four taxonomy tags.
func (c VariableCategory) Known() bool {
	for _, k := range VariableTaxonomy {
		if c == k {
			return true
		}
	}
	return false
}

// Variable is a named quantity attached to a template, proposal or contract.
type Variable struct {
	ID           int64            `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string           `json:"name" yaml:"name"`
	Category     VariableCategory `json:"category" yaml:"category"`
	Value        float64          `json:"value" yaml:"value"`
	Required     bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultValue string           `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// VariableInput is the body of the variable endpoints and of the variables
// embedded in a proposal.
type VariableInput struct {
	Name     string           `json:"name"`
	Category VariableCategory `json:"category"`
	Value    float64          `json:"value"`
}

func (v Variable) Input() VariableInput {
	return VariableInput{Name: v.Name, Category: v.Category, Value: SafeCost(v.Value)}
}

// IsCustom reports whether the variable has not been persisted yet.
func (v Variable) IsCustom() bool { return v.ID <= 0 }

// FormatQuantity prints a variable value without trailing zeros.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(SafeCost(v), 'f', -1, 64)
}

// VariableGroup is one non-empty bucket of GroupVariables.
type VariableGroup struct {
	Category  VariableCategory `json:"category"`
	Variables []Variable       `json:"variables"`
}

// GroupVariables partitions vars by tag in taxonomy order. Input order is kept
// inside each group and empty groups are omitted. Variables with a tag outside
// the taxonomy are returned in unmatched and appear in no group.
func GroupVariables(vars []Variable) (groups []VariableGroup, unmatched []Variable) {
	buckets := make(map[VariableCategory][]Variable, len(VariableTaxonomy))
	for _, v := range vars {
		if !v.Category.Known() {
			unmatched = append(unmatched, v)
			continue
		}
		buckets[v.Category] = append(buckets[v.Category], v)
	}
	for _, c := range VariableTaxonomy {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, VariableGroup{Category: c, Variables: buckets[c]})
	}
	return groups, unmatched
}
